package utils

import "strings"

// OnlyDigits strips every character that is not an ASCII digit, turning
// masked input such as "(11) 98765-4321" or "123.456.789-09" into plain digits
func OnlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
