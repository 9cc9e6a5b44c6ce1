// Package money holds the fixed-point currency helpers shared by intake, lifecycle and the API.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of decimal places every amount is rounded to
const Places = 2

// Tolerance is the largest difference still treated as rounding noise
var Tolerance = decimal.New(1, -Places)

// Parse reads a user-typed amount. Both "1234.56" and "1.234,56" are accepted.
func Parse(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return Round(d), nil
}

// FromKeystrokes turns digit-only keyboard input into an amount by dividing by 100.
// Anything that is not a digit is ignored, so "15.340" and "15340" both give 153.40.
func FromKeystrokes(raw string) decimal.Decimal {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	return d.Shift(-Places)
}

// Round rounds d half away from zero to two places
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Balance returns round2(total - advance)
func Balance(total, advance decimal.Decimal) decimal.Decimal {
	return Round(total.Sub(advance))
}

// Format renders d with exactly two places
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}

// Float converts d to the float64 used on the wire
func Float(d decimal.Decimal) float64 {
	f, _ := Round(d).Float64()
	return f
}

// FromFloat converts a wire amount back to a decimal rounded to two places
func FromFloat(f float64) decimal.Decimal {
	return Round(decimal.NewFromFloat(f))
}

// Equal reports whether a and b differ by less than Tolerance
func Equal(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(Tolerance)
}
