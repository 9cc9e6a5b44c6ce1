package intake

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kendall-kelly/formalwear-orders-api/utils"
)

// Validation messages
const (
	ErrMsgRequired        = "%s is required"
	ErrMsgTotalPositive   = "Total must be greater than zero"
	ErrMsgAdvanceTooLarge = "Advance cannot exceed the total"
	ErrMsgPhoneDigits     = "Phone must have 10 or 11 digits"
	ErrMsgTaxIDDigits     = "Tax id must have 11 or 14 digits"
	ErrMsgPostalDigits    = "Postal code must have 8 digits"
	ErrMsgReturnBefore    = "Return date cannot be before the pickup date"
	ErrMsgSoldEmpty       = "Select at least one sold item for Aluguel+Venda"
)

// ValidationErrors maps each offending field to a human readable message.
// An empty value means the draft is submittable.
type ValidationErrors map[FieldKey]string

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, k := range v.Keys() {
		parts = append(parts, fmt.Sprintf("%s: %s", k, v[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Keys returns the offending fields in display order
func (v ValidationErrors) Keys() []FieldKey {
	keys := make([]FieldKey, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Has reports whether key has an error
func (v ValidationErrors) Has(key FieldKey) bool {
	_, ok := v[key]
	return ok
}

// Clone returns a copy that can be modified independently
func (v ValidationErrors) Clone() ValidationErrors {
	out := make(ValidationErrors, len(v))
	for k, msg := range v {
		out[k] = msg
	}
	return out
}

// ValidateStep checks every field shown on step
func ValidateStep(step Step, d *Draft) ValidationErrors {
	errs := ValidationErrors{}
	for _, k := range step.Fields() {
		if msg := ValidateField(k, d); msg != "" {
			errs[k] = msg
		}
	}
	return errs
}

// ValidateAll checks every step. It is the gate for submission, since earlier
// steps may have been edited after they were passed.
func ValidateAll(d *Draft) ValidationErrors {
	errs := ValidationErrors{}
	for s := StepClient; int(s) < StepCount; s++ {
		for k, msg := range ValidateStep(s, d) {
			errs[k] = msg
		}
	}
	return errs
}

// ValidateField returns the message for key, or "" when the value is acceptable
func ValidateField(key FieldKey, d *Draft) string {
	if !key.IsValid() || key.Kind() == KindFlag || key == FieldBalance {
		return ""
	}
	if isBlank(key, d) {
		if !IsFieldRequired(key, d) {
			return ""
		}
		switch key {
		case FieldTotal:
			return ErrMsgTotalPositive
		case FieldSoldItems:
			return ErrMsgSoldEmpty
		}
		return fmt.Sprintf(ErrMsgRequired, key.Label())
	}
	return checkFormat(key, d)
}

func isBlank(key FieldKey, d *Draft) bool {
	switch key.Kind() {
	case KindCurrency:
		switch key {
		case FieldTotal:
			return !d.Payment.Total.IsPositive()
		case FieldAdvance:
			return d.Payment.Advance.IsZero()
		}
		return false
	case KindPieces:
		return len(SoldPieces(d)) == 0
	default:
		return strings.TrimSpace(Get(d, key)) == ""
	}
}

func checkFormat(key FieldKey, d *Draft) string {
	switch key {
	case FieldClientPhone:
		if n := len(utils.OnlyDigits(d.Client.Phone)); n != 10 && n != 11 {
			return ErrMsgPhoneDigits
		}
	case FieldClientTaxID:
		if n := len(utils.OnlyDigits(d.Client.TaxID)); n != 11 && n != 14 {
			return ErrMsgTaxIDDigits
		}
	case FieldClientPostalCode:
		if len(utils.OnlyDigits(d.Client.Address.PostalCode)) != 8 {
			return ErrMsgPostalDigits
		}
	case FieldAdvance:
		if d.Payment.Advance.GreaterThan(d.Payment.Total) {
			return ErrMsgAdvanceTooLarge
		}
	case FieldReturnDate:
		if !d.PickupDate.IsZero() && d.ReturnDate.Before(d.PickupDate) {
			return ErrMsgReturnBefore
		}
	}
	return ""
}

// revalidate refreshes the messages already recorded in errs against d. Keys
// that became valid, or whose gate was switched off, are dropped; no new keys
// are added.
func revalidate(errs ValidationErrors, d *Draft) {
	for k := range errs {
		if msg := ValidateField(k, d); msg != "" {
			errs[k] = msg
		} else {
			delete(errs, k)
		}
	}
}
