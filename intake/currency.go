package intake

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kendall-kelly/formalwear-orders-api/money"
	"github.com/shopspring/decimal"
)

var ErrNotCurrency = errors.New("field is not a currency field")

// setAmount parses a typed amount into dst. A blank value resets it to zero.
func setAmount(dst *decimal.Decimal, v string) error {
	if strings.TrimSpace(v) == "" {
		*dst = decimal.Zero
		return nil
	}
	amount, err := money.Parse(v)
	if err != nil {
		return err
	}
	if amount.IsNegative() {
		return fmt.Errorf("amount cannot be negative")
	}
	*dst = amount
	return nil
}

// SetKeystrokes stores the digits typed into a currency field, reading them
// as cents: "15340" becomes 153.40.
func SetKeystrokes(d *Draft, key FieldKey, keystrokes string) error {
	if !key.IsValid() || key.Kind() != KindCurrency {
		return fmt.Errorf("%s: %w", key, ErrNotCurrency)
	}
	return Set(d, key, money.Format(money.FromKeystrokes(keystrokes)))
}

// affectsBalance reports whether a change to key invalidates the balance
func affectsBalance(key FieldKey) bool {
	return key == FieldTotal || key == FieldAdvance
}
