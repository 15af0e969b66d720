// Package money converts between the decimal amount strings accepted at the
// API boundary and the integer minor-unit (cent) representation used
// everywhere inside the service. Ledger math never touches floats.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var centFactor = decimal.NewFromInt(100)

// ParseCents converts a decimal amount string ("12.34", "12,34") into cents.
// More than two fractional digits are rejected rather than rounded, so a
// client can never silently lose sub-cent precision.
func ParseCents(value string) (int64, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(value, ",", "."))
	if trimmed == "" {
		return 0, fmt.Errorf("amount is required")
	}

	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", value, err)
	}

	cents := d.Mul(centFactor)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than two decimal places", value)
	}
	return cents.IntPart(), nil
}

// ParsePositiveCents parses the amount and requires it to be strictly positive.
func ParsePositiveCents(value string) (int64, error) {
	cents, err := ParseCents(value)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}
	return cents, nil
}

// FormatCents renders cents as a two-decimal amount string ("-3.05").
func FormatCents(cents int64) string {
	return decimal.NewFromInt(cents).Div(centFactor).StringFixed(2)
}
