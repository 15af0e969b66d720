package ledger

import (
	"errors"
	"fmt"
)

// ErrValidation marks engine errors caused by bad caller input: unknown
// policies, amounts that do not add up, empty participant lists.
var ErrValidation = errors.New("ledger validation failed")

// ErrInvariant marks engine errors caused by inconsistent stored data, such
// as balances that do not sum to zero. Callers should treat these as internal
// faults, never as user mistakes.
var ErrInvariant = errors.New("ledger invariant violated")

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

func invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvariant}, args...)...)
}

// IsValidation reports whether err stems from bad engine input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInvariantViolation reports whether err stems from inconsistent ledger data.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrInvariant)
}
