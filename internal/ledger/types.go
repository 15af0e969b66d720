// Package ledger holds the pure settlement math for a trip group: expense
// splitting, balance aggregation, debt simplification and budget tracking.
// Everything operates on integer minor currency units (cents) so results are
// exact and the conservation checks can compare against zero directly.
package ledger

import (
	"github.com/google/uuid"

	"github.com/tripledger/tripledger-backend/pkg/enums"
)

// Share is one member's portion of an expense.
type Share struct {
	MemberID    uuid.UUID
	AmountCents int64
	// Percentage is set only for percentage-policy splits and records the
	// requested percentage, not the rounded cent amount.
	Percentage *float64
}

// Expense is the minimal expense view the engine needs.
type Expense struct {
	PaidByMemberID uuid.UUID
	AmountCents    int64
	Shares         []Share
}

// Settlement is a recorded repayment from a debtor to a creditor.
type Settlement struct {
	FromMemberID uuid.UUID
	ToMemberID   uuid.UUID
	AmountCents  int64
}

// Transfer is one suggested repayment produced by debt simplification.
type Transfer struct {
	FromMemberID uuid.UUID
	ToMemberID   uuid.UUID
	AmountCents  int64
}

// SplitOptions carries the per-policy inputs for ComputeSplits.
type SplitOptions struct {
	// Amounts maps member to cents for the custom policy.
	Amounts map[uuid.UUID]int64
	// Percentages maps member to percentage points for the percentage policy.
	Percentages map[uuid.UUID]float64
}

// SplitInput is everything needed to compute the shares of a single expense.
type SplitInput struct {
	Policy       enums.SplitPolicy
	AmountCents  int64
	Participants []uuid.UUID
	Options      SplitOptions
}
