package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tripledger/tripledger-backend/pkg/enums"
)

// percentageTolerance is how far the percentage sum may drift from 100 and
// still be accepted. Matches what clients can express with two decimals.
const percentageTolerance = 0.01

// ComputeSplits turns an expense amount into per-member shares according to
// the split policy. Shares always sum to the expense amount exactly: equal and
// percentage splits floor each share and let the last participant absorb the
// rounding residual, custom splits must already sum exactly.
func ComputeSplits(in SplitInput) ([]Share, error) {
	if in.AmountCents <= 0 {
		return nil, validationf("amount must be positive, got %d cents", in.AmountCents)
	}
	if len(in.Participants) == 0 {
		return nil, validationf("at least one participant is required")
	}
	if err := checkDistinct(in.Participants); err != nil {
		return nil, err
	}

	switch in.Policy {
	case enums.SplitPolicyEqual:
		return splitEqual(in.AmountCents, in.Participants), nil
	case enums.SplitPolicyCustom:
		return splitCustom(in.AmountCents, in.Participants, in.Options.Amounts)
	case enums.SplitPolicyPercentage:
		return splitPercentage(in.AmountCents, in.Participants, in.Options.Percentages)
	default:
		return nil, validationf("unknown split policy %q", in.Policy)
	}
}

func checkDistinct(participants []uuid.UUID) error {
	seen := make(map[uuid.UUID]struct{}, len(participants))
	for _, id := range participants {
		if id == uuid.Nil {
			return validationf("participant id must not be empty")
		}
		if _, dup := seen[id]; dup {
			return validationf("participant %s listed more than once", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func splitEqual(amountCents int64, participants []uuid.UUID) []Share {
	n := int64(len(participants))
	base := amountCents / n

	shares := make([]Share, len(participants))
	var assigned int64
	for i, id := range participants {
		cents := base
		if i == len(participants)-1 {
			cents = amountCents - assigned
		}
		shares[i] = Share{MemberID: id, AmountCents: cents}
		assigned += cents
	}
	return shares
}

func splitCustom(amountCents int64, participants []uuid.UUID, amounts map[uuid.UUID]int64) ([]Share, error) {
	if len(amounts) != len(participants) {
		return nil, validationf("custom split needs an amount for each of the %d participants, got %d", len(participants), len(amounts))
	}

	shares := make([]Share, len(participants))
	var sum int64
	for i, id := range participants {
		cents, ok := amounts[id]
		if !ok {
			return nil, validationf("custom split missing amount for participant %s", id)
		}
		if cents < 0 {
			return nil, validationf("custom split amount for participant %s must not be negative", id)
		}
		shares[i] = Share{MemberID: id, AmountCents: cents}
		sum += cents
	}
	if sum != amountCents {
		return nil, validationf("custom split amounts sum to %d cents, expense is %d cents", sum, amountCents)
	}
	return shares, nil
}

func splitPercentage(amountCents int64, participants []uuid.UUID, percentages map[uuid.UUID]float64) ([]Share, error) {
	if len(percentages) != len(participants) {
		return nil, validationf("percentage split needs a percentage for each of the %d participants, got %d", len(participants), len(percentages))
	}

	// Sum in decimal so a boundary input like 100.01 is not pushed past the
	// tolerance by float noise.
	total := decimal.Zero
	for _, id := range participants {
		pct, ok := percentages[id]
		if !ok {
			return nil, validationf("percentage split missing percentage for participant %s", id)
		}
		if pct < 0 {
			return nil, validationf("percentage for participant %s must not be negative", id)
		}
		total = total.Add(decimal.NewFromFloat(pct))
	}
	hundred := decimal.NewFromInt(100)
	tolerance := decimal.NewFromFloat(percentageTolerance)
	if total.Sub(hundred).Abs().GreaterThan(tolerance) {
		return nil, validationf("percentages sum to %s, expected 100", total.StringFixed(2))
	}

	amount := decimal.NewFromInt(amountCents)

	shares := make([]Share, len(participants))
	var assigned int64
	for i, id := range participants {
		pct := percentages[id]
		cents := amount.Mul(decimal.NewFromFloat(pct)).Div(hundred).IntPart()
		if i == len(participants)-1 {
			cents = amountCents - assigned
		}
		p := pct
		shares[i] = Share{MemberID: id, AmountCents: cents, Percentage: &p}
		assigned += cents
	}

	// On large amounts a sum just above 100 can floor more cents than the
	// expense holds, leaving the residual holder below zero. That input cannot
	// produce a valid split, so reject it rather than emit a negative share.
	if last := shares[len(shares)-1].AmountCents; last < 0 {
		return nil, validationf("percentages allocate %d cents more than the expense amount", -last)
	}
	return shares, nil
}
