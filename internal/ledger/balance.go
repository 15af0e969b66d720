package ledger

import "github.com/google/uuid"

// CalculateBalances aggregates expenses and settlements into a net balance
// per member. Positive means the member is owed money, negative means they owe.
//
// Each expense credits the payer with the full amount and debits every share.
// A settlement from a debtor to a creditor moves the debtor towards zero and
// the creditor towards zero from the other side. The resulting balances always
// sum to zero; a nonzero sum means the stored rows are corrupt and is reported
// as an invariant violation.
func CalculateBalances(members []uuid.UUID, expenses []Expense, settlements []Settlement) (map[uuid.UUID]int64, error) {
	balances := make(map[uuid.UUID]int64, len(members))
	for _, id := range members {
		balances[id] = 0
	}

	for _, exp := range expenses {
		if _, ok := balances[exp.PaidByMemberID]; !ok {
			return nil, invariantf("expense payer %s is not a group member", exp.PaidByMemberID)
		}

		var shareSum int64
		for _, share := range exp.Shares {
			if _, ok := balances[share.MemberID]; !ok {
				return nil, invariantf("expense share references non-member %s", share.MemberID)
			}
			balances[share.MemberID] -= share.AmountCents
			shareSum += share.AmountCents
		}
		if shareSum != exp.AmountCents {
			return nil, invariantf("expense shares sum to %d cents, expense is %d cents", shareSum, exp.AmountCents)
		}
		balances[exp.PaidByMemberID] += exp.AmountCents
	}

	for _, s := range settlements {
		if _, ok := balances[s.FromMemberID]; !ok {
			return nil, invariantf("settlement payer %s is not a group member", s.FromMemberID)
		}
		if _, ok := balances[s.ToMemberID]; !ok {
			return nil, invariantf("settlement receiver %s is not a group member", s.ToMemberID)
		}
		balances[s.FromMemberID] += s.AmountCents
		balances[s.ToMemberID] -= s.AmountCents
	}

	var total int64
	for _, cents := range balances {
		total += cents
	}
	if total != 0 {
		return nil, invariantf("balances sum to %d cents, expected 0", total)
	}

	return balances, nil
}

// FullySettled reports whether every balance is exactly zero.
func FullySettled(balances map[uuid.UUID]int64) bool {
	for _, cents := range balances {
		if cents != 0 {
			return false
		}
	}
	return true
}
