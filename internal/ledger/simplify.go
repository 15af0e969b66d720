package ledger

import (
	"sort"

	"github.com/google/uuid"
)

// SimplifyDebts reduces net balances to a minimal set of transfers using a
// greedy match of the largest debtor against the largest creditor. The result
// never needs more than members-1 transfers. Ties are broken by the caller's
// member order so the suggestion list is stable across requests.
func SimplifyDebts(balances map[uuid.UUID]int64, order []uuid.UUID) ([]Transfer, error) {
	position := make(map[uuid.UUID]int, len(order))
	for i, id := range order {
		position[id] = i
	}

	type stake struct {
		memberID uuid.UUID
		cents    int64 // always positive
	}

	var creditors, debtors []stake
	var total int64
	for id, cents := range balances {
		total += cents
		switch {
		case cents > 0:
			creditors = append(creditors, stake{memberID: id, cents: cents})
		case cents < 0:
			debtors = append(debtors, stake{memberID: id, cents: -cents})
		}
	}
	if total != 0 {
		return nil, invariantf("balances sum to %d cents, expected 0", total)
	}

	byMagnitude := func(list []stake) {
		sort.Slice(list, func(i, j int) bool {
			if list[i].cents != list[j].cents {
				return list[i].cents > list[j].cents
			}
			return position[list[i].memberID] < position[list[j].memberID]
		})
	}
	byMagnitude(creditors)
	byMagnitude(debtors)

	transfers := make([]Transfer, 0, len(creditors)+len(debtors))
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := debtors[i].cents
		if creditors[j].cents < amount {
			amount = creditors[j].cents
		}

		transfers = append(transfers, Transfer{
			FromMemberID: debtors[i].memberID,
			ToMemberID:   creditors[j].memberID,
			AmountCents:  amount,
		})

		debtors[i].cents -= amount
		creditors[j].cents -= amount
		if debtors[i].cents == 0 {
			i++
		}
		if creditors[j].cents == 0 {
			j++
		}
	}

	// A zero total guarantees both sides drain together.
	if i < len(debtors) || j < len(creditors) {
		return nil, invariantf("debt matching left an unbalanced remainder")
	}

	return transfers, nil
}
