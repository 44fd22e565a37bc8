// Package balance computes who owes whom from a trip's expense records.
// Everything here is pure: members and expenses in, per-member balances and
// an optional transfer plan out, with no hidden state, so computing twice
// on unchanged input yields identical results.
package balance

import (
	"tripkit/trip"
)

// Threshold for float comparisons.
const epsilon = 1e-9

// Summary is one member's position in a single currency. Paid is what they
// fronted, Share is what they consumed, Balance = Paid - Share: positive
// means the member is owed money, negative means they owe.
type Summary struct {
	MemberID string  `json:"memberId"`
	Name     string  `json:"name"`
	Paid     float64 `json:"paid"`
	Share    float64 `json:"share"`
	Balance  float64 `json:"balance"`
}

// Compute returns one Summary per member, in member order, restricted to
// the given currency. Currencies are never converted or combined.
//
// Each expense's amount divides evenly across its split set; the division
// is plain floating-point with no remainder redistribution. An expense
// with an empty split set contributes nothing to any share — only its
// payer accounting applies. The function is total: any well-formed input
// produces a result, an empty expense list produces all-zero balances.
func Compute(members []trip.Member, expenses []trip.Expense, currency trip.Currency) []Summary {
	summaries := make([]Summary, len(members))
	index := make(map[string]int, len(members))
	for i, m := range members {
		summaries[i] = Summary{MemberID: m.ID.String(), Name: m.Name}
		index[m.ID.String()] = i
	}

	for _, e := range expenses {
		if e.Currency != currency {
			continue
		}

		if i, ok := index[e.PaidBy.String()]; ok {
			summaries[i].Paid += e.Amount
		}

		if len(e.SplitWith) == 0 {
			continue
		}
		share := e.Amount / float64(len(e.SplitWith))
		for _, id := range e.SplitWith {
			if i, ok := index[id.String()]; ok {
				summaries[i].Share += share
			}
		}
	}

	for i := range summaries {
		summaries[i].Balance = summaries[i].Paid - summaries[i].Share
	}
	return summaries
}

// UsedCurrencies returns the currencies that appear in expenses, in the
// closed set's display order, so balances can be shown per currency.
func UsedCurrencies(expenses []trip.Expense) []trip.Currency {
	seen := make(map[trip.Currency]bool, len(expenses))
	for _, e := range expenses {
		seen[e.Currency] = true
	}

	var used []trip.Currency
	for _, c := range trip.Currencies {
		if seen[c] {
			used = append(used, c)
		}
	}
	return used
}
