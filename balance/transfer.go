package balance

import "sort"

// Transfer is one settlement payment: From pays To Amount.
type Transfer struct {
	From   string  `json:"from"` // member ID of the debtor
	To     string  `json:"to"`   // member ID of the creditor
	Amount float64 `json:"amount"`
}

// Transfers converts a set of per-member balances (one currency) into a
// concrete payment plan that settles every balance within epsilon.
//
// Greedy matching: the largest creditor is paired with the largest debtor
// and one of the two is extinguished per step, so at most n-1 transfers
// are produced for n members. Ties break on member ID for a stable plan.
func Transfers(summaries []Summary) []Transfer {
	type party struct {
		id     string
		amount float64 // always positive: credit for creditors, debt for debtors
	}

	var creditors, debtors []party
	for _, s := range summaries {
		switch {
		case s.Balance > epsilon:
			creditors = append(creditors, party{id: s.MemberID, amount: s.Balance})
		case s.Balance < -epsilon:
			debtors = append(debtors, party{id: s.MemberID, amount: -s.Balance})
		}
	}

	byAmountDesc := func(ps []party) func(i, j int) bool {
		return func(i, j int) bool {
			if ps[i].amount == ps[j].amount {
				return ps[i].id < ps[j].id
			}
			return ps[i].amount > ps[j].amount
		}
	}
	sort.SliceStable(creditors, byAmountDesc(creditors))
	sort.SliceStable(debtors, byAmountDesc(debtors))

	var plan []Transfer
	ci, di := 0, 0
	for ci < len(creditors) && di < len(debtors) {
		c, d := &creditors[ci], &debtors[di]

		amount := c.amount
		if d.amount < amount {
			amount = d.amount
		}
		plan = append(plan, Transfer{From: d.id, To: c.id, Amount: amount})

		c.amount -= amount
		d.amount -= amount
		if c.amount <= epsilon {
			ci++
		}
		if d.amount <= epsilon {
			di++
		}
	}
	return plan
}
