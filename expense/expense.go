// Package expense manages one trip's expense context: the member set and
// the expense records, both synchronized values shared by every
// collaborator, plus the balance views computed from them.
package expense

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tripkit/balance"
	"tripkit/bind"
	"tripkit/docstore/docstore"
	"tripkit/store"
	"tripkit/trip"
)

// Book is the expense context of a single trip.
type Book struct {
	members  *bind.Binding[[]trip.Member]
	expenses *bind.Binding[[]trip.Expense]
}

// NewBook binds the member and expense documents for the trip in bctx.
func NewBook(bctx bind.Context, local *store.KV, remote docstore.Store) (*Book, error) {
	members, err := bind.New(bind.KeyMembers, []trip.Member{}, bctx, local, remote)
	if err != nil {
		return nil, fmt.Errorf("expense: bind members: %w", err)
	}
	expenses, err := bind.New(bind.KeyExpenses, []trip.Expense{}, bctx, local, remote)
	if err != nil {
		members.Close()
		return nil, fmt.Errorf("expense: bind expenses: %w", err)
	}
	return &Book{members: members, expenses: expenses}, nil
}

// Members returns the current member set.
func (b *Book) Members() []trip.Member {
	return b.members.Value()
}

// Expenses returns the current expense records.
func (b *Book) Expenses() []trip.Expense {
	return b.expenses.Value()
}

// AddMember appends a member with the given display name.
func (b *Book) AddMember(name string) (trip.Member, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return trip.Member{}, fmt.Errorf("%w: member name is required", trip.ErrValidation)
	}

	m := trip.Member{ID: uuid.New(), Name: name}
	err := b.members.Update(func(members []trip.Member) ([]trip.Member, error) {
		return append(members[:len(members):len(members)], m), nil
	})
	if err != nil {
		return trip.Member{}, fmt.Errorf("expense: add member: %w", err)
	}
	return m, nil
}

// RemoveMember deletes a member. Deleting the last remaining member is
// rejected: at least one member must exist at all times.
//
// Expenses referencing the removed member are left as-is; this mirrors the
// store's last-writer-wins model, where a concurrent collaborator may be
// re-adding the member at the same moment.
func (b *Book) RemoveMember(id uuid.UUID) error {
	return b.members.Update(func(members []trip.Member) ([]trip.Member, error) {
		idx := -1
		for i, m := range members {
			if m.ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, trip.ErrNotFound
		}
		if len(members) == 1 {
			return nil, trip.ErrLastMember
		}

		next := make([]trip.Member, 0, len(members)-1)
		next = append(next, members[:idx]...)
		next = append(next, members[idx+1:]...)
		return next, nil
	})
}

// ExpenseInput carries the user-supplied fields of an expense.
type ExpenseInput struct {
	Title     string        `json:"title"`
	Amount    float64       `json:"amount"`
	Currency  trip.Currency `json:"currency"`
	PaidBy    uuid.UUID     `json:"paidBy"`
	SplitWith []uuid.UUID   `json:"splitWith"`
	Category  string        `json:"category"`
}

// AddExpense validates in and appends a new expense record.
func (b *Book) AddExpense(in ExpenseInput) (trip.Expense, error) {
	if err := b.validate(in); err != nil {
		return trip.Expense{}, err
	}

	e := trip.Expense{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(in.Title),
		Amount:    in.Amount,
		Currency:  in.Currency,
		PaidBy:    in.PaidBy,
		SplitWith: in.SplitWith,
		Category:  in.Category,
		CreatedAt: time.Now().UTC(),
	}
	err := b.expenses.Update(func(expenses []trip.Expense) ([]trip.Expense, error) {
		return append(expenses[:len(expenses):len(expenses)], e), nil
	})
	if err != nil {
		return trip.Expense{}, fmt.Errorf("expense: add: %w", err)
	}
	return e, nil
}

// UpdateExpense replaces the user-supplied fields of an existing expense.
func (b *Book) UpdateExpense(id uuid.UUID, in ExpenseInput) (trip.Expense, error) {
	if err := b.validate(in); err != nil {
		return trip.Expense{}, err
	}

	var updated trip.Expense
	err := b.expenses.Update(func(expenses []trip.Expense) ([]trip.Expense, error) {
		for i, e := range expenses {
			if e.ID != id {
				continue
			}
			e.Title = strings.TrimSpace(in.Title)
			e.Amount = in.Amount
			e.Currency = in.Currency
			e.PaidBy = in.PaidBy
			e.SplitWith = in.SplitWith
			e.Category = in.Category

			next := make([]trip.Expense, len(expenses))
			copy(next, expenses)
			next[i] = e
			updated = e
			return next, nil
		}
		return nil, trip.ErrNotFound
	})
	if err != nil {
		return trip.Expense{}, err
	}
	return updated, nil
}

// RemoveExpense deletes an expense record.
func (b *Book) RemoveExpense(id uuid.UUID) error {
	return b.expenses.Update(func(expenses []trip.Expense) ([]trip.Expense, error) {
		next := make([]trip.Expense, 0, len(expenses))
		found := false
		for _, e := range expenses {
			if e.ID == id {
				found = true
				continue
			}
			next = append(next, e)
		}
		if !found {
			return nil, trip.ErrNotFound
		}
		return next, nil
	})
}

// Balances returns the per-member summaries for one currency.
func (b *Book) Balances(currency trip.Currency) []balance.Summary {
	return balance.Compute(b.Members(), b.Expenses(), currency)
}

// Transfers returns the settlement plan for one currency.
func (b *Book) Transfers(currency trip.Currency) []balance.Transfer {
	return balance.Transfers(b.Balances(currency))
}

// Currencies returns the currencies in use, in display order.
func (b *Book) Currencies() []trip.Currency {
	return balance.UsedCurrencies(b.Expenses())
}

// Close tears down the book's subscriptions.
func (b *Book) Close() {
	b.members.Close()
	b.expenses.Close()
}

// validate enforces the expense business rules: non-empty title, positive
// amount, a known currency, a payer from the member set and a non-empty
// split set of known members.
func (b *Book) validate(in ExpenseInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", trip.ErrValidation)
	}
	if in.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", trip.ErrValidation)
	}
	if !in.Currency.Valid() {
		return fmt.Errorf("%w: unknown currency %q", trip.ErrValidation, in.Currency)
	}
	if len(in.SplitWith) == 0 {
		return fmt.Errorf("%w: at least one member must share the cost", trip.ErrValidation)
	}

	known := make(map[uuid.UUID]bool)
	for _, m := range b.members.Value() {
		known[m.ID] = true
	}
	if !known[in.PaidBy] {
		return fmt.Errorf("%w: payer is not a member", trip.ErrValidation)
	}
	for _, id := range in.SplitWith {
		if !known[id] {
			return fmt.Errorf("%w: split member %s is not a member", trip.ErrValidation, id)
		}
	}
	return nil
}
