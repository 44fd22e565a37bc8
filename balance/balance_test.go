package balance

import (
	"math"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"tripkit/trip"
)

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func member(name string) trip.Member {
	return trip.Member{ID: uuid.New(), Name: name}
}

func TestComputeTwoMemberSplit(t *testing.T) {
	ann := member("Ann")
	ben := member("Ben")
	members := []trip.Member{ann, ben}

	expenses := []trip.Expense{
		{
			ID:        uuid.New(),
			Title:     "Hotel",
			Amount:    230000,
			Currency:  trip.JPY,
			PaidBy:    ann.ID,
			SplitWith: []uuid.UUID{ann.ID, ben.ID},
		},
	}

	summaries := Compute(members, expenses, trip.JPY)
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}

	if !floatEquals(summaries[0].Paid, 230000) || !floatEquals(summaries[0].Share, 115000) {
		t.Errorf("Ann: paid %.2f share %.2f", summaries[0].Paid, summaries[0].Share)
	}
	if !floatEquals(summaries[0].Balance, 115000) {
		t.Errorf("Ann balance = %.2f, want 115000", summaries[0].Balance)
	}
	if !floatEquals(summaries[1].Balance, -115000) {
		t.Errorf("Ben balance = %.2f, want -115000", summaries[1].Balance)
	}
}

func TestComputeBalancesSumToZero(t *testing.T) {
	ann := member("Ann")
	ben := member("Ben")
	cho := member("Cho")
	members := []trip.Member{ann, ben, cho}

	expenses := []trip.Expense{
		{ID: uuid.New(), Amount: 9000, Currency: trip.JPY, PaidBy: ann.ID, SplitWith: []uuid.UUID{ann.ID, ben.ID, cho.ID}},
		{ID: uuid.New(), Amount: 4400, Currency: trip.JPY, PaidBy: ben.ID, SplitWith: []uuid.UUID{ben.ID, cho.ID}},
		{ID: uuid.New(), Amount: 1234.56, Currency: trip.JPY, PaidBy: cho.ID, SplitWith: []uuid.UUID{ann.ID}},
	}

	// Every expense divides across members of the same set, so the
	// positions must cancel out.
	total := 0.0
	for _, s := range Compute(members, expenses, trip.JPY) {
		total += s.Balance
	}
	if !floatEquals(total, 0) {
		t.Errorf("balances sum to %.10f, want 0", total)
	}
}

func TestComputeFiltersByCurrency(t *testing.T) {
	ann := member("Ann")
	ben := member("Ben")
	members := []trip.Member{ann, ben}

	expenses := []trip.Expense{
		{ID: uuid.New(), Amount: 100, Currency: trip.USD, PaidBy: ann.ID, SplitWith: []uuid.UUID{ann.ID, ben.ID}},
		{ID: uuid.New(), Amount: 30000, Currency: trip.JPY, PaidBy: ben.ID, SplitWith: []uuid.UUID{ann.ID, ben.ID}},
	}

	usd := Compute(members, expenses, trip.USD)
	if !floatEquals(usd[0].Paid, 100) {
		t.Errorf("USD paid = %.2f, want 100", usd[0].Paid)
	}
	if !floatEquals(usd[1].Paid, 0) {
		t.Errorf("JPY expense leaked into the USD view: paid %.2f", usd[1].Paid)
	}
}

func TestComputeEmptyExpenses(t *testing.T) {
	members := []trip.Member{member("Ann"), member("Ben")}

	for _, s := range Compute(members, nil, trip.JPY) {
		if s.Paid != 0 || s.Share != 0 || s.Balance != 0 {
			t.Errorf("expected all-zero summary, got %+v", s)
		}
	}
}

func TestComputeEmptySplitSet(t *testing.T) {
	ann := member("Ann")
	ben := member("Ben")
	members := []trip.Member{ann, ben}

	// An expense with no split set contributes payer accounting only.
	expenses := []trip.Expense{
		{ID: uuid.New(), Amount: 500, Currency: trip.EUR, PaidBy: ann.ID},
	}

	summaries := Compute(members, expenses, trip.EUR)
	if !floatEquals(summaries[0].Paid, 500) || !floatEquals(summaries[0].Share, 0) {
		t.Errorf("Ann: %+v", summaries[0])
	}
	if !floatEquals(summaries[1].Share, 0) {
		t.Errorf("Ben should owe nothing, got share %.2f", summaries[1].Share)
	}
}

func TestComputeIgnoresUnknownIDs(t *testing.T) {
	ann := member("Ann")
	members := []trip.Member{ann}
	stranger := uuid.New()

	expenses := []trip.Expense{
		{ID: uuid.New(), Amount: 300, Currency: trip.TWD, PaidBy: stranger, SplitWith: []uuid.UUID{ann.ID, stranger}},
	}

	summaries := Compute(members, expenses, trip.TWD)
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if !floatEquals(summaries[0].Paid, 0) {
		t.Errorf("an unknown payer must not credit anyone, got %.2f", summaries[0].Paid)
	}
	if !floatEquals(summaries[0].Share, 150) {
		t.Errorf("Ann's share = %.2f, want 150", summaries[0].Share)
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	ann := member("Ann")
	ben := member("Ben")
	members := []trip.Member{ann, ben}
	expenses := []trip.Expense{
		{ID: uuid.New(), Amount: 777, Currency: trip.KRW, PaidBy: ann.ID, SplitWith: []uuid.UUID{ann.ID, ben.ID}},
	}

	first := Compute(members, expenses, trip.KRW)
	second := Compute(members, expenses, trip.KRW)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Compute is not deterministic: %+v vs %+v", first, second)
	}
}

func TestUsedCurrencies(t *testing.T) {
	ann := member("Ann")
	expenses := []trip.Expense{
		{ID: uuid.New(), Amount: 1, Currency: trip.TWD, PaidBy: ann.ID},
		{ID: uuid.New(), Amount: 1, Currency: trip.JPY, PaidBy: ann.ID},
		{ID: uuid.New(), Amount: 1, Currency: trip.TWD, PaidBy: ann.ID},
	}

	got := UsedCurrencies(expenses)
	want := []trip.Currency{trip.JPY, trip.TWD} // display order, deduplicated
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UsedCurrencies = %v, want %v", got, want)
	}

	if UsedCurrencies(nil) != nil {
		t.Error("no expenses should yield no currencies")
	}
}
