package trip

// Currency is one of the closed set of currencies an expense can be recorded
// in. Balances are computed and displayed independently per currency; there
// is no conversion between them.
type Currency string

const (
	JPY Currency = "JPY"
	USD Currency = "USD"
	EUR Currency = "EUR"
	TWD Currency = "TWD"
	KRW Currency = "KRW"
)

// Currencies lists every supported currency in display order.
var Currencies = []Currency{JPY, USD, EUR, TWD, KRW}

// Valid reports whether c is one of the supported currencies.
func (c Currency) Valid() bool {
	for _, cur := range Currencies {
		if c == cur {
			return true
		}
	}
	return false
}
