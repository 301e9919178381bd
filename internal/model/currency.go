package model

import "strings"

// Currency is an ISO 4217 code.
type Currency string

const (
	RUB Currency = "RUB"
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	JPY Currency = "JPY"
	CNY Currency = "CNY"
	KZT Currency = "KZT"
	BYN Currency = "BYN"
)

// DefaultCurrency is used when neither a row nor a config names a known currency.
const DefaultCurrency = RUB

var decimalPlaces = map[Currency]int32{
	RUB: 2, USD: 2, EUR: 2, GBP: 2, JPY: 0, CNY: 2, KZT: 2, BYN: 2,
}

var currencyAliases = map[string]Currency{
	"₽":    RUB,
	"руб":  RUB,
	"руб.": RUB,
	"р.":   RUB,
	"rur":  RUB,
	"$":    USD,
	"€":    EUR,
	"£":    GBP,
	"¥":    CNY,
	"₸":    KZT,
	"br":   BYN,
}

// ParseCurrency resolves a code or common symbol. The bool is false for
// anything unrecognized.
func ParseCurrency(raw string) (Currency, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	c := Currency(strings.ToUpper(s))
	if _, ok := decimalPlaces[c]; ok {
		return c, true
	}
	if c, ok := currencyAliases[strings.ToLower(s)]; ok {
		return c, true
	}
	return "", false
}

// Known reports whether c is a supported currency.
func (c Currency) Known() bool {
	_, ok := decimalPlaces[c]
	return ok
}

// DecimalPlaces returns the minor-unit scale, 2 for unknown codes.
func (c Currency) DecimalPlaces() int32 {
	if n, ok := decimalPlaces[c]; ok {
		return n
	}
	return 2
}
