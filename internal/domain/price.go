package domain

import (
	"fmt"
	"strings"
	"time"
)

// Currency is an ISO-4217 currency code. Prices are always carried as an
// integer count of the currency's minor unit (cents, kopiykas) to keep
// spread arithmetic exact.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyUAH Currency = "UAH"
	CurrencyGBP Currency = "GBP"
	CurrencyPLN Currency = "PLN"
	CurrencyCNY Currency = "CNY"
)

// knownCurrencies enumerates the currencies the service can normalize and
// convert between.
var knownCurrencies = map[Currency]bool{
	CurrencyUSD: true,
	CurrencyEUR: true,
	CurrencyUAH: true,
	CurrencyGBP: true,
	CurrencyPLN: true,
	CurrencyCNY: true,
}

// ParseCurrency resolves a caller-supplied currency code. Unknown codes are
// an ErrInvalidRequest.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !knownCurrencies[c] {
		return "", fmt.Errorf("%w: unknown currency %q", ErrInvalidRequest, s)
	}
	return c, nil
}

// Valid reports whether c is a known currency.
func (c Currency) Valid() bool {
	return knownCurrencies[c]
}

// PriceQuote is a single observed price for an item on one marketplace.
// PriceMinor == 0 is the "no price available" sentinel, not a free item;
// the arbitrage engine excludes sentinel quotes from scoring.
type PriceQuote struct {
	MarketKey  string    `json:"market_key"`
	PriceMinor int64     `json:"price_minor"`
	Currency   Currency  `json:"currency"`
	ObservedAt time.Time `json:"observed_at"`
}

// Available reports whether the quote carries a real price.
func (q PriceQuote) Available() bool {
	return q.PriceMinor > 0
}

// Major returns the price in major units (e.g. dollars) for presentation.
// Internal arithmetic stays on PriceMinor.
func (q PriceQuote) Major() float64 {
	return float64(q.PriceMinor) / 100
}

// HistoryPoint is one entry of a marketplace price-history series: the
// upstream's timestamp label, the price in major units, and the traded
// volume for that bucket.
type HistoryPoint struct {
	Label  string
	Price  float64
	Volume string
}

// PriceHistory is the series an upstream returns for one item. It is passed
// through to callers; the service does not persist it.
type PriceHistory struct {
	Success bool
	Points  []HistoryPoint
}
