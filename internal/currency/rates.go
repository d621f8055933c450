package currency

import (
	"fmt"
	"math"

	"github.com/opavlenko/skinarb/internal/domain"
)

// usdRates holds units-per-USD for every supported currency. The table is
// static: rate freshness is out of scope, the service only needs a stable
// conversion so that quotes from venues with fixed settlement currencies
// (DMarket settles USD) can be compared in the caller's currency.
var usdRates = map[domain.Currency]float64{
	domain.CurrencyUSD: 1.0,
	domain.CurrencyEUR: 0.92,
	domain.CurrencyUAH: 41.30,
	domain.CurrencyGBP: 0.79,
	domain.CurrencyPLN: 3.95,
	domain.CurrencyCNY: 7.25,
}

// Rates returns a copy of the units-per-USD table for every supported
// currency.
func Rates() map[domain.Currency]float64 {
	out := make(map[domain.Currency]float64, len(usdRates))
	for c, r := range usdRates {
		out[c] = r
	}
	return out
}

// Rate returns how many units of to one unit of from buys.
func Rate(from, to domain.Currency) (float64, error) {
	f, ok := usdRates[from]
	if !ok {
		return 0, fmt.Errorf("%w: unknown currency %q", domain.ErrInvalidRequest, from)
	}
	t, ok := usdRates[to]
	if !ok {
		return 0, fmt.Errorf("%w: unknown currency %q", domain.ErrInvalidRequest, to)
	}
	return t / f, nil
}

// Convert re-denominates a minor-unit amount from one currency to another,
// rounding to the nearest minor unit. A zero amount stays zero, so the
// "price unavailable" sentinel survives conversion.
func Convert(minor int64, from, to domain.Currency) (int64, error) {
	if from == to || minor == 0 {
		return minor, nil
	}
	rate, err := Rate(from, to)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(float64(minor) * rate)), nil
}
