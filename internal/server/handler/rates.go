package handler

import (
	"log/slog"
	"net/http"

	"github.com/opavlenko/skinarb/internal/currency"
	"github.com/opavlenko/skinarb/internal/service"
)

// RatesHandler serves the static exchange-rate table.
type RatesHandler struct {
	markets *service.MarketService
	logger  *slog.Logger
}

// NewRatesHandler creates a RatesHandler.
func NewRatesHandler(markets *service.MarketService, logger *slog.Logger) *RatesHandler {
	return &RatesHandler{markets: markets, logger: logHandler(logger, "rates")}
}

// Rates returns either one pairwise rate or the whole units-per-USD table.
// GET /api/rates?from=&to=
func (h *RatesHandler) Rates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")

	if from == "" && to == "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"base":  "USD",
			"rates": h.markets.Rates(),
		})
		return
	}
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "from and to must be given together")
		return
	}

	fromCur, err := currencyParam(from)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	toCur, err := currencyParam(to)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	rate, err := currency.Rate(fromCur, toCur)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"from": fromCur,
		"to":   toCur,
		"rate": rate,
	})
}
