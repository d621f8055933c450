// Package handler implements the HTTP API handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/opavlenko/skinarb/internal/domain"
)

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps a domain error to its HTTP status and writes it.
// Upstream failure details stay in the logs; clients get the category only.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, domain.ErrRateLimited):
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusTooManyRequests, "upstream rate limited")
	case errors.Is(err, domain.ErrConfigMissing):
		writeError(w, http.StatusServiceUnavailable, "marketplace not configured")
	default:
		writeError(w, http.StatusInternalServerError, "upstream error")
	}
}

// parseListOpts extracts standard pagination parameters from the query string.
// Defaults: limit=50 (max 200), offset=0.
func parseListOpts(r *http.Request) domain.ListOpts {
	q := r.URL.Query()

	limit := 50
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 200 {
		limit = 200
	}

	offset := 0
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return domain.ListOpts{
		Limit:  limit,
		Offset: offset,
	}
}

// pathParam extracts a named path parameter from the request using Go 1.22+
// built-in routing (http.Request.PathValue).
func pathParam(r *http.Request, name string) string {
	return r.PathValue(name)
}

// logHandler is a convenience to attach slog fields in handler code.
func logHandler(logger *slog.Logger, handler string) *slog.Logger {
	return logger.With(slog.String("handler", handler))
}

// queryGame parses the named query parameter as a game identifier,
// defaulting to cs2 when the parameter is absent.
func queryGame(r *http.Request, param string) (domain.Game, error) {
	v := r.URL.Query().Get(param)
	if v == "" {
		return domain.GameCS2, nil
	}
	return domain.ParseGame(v)
}

// queryCurrency parses the optional currency parameter, defaulting to USD.
func queryCurrency(r *http.Request) (domain.Currency, error) {
	v := r.URL.Query().Get("currency")
	if v == "" {
		return domain.CurrencyUSD, nil
	}
	return domain.ParseCurrency(v)
}

// currencyParam parses an explicit currency value with no default.
func currencyParam(v string) (domain.Currency, error) {
	return domain.ParseCurrency(v)
}

// major converts a minor-unit amount to major units for response bodies.
func major(minor int64) float64 {
	return float64(minor) / 100
}
