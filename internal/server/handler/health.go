package handler

import (
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/opavlenko/skinarb/internal/service"
)

// HealthHandler serves the health-check endpoint.
type HealthHandler struct {
	markets *service.MarketService
	logger  *slog.Logger
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(markets *service.MarketService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{markets: markets, logger: logger}
}

// HealthCheck reports liveness and which venues came up with credentials.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	venues := h.markets.Venues()
	names := make([]string, 0, len(venues))
	for _, v := range venues {
		names = append(names, string(v))
	}
	sort.Strings(names)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"venues":    names,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
