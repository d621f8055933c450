package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/opavlenko/skinarb/internal/domain"
	"github.com/opavlenko/skinarb/internal/service"
)

// InvestmentHandler serves the investment-record CRUD endpoints.
type InvestmentHandler struct {
	investments *service.InvestmentService
	logger      *slog.Logger
}

// NewInvestmentHandler creates an InvestmentHandler.
func NewInvestmentHandler(investments *service.InvestmentService, logger *slog.Logger) *InvestmentHandler {
	return &InvestmentHandler{
		investments: investments,
		logger:      logHandler(logger, "investment"),
	}
}

// List returns a page of investments with the total count.
// GET /api/investments?limit=&offset=
func (h *InvestmentHandler) List(w http.ResponseWriter, r *http.Request) {
	invs, total, err := h.investments.List(r.Context(), parseListOpts(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list failed", slog.String("error", err.Error()))
		writeDomainError(w, err)
		return
	}
	if invs == nil {
		invs = []domain.Investment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"investments": invs,
		"total":       total,
	})
}

// Create stores a new investment.
// POST /api/investments
func (h *InvestmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var inv domain.Investment
	if err := json.NewDecoder(r.Body).Decode(&inv); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created, err := h.investments.Create(r.Context(), inv)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Get returns one investment by ID.
// GET /api/investments/{id}
func (h *InvestmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.investments.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// Update rewrites one investment.
// PUT /api/investments/{id}
func (h *InvestmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var inv domain.Investment
	if err := json.NewDecoder(r.Body).Decode(&inv); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	updated, err := h.investments.Update(r.Context(), pathParam(r, "id"), inv)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes one investment.
// DELETE /api/investments/{id}
func (h *InvestmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.investments.Delete(r.Context(), pathParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
