package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/opavlenko/skinarb/internal/domain"
	"github.com/opavlenko/skinarb/internal/service"
)

// defaultSearchLimit matches the old service's page size.
const defaultSearchLimit = 20

// MarketHandler serves search, price, and price-history queries.
type MarketHandler struct {
	markets *service.MarketService
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler.
func NewMarketHandler(markets *service.MarketService, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		markets: markets,
		logger:  logHandler(logger, "market"),
	}
}

// searchItem is the legacy response row for one search result.
type searchItem struct {
	Name       string   `json:"name"`
	MarketKey  string   `json:"market_hash_name"`
	IconRef    string   `json:"icon_url"`
	Price      float64  `json:"price,omitempty"`
	FloatValue *float64 `json:"float_value,omitempty"`
	Stickers   []string `json:"stickers,omitempty"`
}

// Search handles item search on one venue.
// GET /search?query=&game=&market=&limit=&currency=
func (h *MarketHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	game, err := queryGame(r, "game")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	cur, err := queryCurrency(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	venue := q.Get("market")
	if venue == "" {
		venue = string(domain.VenueSteam)
	}
	limit := defaultSearchLimit
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	listings, err := h.markets.Search(r.Context(), venue, q.Get("query"), game, limit, cur)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "search failed",
			slog.String("market", venue),
			slog.String("game", string(game)),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	items := make([]searchItem, 0, len(listings))
	for _, l := range listings {
		items = append(items, searchItem{
			Name:       l.Name,
			MarketKey:  l.MarketKey,
			IconRef:    l.IconRef,
			Price:      major(l.PriceMinor),
			FloatValue: l.FloatValue,
			Stickers:   l.Stickers,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

// Price handles a single-item price lookup.
// GET /price?item_name=&game=&market=&currency=  (alias: GET /current_price)
func (h *MarketHandler) Price(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	itemName := strings.TrimSpace(q.Get("item_name"))
	if itemName == "" {
		writeError(w, http.StatusBadRequest, "item_name is required")
		return
	}
	game, err := queryGame(r, "game")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	cur, err := queryCurrency(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	venue := q.Get("market")
	if venue == "" {
		venue = string(domain.VenueSteam)
	}

	quote, err := h.markets.Quote(r.Context(), venue, itemName, game, cur)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "price lookup failed",
			slog.String("market", venue),
			slog.String("item", itemName),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}
	if !quote.Available() {
		writeError(w, http.StatusNotFound, "price unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"price":    quote.Major(),
		"currency": quote.Currency,
	})
}

// PriceHistory returns the upstream price-history series for one item.
// GET /price_history?item_name=&game=&market=
func (h *MarketHandler) PriceHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	itemName := strings.TrimSpace(q.Get("item_name"))
	if itemName == "" {
		writeError(w, http.StatusBadRequest, "item_name is required")
		return
	}
	game, err := queryGame(r, "game")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	venue := q.Get("market")
	if venue == "" {
		venue = string(domain.VenueSteam)
	}

	history, err := h.markets.History(r.Context(), venue, itemName, game)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "price history failed",
			slog.String("market", venue),
			slog.String("item", itemName),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	// Legacy wire shape: rows of [label, price, volume].
	prices := make([][]any, 0, len(history.Points))
	for _, p := range history.Points {
		prices = append(prices, []any{p.Label, p.Price, p.Volume})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": history.Success,
		"prices":  prices,
	})
}
