package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/opavlenko/skinarb/internal/arbitrage"
	"github.com/opavlenko/skinarb/internal/domain"
	"github.com/opavlenko/skinarb/internal/service"
)

// defaultScanLimit bounds one ad-hoc scan when the caller gives no limit.
const defaultScanLimit = 20

// ArbHandler serves on-demand arbitrage scans.
type ArbHandler struct {
	scans  *service.ScanService
	logger *slog.Logger
}

// NewArbHandler creates an ArbHandler.
func NewArbHandler(scans *service.ScanService, logger *slog.Logger) *ArbHandler {
	return &ArbHandler{
		scans:  scans,
		logger: logHandler(logger, "arbitrage"),
	}
}

// opportunityItem is the response row for one opportunity, in major units.
type opportunityItem struct {
	ItemName     string          `json:"item_name"`
	MarketKey    string          `json:"market_hash_name"`
	IconRef      string          `json:"icon_url"`
	SourceMarket domain.Venue    `json:"source_market"`
	SourcePrice  float64         `json:"source_price"`
	DestMarket   domain.Venue    `json:"dest_market"`
	DestPrice    float64         `json:"dest_price"`
	Fee          float64         `json:"fee"`
	NetSpread    float64         `json:"net_spread"`
	Currency     domain.Currency `json:"currency"`
}

// Opportunities runs a synchronous cross-venue scan.
// GET /api/arbitrage-opportunities?source=&destination=&gameId=&limit=&currency=&sort=&positive_only=
func (h *ArbHandler) Opportunities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	game, err := queryGame(r, "gameId")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	cur, err := queryCurrency(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	limit := defaultScanLimit
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	params := service.ScanParams{
		Source:      q.Get("source"),
		Destination: q.Get("destination"),
		Query:       q.Get("query"),
		Game:        game,
		Limit:       limit,
		Currency:    cur,
		Policy: arbitrage.Policy{
			DropNonPositive: q.Get("positive_only") == "true",
			SortBySpread:    q.Get("sort") == "spread",
		},
	}

	opportunities, err := h.scans.Scan(r.Context(), params)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "scan failed",
			slog.String("source", params.Source),
			slog.String("destination", params.Destination),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	items := make([]opportunityItem, 0, len(opportunities))
	for _, opp := range opportunities {
		items = append(items, opportunityItem{
			ItemName:     opp.ItemName,
			MarketKey:    opp.MarketKey,
			IconRef:      opp.IconRef,
			SourceMarket: opp.SourceMarket,
			SourcePrice:  major(opp.SourcePriceMinor),
			DestMarket:   opp.DestMarket,
			DestPrice:    major(opp.DestPriceMinor),
			Fee:          major(opp.FeeMinor),
			NetSpread:    major(opp.NetSpreadMinor),
			Currency:     opp.Currency,
		})
	}
	writeJSON(w, http.StatusOK, items)
}
