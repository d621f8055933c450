// Package arbitrage scans a source marketplace against a destination
// marketplace and scores resale opportunities in exact minor-unit arithmetic.
package arbitrage

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/opavlenko/skinarb/internal/domain"
	"github.com/opavlenko/skinarb/internal/throttle"
)

// defaultLookupConcurrency bounds concurrent destination lookups per scan.
// The pacer serializes dispatches anyway; the bound just keeps goroutine
// count and memory flat on large batches.
const defaultLookupConcurrency = 8

// Policy tunes how scan results are filtered and ordered.
type Policy struct {
	// DropNonPositive removes opportunities whose net spread is zero or
	// negative. Off by default: callers see the full priced set.
	DropNonPositive bool

	// SortBySpread orders results by descending net spread instead of the
	// source listing order.
	SortBySpread bool

	// LookupConcurrency caps in-flight destination lookups. Zero means the
	// default.
	LookupConcurrency int
}

// Engine pairs a source and destination marketplace through the pacer.
type Engine struct {
	pacer  *throttle.Controller
	logger *slog.Logger
}

// NewEngine creates an Engine.
func NewEngine(pacer *throttle.Controller, logger *slog.Logger) *Engine {
	return &Engine{
		pacer:  pacer,
		logger: logger.With(slog.String("component", "arbitrage")),
	}
}

// Scan searches the source venue, prices every hit on the destination venue,
// and scores each pairing. Items that lack a usable price on either side are
// dropped; a single failed destination lookup drops that item only. All
// amounts are minor units in cur; the destination fee is charged in basis
// points of the destination price.
func (e *Engine) Scan(ctx context.Context, source, dest domain.Marketplace, query string, game domain.Game, limit int, cur domain.Currency, policy Policy) ([]domain.ArbitrageOpportunity, error) {
	opportunities, _, err := e.scan(ctx, source, dest, query, game, limit, cur, policy)
	return opportunities, err
}

func (e *Engine) scan(ctx context.Context, source, dest domain.Marketplace, query string, game domain.Game, limit int, cur domain.Currency, policy Policy) ([]domain.ArbitrageOpportunity, int, error) {
	listings, err := e.pacer.Search(ctx, source, query, game, limit, cur)
	if err != nil {
		return nil, 0, fmt.Errorf("arbitrage: search %s: %w", source.Venue(), err)
	}

	quotes := make([]domain.PriceQuote, len(listings))
	g, gctx := errgroup.WithContext(ctx)
	concurrency := policy.LookupConcurrency
	if concurrency <= 0 {
		concurrency = defaultLookupConcurrency
	}
	g.SetLimit(concurrency)
	for i, listing := range listings {
		if listing.PriceMinor <= 0 {
			continue
		}
		g.Go(func() error {
			quote, err := e.pacer.QuoteOrZero(gctx, dest, listing.MarketKey, game, cur)
			if err != nil {
				return err
			}
			quotes[i] = quote
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, fmt.Errorf("arbitrage: price %s: %w", dest.Venue(), err)
	}

	opportunities := make([]domain.ArbitrageOpportunity, 0, len(listings))
	for i, listing := range listings {
		quote := quotes[i]
		if listing.PriceMinor <= 0 || !quote.Available() {
			continue
		}
		opp := score(listing, quote, source.Venue(), dest.Venue(), dest.FeeBps(), cur)
		if policy.DropNonPositive && opp.NetSpreadMinor <= 0 {
			continue
		}
		opportunities = append(opportunities, opp)
	}

	if policy.SortBySpread {
		sort.SliceStable(opportunities, func(i, j int) bool {
			return opportunities[i].NetSpreadMinor > opportunities[j].NetSpreadMinor
		})
	}

	e.logger.InfoContext(ctx, "scan complete",
		slog.String("source", string(source.Venue())),
		slog.String("destination", string(dest.Venue())),
		slog.String("game", string(game)),
		slog.Int("listed", len(listings)),
		slog.Int("opportunities", len(opportunities)),
	)
	return opportunities, len(listings), nil
}

// Report runs Scan and wraps the result with scan metadata.
func (e *Engine) Report(ctx context.Context, source, dest domain.Marketplace, query string, game domain.Game, limit int, cur domain.Currency, policy Policy) (domain.ScanReport, []domain.ArbitrageOpportunity, error) {
	started := time.Now().UTC()
	opportunities, listed, err := e.scan(ctx, source, dest, query, game, limit, cur, policy)
	if err != nil {
		return domain.ScanReport{}, nil, err
	}
	report := domain.ScanReport{
		Source:        source.Venue(),
		Destination:   dest.Venue(),
		Game:          game,
		Currency:      cur,
		Requested:     limit,
		Listed:        listed,
		Opportunities: opportunities,
		StartedAt:     started,
		FinishedAt:    time.Now().UTC(),
	}
	return report, opportunities, nil
}

// score computes fee and net spread in integer minor units. The fee rounds
// down, so net spread never understates the cost by more than one minor unit.
func score(listing domain.Listing, quote domain.PriceQuote, source, dest domain.Venue, feeBps int64, cur domain.Currency) domain.ArbitrageOpportunity {
	fee := quote.PriceMinor * feeBps / 10_000
	return domain.ArbitrageOpportunity{
		ItemName:         listing.Name,
		MarketKey:        listing.MarketKey,
		IconRef:          listing.IconRef,
		SourceMarket:     source,
		SourcePriceMinor: listing.PriceMinor,
		DestMarket:       dest,
		DestPriceMinor:   quote.PriceMinor,
		FeeMinor:         fee,
		NetSpreadMinor:   quote.PriceMinor - listing.PriceMinor - fee,
		Currency:         cur,
	}
}
