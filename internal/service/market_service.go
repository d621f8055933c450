// Package service composes the marketplace adapters, throttle, caches, and
// stores into the operations the HTTP layer exposes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/opavlenko/skinarb/internal/currency"
	"github.com/opavlenko/skinarb/internal/domain"
	"github.com/opavlenko/skinarb/internal/throttle"
)

// MarketService answers search, price, and price-history queries across the
// configured venues. All outbound calls go through the pacer; single-item
// quotes are cached for a short TTL.
type MarketService struct {
	venues map[domain.Venue]domain.Marketplace
	pacer  *throttle.Controller
	quotes domain.QuoteCache
	logger *slog.Logger
}

// NewMarketService creates a MarketService over the configured venues. The
// quote cache is optional; pass nil to disable caching.
func NewMarketService(
	venues map[domain.Venue]domain.Marketplace,
	pacer *throttle.Controller,
	quotes domain.QuoteCache,
	logger *slog.Logger,
) *MarketService {
	return &MarketService{
		venues: venues,
		pacer:  pacer,
		quotes: quotes,
		logger: logger,
	}
}

// Venue resolves a venue name to its configured adapter. A known venue whose
// credentials were absent at startup yields ErrConfigMissing.
func (s *MarketService) Venue(name string) (domain.Marketplace, error) {
	venue, err := domain.ParseVenue(name)
	if err != nil {
		return nil, err
	}
	m, ok := s.venues[venue]
	if !ok {
		return nil, fmt.Errorf("market_service: venue %s: %w", venue, domain.ErrConfigMissing)
	}
	return m, nil
}

// Venues returns the identifiers of every configured venue.
func (s *MarketService) Venues() []domain.Venue {
	out := make([]domain.Venue, 0, len(s.venues))
	for v := range s.venues {
		out = append(out, v)
	}
	return out
}

// Search runs a paced listing search on one venue.
func (s *MarketService) Search(ctx context.Context, venueName, query string, game domain.Game, limit int, cur domain.Currency) ([]domain.Listing, error) {
	m, err := s.Venue(venueName)
	if err != nil {
		return nil, err
	}
	return s.pacer.Search(ctx, m, query, game, limit, cur)
}

// Quote returns the current price of one item on one venue, serving from the
// quote cache when a fresh entry exists. Cache failures are logged and
// ignored; the upstream lookup is the source of truth.
func (s *MarketService) Quote(ctx context.Context, venueName, marketKey string, game domain.Game, cur domain.Currency) (domain.PriceQuote, error) {
	m, err := s.Venue(venueName)
	if err != nil {
		return domain.PriceQuote{}, err
	}

	if s.quotes != nil {
		cached, err := s.quotes.GetQuote(ctx, m.Venue(), marketKey, cur)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "market_service: quote cache read failed",
				slog.String("venue", string(m.Venue())),
				slog.String("error", err.Error()),
			)
		}
	}

	quote, err := s.pacer.Quote(ctx, m, marketKey, game, cur)
	if err != nil {
		return domain.PriceQuote{}, err
	}

	if s.quotes != nil {
		if cacheErr := s.quotes.SetQuote(ctx, m.Venue(), quote); cacheErr != nil {
			s.logger.WarnContext(ctx, "market_service: quote cache write failed",
				slog.String("venue", string(m.Venue())),
				slog.String("error", cacheErr.Error()),
			)
		}
	}
	return quote, nil
}

// History returns the price-history series for one item. Only venues whose
// upstream exposes a history endpoint support this; others are an
// ErrInvalidRequest.
func (s *MarketService) History(ctx context.Context, venueName, marketKey string, game domain.Game) (domain.PriceHistory, error) {
	m, err := s.Venue(venueName)
	if err != nil {
		return domain.PriceHistory{}, err
	}
	historian, ok := m.(domain.PriceHistorian)
	if !ok {
		return domain.PriceHistory{}, fmt.Errorf("%w: venue %s has no price history", domain.ErrInvalidRequest, m.Venue())
	}

	var history domain.PriceHistory
	err = s.pacer.Do(ctx, m.Venue(), func(ctx context.Context) error {
		var err error
		history, err = historian.PriceHistory(ctx, marketKey, game)
		return err
	})
	return history, err
}

// Rates returns the conversion rate table relative to USD for every known
// currency.
func (s *MarketService) Rates() map[domain.Currency]float64 {
	return currency.Rates()
}
