// Package throttle paces and retries marketplace calls. It enforces a
// minimum spacing between consecutive dispatches to the same venue and
// retries rate-limited calls with exponential backoff; venues pace
// independently of each other.
package throttle

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/opavlenko/skinarb/internal/domain"
)

const (
	// defaultMinSpacing is the per-venue dispatch floor.
	defaultMinSpacing = 300 * time.Millisecond

	// defaultMaxRetries bounds rate-limit retries per call.
	defaultMaxRetries = 3
)

// Config holds the controller settings.
type Config struct {
	// MinSpacing is the minimum gap between two dispatches to one venue.
	MinSpacing time.Duration

	// MaxRetries is how many times a rate-limited call is retried before the
	// rate-limit failure propagates.
	MaxRetries int

	// Backoff is the initial retry delay, doubled per attempt. Defaults to
	// MinSpacing.
	Backoff time.Duration
}

// Controller serializes the pacing clock per venue. The per-venue
// reservation time is the only mutable shared state; it is read and advanced
// under one mutex so concurrent callers to the same venue never interleave.
type Controller struct {
	cfg    Config
	logger *slog.Logger

	mu   sync.Mutex
	next map[domain.Venue]time.Time
}

// New creates a Controller, filling defaults for unset config fields.
func New(cfg Config, logger *slog.Logger) *Controller {
	if cfg.MinSpacing <= 0 {
		cfg.MinSpacing = defaultMinSpacing
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = cfg.MinSpacing
	}
	return &Controller{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "throttle")),
		next:   make(map[domain.Venue]time.Time),
	}
}

// Do runs call under the venue's pacing clock, retrying on
// domain.ErrRateLimited up to MaxRetries with exponential backoff. Any other
// failure returns immediately.
func (c *Controller) Do(ctx context.Context, venue domain.Venue, call func(context.Context) error) error {
	backoff := c.cfg.Backoff
	for attempt := 0; ; attempt++ {
		if err := c.wait(ctx, venue); err != nil {
			return err
		}

		err := call(ctx)
		if err == nil || !errors.Is(err, domain.ErrRateLimited) {
			return err
		}
		if attempt >= c.cfg.MaxRetries {
			c.logger.WarnContext(ctx, "rate limit retries exhausted",
				slog.String("venue", string(venue)),
				slog.Int("attempts", attempt+1),
			)
			return err
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
}

// Search runs a paced search against one marketplace.
func (c *Controller) Search(ctx context.Context, m domain.Marketplace, query string, game domain.Game, limit int, cur domain.Currency) ([]domain.Listing, error) {
	var listings []domain.Listing
	err := c.Do(ctx, m.Venue(), func(ctx context.Context) error {
		var err error
		listings, err = m.Search(ctx, query, game, limit, cur)
		return err
	})
	return listings, err
}

// Quote runs a paced price lookup. Failures propagate to the caller,
// including a rate limit that survived all retries.
func (c *Controller) Quote(ctx context.Context, m domain.Marketplace, marketKey string, game domain.Game, cur domain.Currency) (domain.PriceQuote, error) {
	var quote domain.PriceQuote
	err := c.Do(ctx, m.Venue(), func(ctx context.Context) error {
		var err error
		quote, err = m.PriceLookup(ctx, marketKey, game, cur)
		return err
	})
	return quote, err
}

// QuoteOrZero runs a paced price lookup for batch aggregation: any failure
// (after retries, for rate limits) collapses into the zero-price sentinel so
// one failing item never aborts a batch. Context cancellation still
// propagates.
func (c *Controller) QuoteOrZero(ctx context.Context, m domain.Marketplace, marketKey string, game domain.Game, cur domain.Currency) (domain.PriceQuote, error) {
	quote, err := c.Quote(ctx, m, marketKey, game, cur)
	if err != nil {
		if ctx.Err() != nil {
			return domain.PriceQuote{}, ctx.Err()
		}
		c.logger.WarnContext(ctx, "price lookup absorbed as unavailable",
			slog.String("venue", string(m.Venue())),
			slog.String("market_key", marketKey),
			slog.String("error", err.Error()),
		)
		return domain.PriceQuote{
			MarketKey:  marketKey,
			Currency:   cur,
			ObservedAt: time.Now().UTC(),
		}, nil
	}
	return quote, nil
}

// wait reserves the venue's next dispatch slot and sleeps until it arrives.
// Reservation under the mutex keeps gaps >= MinSpacing even when many
// goroutines target the same venue; other venues are unaffected.
func (c *Controller) wait(ctx context.Context, venue domain.Venue) error {
	c.mu.Lock()
	now := time.Now()
	slot := c.next[venue]
	if slot.Before(now) {
		slot = now
	}
	c.next[venue] = slot.Add(c.cfg.MinSpacing)
	c.mu.Unlock()

	delay := time.Until(slot)
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
