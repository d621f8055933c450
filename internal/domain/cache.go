package domain

import (
	"context"
	"time"
)

// RateLimiter provides distributed rate limiting for the inbound HTTP API.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// SignalBus provides pub/sub fan-out of scan results to the WebSocket hub.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// QuoteCache stores recent price quotes so repeated lookups for the same item
// do not hit the marketplace again within the TTL.
type QuoteCache interface {
	// SetQuote stores a quote under its venue and market key.
	SetQuote(ctx context.Context, venue Venue, quote PriceQuote) error
	// GetQuote returns a cached quote, or ErrNotFound when absent or expired.
	GetQuote(ctx context.Context, venue Venue, marketKey string, cur Currency) (PriceQuote, error)
}

// LockManager provides distributed locks so overlapping scan runs across
// instances are skipped rather than duplicated.
type LockManager interface {
	// Acquire obtains the lock and returns an unlock func, or ErrLockHeld.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}
