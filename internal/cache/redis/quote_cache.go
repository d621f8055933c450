package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/opavlenko/skinarb/internal/domain"
)

// quoteTTL bounds staleness of cached marketplace quotes.
const quoteTTL = 60 * time.Second

// QuoteCache implements domain.QuoteCache using Redis hashes. Each quote is
// stored at key "quote:{venue}:{currency}:{marketKey}" with fields "minor"
// (minor-unit price) and "ts" (Unix nanosecond observation time). Zero-price
// sentinel quotes are cached too, so an unlisted item does not trigger an
// upstream call on every request.
type QuoteCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewQuoteCache creates a QuoteCache backed by the given Client.
func NewQuoteCache(c *Client) *QuoteCache {
	return &QuoteCache{rdb: c.rdb, ttl: quoteTTL}
}

func quoteKey(venue domain.Venue, cur domain.Currency, marketKey string) string {
	return "quote:" + string(venue) + ":" + string(cur) + ":" + marketKey
}

// SetQuote stores a quote with the cache TTL.
func (qc *QuoteCache) SetQuote(ctx context.Context, venue domain.Venue, quote domain.PriceQuote) error {
	key := quoteKey(venue, quote.Currency, quote.MarketKey)
	fields := map[string]interface{}{
		"minor": strconv.FormatInt(quote.PriceMinor, 10),
		"ts":    strconv.FormatInt(quote.ObservedAt.UnixNano(), 10),
	}
	pipe := qc.rdb.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, qc.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set quote %s: %w", key, err)
	}
	return nil
}

// GetQuote retrieves a cached quote. It returns domain.ErrNotFound when the
// key does not exist or has expired.
func (qc *QuoteCache) GetQuote(ctx context.Context, venue domain.Venue, marketKey string, cur domain.Currency) (domain.PriceQuote, error) {
	key := quoteKey(venue, cur, marketKey)
	vals, err := qc.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("redis: get quote %s: %w", key, err)
	}
	if len(vals) == 0 {
		return domain.PriceQuote{}, domain.ErrNotFound
	}

	minorStr, ok := vals["minor"]
	if !ok {
		return domain.PriceQuote{}, domain.ErrNotFound
	}
	minor, err := strconv.ParseInt(minorStr, 10, 64)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("redis: parse quote %s: %w", key, err)
	}

	tsStr, ok := vals["ts"]
	if !ok {
		return domain.PriceQuote{}, domain.ErrNotFound
	}
	tsNano, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("redis: parse quote ts %s: %w", key, err)
	}

	return domain.PriceQuote{
		MarketKey:  marketKey,
		PriceMinor: minor,
		Currency:   cur,
		ObservedAt: time.Unix(0, tsNano),
	}, nil
}

// Compile-time interface check.
var _ domain.QuoteCache = (*QuoteCache)(nil)
