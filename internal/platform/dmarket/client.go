// Package dmarket implements the DMarket adapter. Every request carries the
// X-Api-Key / X-Request-Sign / X-Sign-Date header triple built by the
// request signer; the exchange settles in USD regardless of the caller's
// display currency.
package dmarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/opavlenko/skinarb/internal/crypto"
	"github.com/opavlenko/skinarb/internal/currency"
	"github.com/opavlenko/skinarb/internal/domain"
)

// maxPageSize is the upstream-enforced limit cap. Larger caller limits are
// capped silently, never rejected.
const maxPageSize = 100

// settlementCurrency is the currency DMarket prices in.
const settlementCurrency = domain.CurrencyUSD

// Config holds the static per-adapter settings.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.dmarket.com".
	BaseURL string

	// Auth is the signing key pair.
	Auth crypto.HMACAuth

	// GameIDs maps supported games to DMarket game identifiers.
	GameIDs map[domain.Game]string

	// FeeBps is the venue sale fee in basis points.
	FeeBps int64
}

// Client is the DMarket adapter.
type Client struct {
	cfg        Config
	httpClient *http.Client

	// now supplies the signing timestamp; overridable in tests.
	now func() int64
}

// New creates a DMarket adapter. It returns domain.ErrConfigMissing when the
// key pair is absent, so the caller can skip this venue without killing the
// process.
func New(cfg Config) (*Client, error) {
	if cfg.Auth.PublicKey == "" || cfg.Auth.SecretKey == "" {
		return nil, fmt.Errorf("dmarket: %w: public/secret key pair", domain.ErrConfigMissing)
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: func() int64 { return time.Now().Unix() },
	}, nil
}

// Venue implements domain.Marketplace.
func (c *Client) Venue() domain.Venue { return domain.VenueDMarket }

// FeeBps implements domain.Marketplace.
func (c *Client) FeeBps() int64 { return c.cfg.FeeBps }

// Search returns up to limit listings whose title matches query.
func (c *Client) Search(ctx context.Context, query string, game domain.Game, limit int, cur domain.Currency) ([]domain.Listing, error) {
	gameID, ok := c.cfg.GameIDs[game]
	if !ok {
		return nil, fmt.Errorf("dmarket: search: %w: game %q", domain.ErrInvalidRequest, game)
	}
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	params := url.Values{}
	params.Set("gameId", gameID)
	params.Set("title", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", "0")
	params.Set("currency", string(settlementCurrency))

	body, err := c.doSignedGet(ctx, "/exchange/v1/market/items", params.Encode())
	if err != nil {
		return nil, fmt.Errorf("dmarket: search: %w", err)
	}

	var resp marketItemsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("dmarket: decode market items: %w (%v)", domain.ErrMalformedResponse, err)
	}

	listings := make([]domain.Listing, 0, len(resp.Objects))
	for _, obj := range resp.Objects {
		l, err := toListing(obj, cur)
		if err != nil {
			return nil, fmt.Errorf("dmarket: search: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// PriceLookup returns the best aggregated offer for one item. An empty
// aggregation is the zero-price sentinel.
func (c *Client) PriceLookup(ctx context.Context, marketKey string, game domain.Game, cur domain.Currency) (domain.PriceQuote, error) {
	if _, ok := c.cfg.GameIDs[game]; !ok {
		return domain.PriceQuote{}, fmt.Errorf("dmarket: price lookup: %w: game %q", domain.ErrInvalidRequest, game)
	}

	params := url.Values{}
	params.Set("Titles", marketKey)
	params.Set("Limit", "1")

	body, err := c.doSignedGet(ctx, "/price-aggregator/v1/aggregated-prices", params.Encode())
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("dmarket: price lookup %s: %w", marketKey, err)
	}

	var resp aggregatedPricesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.PriceQuote{}, fmt.Errorf("dmarket: decode aggregated prices: %w (%v)", domain.ErrMalformedResponse, err)
	}

	quote := domain.PriceQuote{
		MarketKey:  marketKey,
		Currency:   cur,
		ObservedAt: time.Now().UTC(),
	}

	if len(resp.AggregatedTitles) == 0 || resp.AggregatedTitles[0].Offers.BestPrice == "" {
		// No offers for this title: sentinel, not an error.
		return quote, nil
	}

	minor, err := currency.Normalize(resp.AggregatedTitles[0].Offers.BestPrice)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("dmarket: price lookup %s: %w (%v)", marketKey, domain.ErrMalformedResponse, err)
	}
	converted, err := currency.Convert(minor, settlementCurrency, cur)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("dmarket: price lookup %s: %w", marketKey, err)
	}
	quote.PriceMinor = converted
	return quote, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doSignedGet sends a GET request with the signature headers attached and
// maps the response status to the domain error taxonomy.
func (c *Client) doSignedGet(ctx context.Context, path, rawQuery string) ([]byte, error) {
	fullURL := c.cfg.BaseURL + path
	if rawQuery != "" {
		fullURL += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	for k, v := range c.cfg.Auth.RequestHeaders(http.MethodGet, path, rawQuery, "", c.now()) {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w (%v)", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response (%v)", domain.ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, domain.ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		_ = json.Unmarshal(body, &apiErr)
		return nil, fmt.Errorf("%w: HTTP %d %s (%s)", domain.ErrUpstreamRejected, resp.StatusCode, apiErr.Message, apiErr.Code)
	}

	return body, nil
}

// toListing converts one exchange row. Prices arrive as minor-unit strings
// in the settlement currency.
func toListing(obj marketItem, cur domain.Currency) (domain.Listing, error) {
	listing := domain.Listing{
		Name:       obj.Title,
		MarketKey:  obj.Title,
		IconRef:    obj.Image,
		Currency:   cur,
		FloatValue: obj.Extra.FloatValue,
	}
	for _, s := range obj.Extra.Stickers {
		listing.Stickers = append(listing.Stickers, s.Name)
	}

	raw, ok := obj.Price[string(settlementCurrency)]
	if !ok || raw == "" {
		return listing, nil
	}
	cents, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("%w: price %q (%v)", domain.ErrMalformedResponse, raw, err)
	}
	minor, err := currency.FromMinor(cents)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("%w: price %q (%v)", domain.ErrMalformedResponse, raw, err)
	}
	converted, err := currency.Convert(minor, settlementCurrency, cur)
	if err != nil {
		return domain.Listing{}, err
	}
	listing.PriceMinor = converted
	return listing, nil
}

// Compile-time interface check.
var _ domain.Marketplace = (*Client)(nil)
