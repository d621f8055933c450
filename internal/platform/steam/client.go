// Package steam implements the Steam Community Market adapter. The market
// has no API key: it serves the same endpoints the web UI uses, blocks
// requests without a realistic browser User-Agent, and occasionally returns
// JSON with a UTF-8 byte-order mark prepended.
package steam

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/opavlenko/skinarb/internal/currency"
	"github.com/opavlenko/skinarb/internal/domain"
)

// defaultUserAgent is sent when the config does not override it. Steam
// rejects obviously non-browser agents.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// defaultSearchCount matches the page size the original frontend requested.
const defaultSearchCount = 20

// maxSearchCount is the largest page the search endpoint serves.
const maxSearchCount = 100

// steamCurrencyCodes maps known currencies to Steam's numeric currency
// parameter for /market/priceoverview/.
var steamCurrencyCodes = map[domain.Currency]string{
	domain.CurrencyUSD: "1",
	domain.CurrencyGBP: "2",
	domain.CurrencyEUR: "3",
	domain.CurrencyPLN: "6",
	domain.CurrencyUAH: "18",
	domain.CurrencyCNY: "23",
}

// Config holds the static per-adapter settings.
type Config struct {
	// BaseURL is the community root, e.g. "https://steamcommunity.com".
	BaseURL string

	// IconBaseURL prefixes the icon suffixes search results carry.
	IconBaseURL string

	// UserAgent overrides the spoofed browser agent.
	UserAgent string

	// LocalCurrency is the currency the search endpoint prices in (it has no
	// currency parameter; prices follow the requesting region).
	LocalCurrency domain.Currency

	// FeeBps is the venue sale fee in basis points.
	FeeBps int64
}

// Client is the Steam Community Market adapter.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// New creates a Steam adapter from the given config, filling defaults for
// unset fields.
func New(cfg Config) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.IconBaseURL == "" {
		cfg.IconBaseURL = "https://steamcommunity-a.akamaihd.net/economy/image/"
	}
	if cfg.LocalCurrency == "" {
		cfg.LocalCurrency = domain.CurrencyUSD
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Venue implements domain.Marketplace.
func (c *Client) Venue() domain.Venue { return domain.VenueSteam }

// FeeBps implements domain.Marketplace.
func (c *Client) FeeBps() int64 { return c.cfg.FeeBps }

// Search returns up to limit listings matching query, most popular first.
func (c *Client) Search(ctx context.Context, query string, game domain.Game, limit int, cur domain.Currency) ([]domain.Listing, error) {
	if !game.Valid() {
		return nil, fmt.Errorf("steam: search: %w: game %q", domain.ErrInvalidRequest, game)
	}
	if limit <= 0 {
		limit = defaultSearchCount
	}
	if limit > maxSearchCount {
		limit = maxSearchCount
	}

	params := url.Values{}
	params.Set("search_descriptions", "0")
	params.Set("sort_column", "popular")
	params.Set("sort_dir", "desc")
	params.Set("appid", game.SteamAppID())
	params.Set("norender", "1")
	params.Set("count", strconv.Itoa(limit))
	params.Set("query", query)

	body, err := c.doGet(ctx, "/market/search/render/?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("steam: search: %w", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(stripBOM(body), &resp); err != nil {
		return nil, fmt.Errorf("steam: decode search results: %w (%v)", domain.ErrMalformedResponse, err)
	}

	listings := make([]domain.Listing, 0, len(resp.Results))
	for _, r := range resp.Results {
		listings = append(listings, c.toListing(r, cur))
	}
	return listings, nil
}

// PriceLookup returns the current lowest sell price for one item. A 200
// response without a price field is the zero-price sentinel.
func (c *Client) PriceLookup(ctx context.Context, marketKey string, game domain.Game, cur domain.Currency) (domain.PriceQuote, error) {
	if !game.Valid() {
		return domain.PriceQuote{}, fmt.Errorf("steam: price lookup: %w: game %q", domain.ErrInvalidRequest, game)
	}

	code, ok := steamCurrencyCodes[cur]
	if !ok {
		return domain.PriceQuote{}, fmt.Errorf("steam: price lookup: %w: currency %q", domain.ErrInvalidRequest, cur)
	}

	params := url.Values{}
	params.Set("appid", game.SteamAppID())
	params.Set("currency", code)
	params.Set("market_hash_name", marketKey)

	body, err := c.doGet(ctx, "/market/priceoverview/?"+params.Encode())
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("steam: price lookup %s: %w", marketKey, err)
	}

	var resp priceOverviewResponse
	if err := json.Unmarshal(stripBOM(body), &resp); err != nil {
		return domain.PriceQuote{}, fmt.Errorf("steam: decode price overview: %w (%v)", domain.ErrMalformedResponse, err)
	}

	quote := domain.PriceQuote{
		MarketKey:  marketKey,
		Currency:   cur,
		ObservedAt: time.Now().UTC(),
	}

	// Absent price fields mean "no data", not a failure.
	text := resp.LowestPrice
	if text == "" {
		text = resp.MedianPrice
	}
	if text == "" {
		return quote, nil
	}

	minor, err := currency.Normalize(text)
	if err != nil {
		return quote, nil
	}
	quote.PriceMinor = minor
	return quote, nil
}

// PriceHistory returns the sale history series for one item. The upstream
// sometimes serves the JSON as text with a leading byte-order mark; a non-200
// status or an unparsable body is a real failure, never "no history".
func (c *Client) PriceHistory(ctx context.Context, marketKey string, game domain.Game) (domain.PriceHistory, error) {
	if !game.Valid() {
		return domain.PriceHistory{}, fmt.Errorf("steam: price history: %w: game %q", domain.ErrInvalidRequest, game)
	}

	params := url.Values{}
	params.Set("appid", game.SteamAppID())
	params.Set("market_hash_name", marketKey)

	body, err := c.doGet(ctx, "/market/pricehistory/?"+params.Encode())
	if err != nil {
		return domain.PriceHistory{}, fmt.Errorf("steam: price history %s: %w", marketKey, err)
	}

	var resp priceHistoryResponse
	if err := json.Unmarshal(stripBOM(body), &resp); err != nil {
		return domain.PriceHistory{}, fmt.Errorf("steam: decode price history: %w (%v)", domain.ErrMalformedResponse, err)
	}

	history := domain.PriceHistory{Success: resp.Success, Points: make([]domain.HistoryPoint, 0, len(resp.Prices))}
	for _, raw := range resp.Prices {
		if p, ok := parseHistoryPoint(raw); ok {
			history.Points = append(history.Points, p)
		}
	}
	return history, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doGet sends an unauthenticated GET with the spoofed browser agent and maps
// the response status to the domain error taxonomy.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w (%v)", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response (%v)", domain.ErrUpstreamUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.ErrRateLimited
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: HTTP %d", domain.ErrUpstreamRejected, resp.StatusCode)
	}

	return body, nil
}

// toListing converts one search row, normalizing the display price text and
// converting from the region currency to the caller's.
func (c *Client) toListing(r searchResult, cur domain.Currency) domain.Listing {
	listing := domain.Listing{
		Name:      r.Name,
		MarketKey: r.HashName,
		Currency:  cur,
	}
	if r.AssetDesc.IconURL != "" {
		listing.IconRef = c.cfg.IconBaseURL + r.AssetDesc.IconURL
	}

	minor, err := currency.Normalize(r.SellPriceText)
	if err != nil {
		// Fall back to the structured minor-unit field; an item without any
		// usable price keeps the zero sentinel.
		if m, ferr := currency.FromMinor(r.SellPrice); ferr == nil {
			minor = m
		}
	}
	if converted, err := currency.Convert(minor, c.cfg.LocalCurrency, cur); err == nil {
		listing.PriceMinor = converted
	}
	return listing
}

// parseHistoryPoint decodes one [label, price, volume] triple.
func parseHistoryPoint(raw []any) (domain.HistoryPoint, bool) {
	if len(raw) != 3 {
		return domain.HistoryPoint{}, false
	}
	label, ok := raw[0].(string)
	if !ok {
		return domain.HistoryPoint{}, false
	}
	price, ok := raw[1].(float64)
	if !ok {
		return domain.HistoryPoint{}, false
	}
	volume := ""
	switch v := raw[2].(type) {
	case string:
		volume = v
	case float64:
		volume = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return domain.HistoryPoint{Label: label, Price: price, Volume: volume}, true
}

// stripBOM removes a leading UTF-8 byte-order mark so BOM-prefixed bodies
// decode like plain JSON.
func stripBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})
}

// Compile-time interface checks.
var (
	_ domain.Marketplace    = (*Client)(nil)
	_ domain.PriceHistorian = (*Client)(nil)
)
