// Package skinport implements the Skinport adapter. Authentication is HTTP
// basic auth over the client-id/client-secret pair. The /items endpoint
// serves the entire catalog with no pagination or sorting support, so query
// filtering and limiting happen client-side.
package skinport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/opavlenko/skinarb/internal/currency"
	"github.com/opavlenko/skinarb/internal/domain"
)

// Config holds the static per-adapter settings.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.skinport.com/v1".
	BaseURL string

	// ClientID and ClientSecret form the basic-auth pair.
	ClientID     string
	ClientSecret string

	// AppIDs maps supported games to Steam app identifiers (Skinport keys
	// its catalog by Steam app).
	AppIDs map[domain.Game]string

	// FeeBps is the venue sale fee in basis points.
	FeeBps int64
}

// Client is the Skinport adapter.
type Client struct {
	cfg        Config
	authHeader string
	httpClient *http.Client
}

// New creates a Skinport adapter. It returns domain.ErrConfigMissing when
// the credential pair is absent, so the caller can skip this venue without
// killing the process.
func New(cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("skinport: %w: client id/secret pair", domain.ErrConfigMissing)
	}
	token := base64.StdEncoding.EncodeToString([]byte(cfg.ClientID + ":" + cfg.ClientSecret))
	return &Client{
		cfg:        cfg,
		authHeader: "Basic " + token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Venue implements domain.Marketplace.
func (c *Client) Venue() domain.Venue { return domain.VenueSkinport }

// FeeBps implements domain.Marketplace.
func (c *Client) FeeBps() int64 { return c.cfg.FeeBps }

// Search fetches the full catalog and filters it client-side: case-
// insensitive substring match on the market hash name, truncated to limit.
func (c *Client) Search(ctx context.Context, query string, game domain.Game, limit int, cur domain.Currency) ([]domain.Listing, error) {
	items, err := c.fetchCatalog(ctx, game, cur)
	if err != nil {
		return nil, fmt.Errorf("skinport: search: %w", err)
	}
	if limit <= 0 {
		limit = len(items)
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	listings := make([]domain.Listing, 0, limit)
	for _, it := range items {
		if needle != "" && !strings.Contains(strings.ToLower(it.MarketHashName), needle) {
			continue
		}
		listings = append(listings, toListing(it, cur))
		if len(listings) >= limit {
			break
		}
	}
	return listings, nil
}

// PriceLookup scans the catalog for one item. Skinport has no single-item
// endpoint, so this shares the full-dump fetch; an absent item or an item
// with no active listings is the zero-price sentinel.
func (c *Client) PriceLookup(ctx context.Context, marketKey string, game domain.Game, cur domain.Currency) (domain.PriceQuote, error) {
	items, err := c.fetchCatalog(ctx, game, cur)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("skinport: price lookup %s: %w", marketKey, err)
	}

	quote := domain.PriceQuote{
		MarketKey:  marketKey,
		Currency:   cur,
		ObservedAt: time.Now().UTC(),
	}
	for _, it := range items {
		if !strings.EqualFold(it.MarketHashName, marketKey) {
			continue
		}
		if it.MinPrice == nil {
			break
		}
		minor, err := currency.FromMajor(*it.MinPrice)
		if err != nil {
			return domain.PriceQuote{}, fmt.Errorf("skinport: price lookup %s: %w (%v)", marketKey, domain.ErrMalformedResponse, err)
		}
		quote.PriceMinor = minor
		break
	}
	return quote, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// fetchCatalog retrieves the unsorted item dump for one game.
func (c *Client) fetchCatalog(ctx context.Context, game domain.Game, cur domain.Currency) ([]item, error) {
	appID, ok := c.cfg.AppIDs[game]
	if !ok {
		return nil, fmt.Errorf("%w: game %q", domain.ErrInvalidRequest, game)
	}

	params := url.Values{}
	params.Set("app_id", appID)
	params.Set("currency", string(cur))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/items?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")

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
		return nil, fmt.Errorf("%w: HTTP %d", domain.ErrUpstreamRejected, resp.StatusCode)
	}

	var items []item
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("%w: decode items (%v)", domain.ErrMalformedResponse, err)
	}
	return items, nil
}

// toListing converts one catalog row. Rows without an active listing keep
// the zero sentinel.
func toListing(it item, cur domain.Currency) domain.Listing {
	listing := domain.Listing{
		Name:      it.MarketHashName,
		MarketKey: it.MarketHashName,
		IconRef:   it.ItemPage,
		Currency:  cur,
	}
	if it.MinPrice != nil {
		if minor, err := currency.FromMajor(*it.MinPrice); err == nil {
			listing.PriceMinor = minor
		}
	}
	return listing
}

// Compile-time interface check.
var _ domain.Marketplace = (*Client)(nil)
