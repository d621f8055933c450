package domain

import (
	"context"
	"fmt"
	"strings"
)

// Venue identifies one of the aggregated marketplaces.
type Venue string

const (
	VenueSteam    Venue = "steam"
	VenueDMarket  Venue = "dmarket"
	VenueSkinport Venue = "skinport"
)

// ParseVenue resolves a caller-supplied marketplace name. Unknown names are
// an ErrInvalidRequest.
func ParseVenue(s string) (Venue, error) {
	switch Venue(strings.ToLower(strings.TrimSpace(s))) {
	case VenueSteam:
		return VenueSteam, nil
	case VenueDMarket:
		return VenueDMarket, nil
	case VenueSkinport:
		return VenueSkinport, nil
	default:
		return "", fmt.Errorf("%w: unknown marketplace %q", ErrInvalidRequest, s)
	}
}

// Marketplace is the uniform adapter surface over one venue. Implementations
// normalize every upstream price through the currency package before
// returning, so callers only ever see minor-unit integers.
type Marketplace interface {
	// Venue returns the adapter's identifier.
	Venue() Venue

	// FeeBps returns the venue's sale fee in basis points (e.g. 700 for 7%),
	// applied to the destination leg when scoring a spread.
	FeeBps() int64

	// Search returns up to limit listings matching query. Adapters with an
	// upstream-enforced page maximum cap limit silently; adapters without
	// server-side limiting truncate client-side.
	Search(ctx context.Context, query string, game Game, limit int, cur Currency) ([]Listing, error)

	// PriceLookup returns the current price of one item. An upstream
	// "no data" answer is a sentinel zero-price quote, not an error.
	PriceLookup(ctx context.Context, marketKey string, game Game, cur Currency) (PriceQuote, error)
}

// PriceHistorian is implemented by adapters whose upstream exposes a price
// history series (only the Steam scrape adapter today).
type PriceHistorian interface {
	PriceHistory(ctx context.Context, marketKey string, game Game) (PriceHistory, error)
}
