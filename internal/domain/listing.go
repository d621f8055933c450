package domain

// Listing is one item row returned by a marketplace search. Listings live
// for a single aggregation pass and are never persisted.
type Listing struct {
	// Name is the display name of the item.
	Name string `json:"name"`

	// MarketKey is the canonical item identifier shared across marketplaces
	// (Steam calls it market_hash_name). Price lookups on other venues key
	// on this value.
	MarketKey string `json:"market_hash_name"`

	// IconRef is the item image reference, already resolved to a full URL
	// where the upstream only returns a suffix.
	IconRef string `json:"icon_url"`

	// PriceMinor is the listed sell price in minor units on the venue the
	// listing came from. Zero means the venue returned no price.
	PriceMinor int64 `json:"price_minor"`

	// Currency qualifies PriceMinor.
	Currency Currency `json:"currency"`

	// FloatValue is the wear value for skins that carry one.
	FloatValue *float64 `json:"float_value,omitempty"`

	// Stickers lists applied sticker names, when the venue exposes them.
	Stickers []string `json:"stickers,omitempty"`
}
