package domain

import "time"

// ArbitrageOpportunity is a scored (listing, source price, destination
// price) triple. All monetary fields are minor units in the same currency;
// NetSpreadMinor always equals DestPriceMinor - SourcePriceMinor - FeeMinor.
// An opportunity is never emitted with a zero source or destination price.
type ArbitrageOpportunity struct {
	ItemName         string   `json:"item_name"`
	MarketKey        string   `json:"market_hash_name"`
	IconRef          string   `json:"icon_url"`
	SourceMarket     Venue    `json:"source_market"`
	SourcePriceMinor int64    `json:"source_price_minor"`
	DestMarket       Venue    `json:"dest_market"`
	DestPriceMinor   int64    `json:"dest_price_minor"`
	FeeMinor         int64    `json:"fee_minor"`
	NetSpreadMinor   int64    `json:"net_spread_minor"`
	Currency         Currency `json:"currency"`
}

// ScanReport wraps one completed arbitrage scan for archival and for the
// live stream.
type ScanReport struct {
	ID            string                 `json:"id"`
	Source        Venue                  `json:"source"`
	Destination   Venue                  `json:"destination"`
	Game          Game                   `json:"game"`
	Currency      Currency               `json:"currency"`
	Requested     int                    `json:"requested"`
	Listed        int                    `json:"listed"`
	Opportunities []ArbitrageOpportunity `json:"opportunities"`
	StartedAt     time.Time              `json:"started_at"`
	FinishedAt    time.Time              `json:"finished_at"`
}
