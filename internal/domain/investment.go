package domain

import "time"

// Investment is a user-entered record of an item bought for tracking
// purposes. Investments are the only user data the service persists.
type Investment struct {
	ID            string    `json:"id"`
	ItemName      string    `json:"item_name"`
	MarketKey     string    `json:"market_hash_name"`
	Game          Game      `json:"game"`
	Venue         Venue     `json:"venue"`
	BuyPriceMinor int64     `json:"buy_price_minor"`
	Currency      Currency  `json:"currency"`
	Quantity      int       `json:"quantity"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
