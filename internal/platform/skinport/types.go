package skinport

// item is one row of the /items catalog dump. Prices are major-unit decimals
// in the requested currency; MinPrice is the current cheapest listing.
type item struct {
	MarketHashName string   `json:"market_hash_name"`
	Currency       string   `json:"currency"`
	ItemPage       string   `json:"item_page"`
	MarketPage     string   `json:"market_page"`
	MinPrice       *float64 `json:"min_price"`
	MaxPrice       *float64 `json:"max_price"`
	MeanPrice      *float64 `json:"mean_price"`
	Quantity       int      `json:"quantity"`
}
