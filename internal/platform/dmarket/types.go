package dmarket

// marketItemsResponse is the shape of /exchange/v1/market/items.
type marketItemsResponse struct {
	Objects []marketItem `json:"objects"`
	Total   string       `json:"total"`
}

// marketItem is one listing row. Price values are minor-unit integers
// encoded as strings, keyed by settlement currency.
type marketItem struct {
	Title string            `json:"title"`
	Image string            `json:"image"`
	Price map[string]string `json:"price"`
	Extra itemExtra         `json:"extra"`
}

// itemExtra carries the optional skin attributes DMarket exposes.
type itemExtra struct {
	FloatValue *float64 `json:"floatValue,omitempty"`
	Stickers   []struct {
		Name string `json:"name"`
	} `json:"stickers,omitempty"`
}

// aggregatedPricesResponse is the shape of
// /price-aggregator/v1/aggregated-prices.
type aggregatedPricesResponse struct {
	AggregatedTitles []aggregatedTitle `json:"AggregatedTitles"`
}

// aggregatedTitle is the best-offer summary for one market hash name.
// BestPrice is a major-unit decimal string.
type aggregatedTitle struct {
	MarketHashName string `json:"MarketHashName"`
	Offers         struct {
		BestPrice string `json:"BestPrice"`
		Count     int    `json:"Count"`
	} `json:"Offers"`
}

// apiError is the error envelope DMarket returns on non-success statuses.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
