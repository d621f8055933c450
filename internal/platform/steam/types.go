package steam

// searchResponse is the shape of /market/search/render/?norender=1.
type searchResponse struct {
	Success    bool           `json:"success"`
	TotalCount int            `json:"total_count"`
	Results    []searchResult `json:"results"`
}

// searchResult is one item row in a search response. Steam reports the sell
// price both as display text and as a minor-unit integer; the text form is
// authoritative here and goes through the normalizer.
type searchResult struct {
	Name          string `json:"name"`
	HashName      string `json:"hash_name"`
	SellPrice     int64  `json:"sell_price"`
	SellPriceText string `json:"sell_price_text"`
	AssetDesc     struct {
		IconURL string `json:"icon_url"`
	} `json:"asset_description"`
}

// priceOverviewResponse is the shape of /market/priceoverview/. The price
// fields are optional: an HTTP 200 without lowest_price means "no data",
// not an error.
type priceOverviewResponse struct {
	Success     bool   `json:"success"`
	LowestPrice string `json:"lowest_price"`
	MedianPrice string `json:"median_price"`
	Volume      string `json:"volume"`
}

// priceHistoryResponse is the shape of /market/pricehistory/. Each entry is
// a [timestampLabel, price, volume] triple with mixed element types, decoded
// leniently in parseHistoryPoint.
type priceHistoryResponse struct {
	Success bool    `json:"success"`
	Prices  [][]any `json:"prices"`
}
