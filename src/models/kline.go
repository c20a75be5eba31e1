package models

// MCoinSummary is the static metadata block merged into the last kline point.
type MCoinSummary struct {
	Name                string  `json:"name"`
	Symbol              string  `json:"symbol"`
	MarketCapRank       int     `json:"market_cap_rank"`
	TotalSupply         float64 `json:"total_supply"`
	MaxSupply           float64 `json:"max_supply"`
	CirculatingSupply   float64 `json:"circulating_supply"`
	Ath                 float64 `json:"ath"`
	Atl                 float64 `json:"atl"`
	AthChangePercentage float64 `json:"ath_change_percentage"`
	AtlChangePercentage float64 `json:"atl_change_percentage"`
}

// MKlinePoint is one formatted record of a historical series.
// The embedded summary is nil on every point but the last, which keeps
// its fields out of the JSON encoding.
type MKlinePoint struct {
	Time          int64   `json:"time"`
	TradingDate   string  `json:"trading_date"`
	Price         float64 `json:"price"`
	Volume        float64 `json:"volume"`
	MarketCap     float64 `json:"market_cap"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	*MCoinSummary
}

// -----------------------------------------------------------------------------
// Response envelopes
// -----------------------------------------------------------------------------

type MKlineInfo struct {
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Message   *string `json:"message"`
}

type MKlineResponse struct {
	Data []MKlinePoint `json:"data"`
	Info MKlineInfo    `json:"info"`
}

type MKlineErrorInfo struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Error     string `json:"error"`
}

type MKlineErrorResponse struct {
	Data  []MKlinePoint   `json:"data"`
	Error string          `json:"error"`
	Info  MKlineErrorInfo `json:"info"`
}

// MSymbolPrice carries the price as a string, the way the dashboard expects it.
type MSymbolPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}
