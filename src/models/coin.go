package models

// -----------------------------------------------------------------------------
// Sample document shapes
// -----------------------------------------------------------------------------

// MCoin is the static metadata of one coin as found in the sample document.
type MCoin struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Symbol        string      `json:"symbol"`
	MarketCapRank int         `json:"market_cap_rank"`
	MarketData    MMarketData `json:"market_data"`
}

// MMarketData holds per-currency figures keyed by currency code ("usd").
// Supply figures are nullable in the source data.
type MMarketData struct {
	CurrentPrice        map[string]float64 `json:"current_price"`
	TotalSupply         *float64           `json:"total_supply"`
	MaxSupply           *float64           `json:"max_supply"`
	CirculatingSupply   *float64           `json:"circulating_supply"`
	Ath                 map[string]float64 `json:"ath"`
	Atl                 map[string]float64 `json:"atl"`
	AthChangePercentage map[string]float64 `json:"ath_change_percentage"`
	AtlChangePercentage map[string]float64 `json:"atl_change_percentage"`
}

// MSeriesPoint is a [timestamp_ms, value] pair.
type MSeriesPoint [2]float64

func (p MSeriesPoint) TimestampMs() int64 { return int64(p[0]) }
func (p MSeriesPoint) Value() float64     { return p[1] }

// MHistoricalSeries is time-aligned by index, not by timestamp.
type MHistoricalSeries struct {
	Prices       []MSeriesPoint `json:"prices"`
	TotalVolumes []MSeriesPoint `json:"total_volumes"`
	MarketCaps   []MSeriesPoint `json:"market_caps"`
}
