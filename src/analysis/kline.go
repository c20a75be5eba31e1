package analysis

import (
	"strings"
	"time"

	"coin-market-api/src/analysis/core"
	"coin-market-api/src/models"
	"coin-market-api/src/utils"
)

// -----------------------------------------------------------------------------

// FormatKlines zips the three parallel series into one point per price entry.
// Volumes and market caps are matched by index and default to 0 when shorter.
// summary is attached to the last point only. loc sets the trading_date zone.
func FormatKlines(prices, volumes, marketCaps []models.MSeriesPoint, summary models.MCoinSummary, loc *time.Location) []models.MKlinePoint {
	if loc == nil {
		loc = time.Local
	}

	points := make([]models.MKlinePoint, 0, len(prices))

	for i, p := range prices {
		ts := p.TimestampMs() / 1000
		price := p.Value()

		prev := price
		if i > 0 {
			prev = prices[i-1].Value()
		}
		change, changePercent := core.PriceChange(price, prev)

		point := models.MKlinePoint{
			Time:          ts,
			TradingDate:   time.Unix(ts, 0).In(loc).Format(utils.DateLayout),
			Price:         price,
			Volume:        core.ValueAt(volumes, i),
			MarketCap:     core.ValueAt(marketCaps, i),
			Change:        change,
			ChangePercent: changePercent,
		}

		if i == len(prices)-1 {
			s := summary
			point.MCoinSummary = &s
		}

		points = append(points, point)
	}

	return points
}

// -----------------------------------------------------------------------------

// BuildCoinSummary extracts the metadata block for vsCurrency, nulls become 0.
func BuildCoinSummary(coin models.MCoin, vsCurrency string) models.MCoinSummary {
	md := coin.MarketData
	return models.MCoinSummary{
		Name:                coin.Name,
		Symbol:              strings.ToUpper(coin.Symbol),
		MarketCapRank:       coin.MarketCapRank,
		TotalSupply:         core.OrZero(md.TotalSupply),
		MaxSupply:           core.OrZero(md.MaxSupply),
		CirculatingSupply:   core.OrZero(md.CirculatingSupply),
		Ath:                 md.Ath[vsCurrency],
		Atl:                 md.Atl[vsCurrency],
		AthChangePercentage: md.AthChangePercentage[vsCurrency],
		AtlChangePercentage: md.AtlChangePercentage[vsCurrency],
	}
}
