package interfaces

import "coin-market-api/src/models"

// -----------------------------------------------------------------------------
// IMarketStore is the read-only source of coin metadata and history.
// -----------------------------------------------------------------------------

type IMarketStore interface {

	// Coin returns the static metadata of coinID
	Coin(coinID string) (models.MCoin, bool)

	// -----------------------------------------------------------------------------

	// Historical returns the parallel price/volume/market-cap series of coinID
	Historical(coinID string) (models.MHistoricalSeries, bool)

	// -----------------------------------------------------------------------------

	// CoinIDs lists every coin that has metadata
	CoinIDs() []string

	// -----------------------------------------------------------------------------

	// LastTimestamp returns the last price timestamp (ms) of coinID
	LastTimestamp(coinID string) (int64, bool)
}
