package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"coin-market-api/src/helpers"
	"coin-market-api/src/logger"
	"coin-market-api/src/models"
)

// historicalKey is the one top-level key of the sample document that is not a coin id.
const historicalKey = "historical"

// -----------------------------------------------------------------------------

// SampleStore serves coin metadata and historical series from a static JSON
// document. It is loaded once and never mutated, so reads need no locking.
type SampleStore struct {
	Logger     *logger.Logger
	coins      map[string]models.MCoin
	historical map[string]models.MHistoricalSeries
}

// -----------------------------------------------------------------------------

// NewSampleStore reads and decodes the sample document at path.
func NewSampleStore(path string, log *logger.Logger) (*SampleStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, helpers.NewDataError(fmt.Sprintf("failed to read sample data '%s'", path), err)
	}

	store, err := ParseSampleStore(data, log)
	if err != nil {
		return nil, err
	}

	log.Info("Loaded sample data from %s: %d coins, %d historical series", path, len(store.coins), len(store.historical))
	return store, nil
}

// -----------------------------------------------------------------------------

// ParseSampleStore decodes an in-memory sample document.
func ParseSampleStore(data []byte, log *logger.Logger) (*SampleStore, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, helpers.NewDataError("failed to parse sample data", err)
	}

	s := &SampleStore{
		Logger:     log,
		coins:      make(map[string]models.MCoin),
		historical: make(map[string]models.MHistoricalSeries),
	}

	for key, value := range raw {
		if key == historicalKey {
			if err := s.parseHistorical(value); err != nil {
				return nil, err
			}
			continue
		}

		var coin models.MCoin
		if err := json.Unmarshal(value, &coin); err != nil {
			// One broken record must not take the other coins down with it
			log.Warning("Skipping malformed coin record '%s': %v", key, err)
			continue
		}
		if coin.ID == "" {
			coin.ID = key
		}
		s.coins[key] = coin
	}

	return s, nil
}

// -----------------------------------------------------------------------------

// parseHistorical decodes the series one coin at a time so that a broken
// series only costs that coin its history.
func (s *SampleStore) parseHistorical(data json.RawMessage) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return helpers.NewDataError("failed to parse historical series", err)
	}

	for coinID, value := range raw {
		var series models.MHistoricalSeries
		if err := json.Unmarshal(value, &series); err != nil {
			s.Logger.Warning("Skipping malformed historical series '%s': %v", coinID, err)
			continue
		}
		s.historical[coinID] = series
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *SampleStore) Coin(coinID string) (models.MCoin, bool) {
	coin, ok := s.coins[coinID]
	return coin, ok
}

// -----------------------------------------------------------------------------

func (s *SampleStore) Historical(coinID string) (models.MHistoricalSeries, bool) {
	series, ok := s.historical[coinID]
	return series, ok
}

// -----------------------------------------------------------------------------

// CoinIDs lists every coin with metadata, sorted.
func (s *SampleStore) CoinIDs() []string {
	ids := make([]string, 0, len(s.coins))
	for id := range s.coins {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// -----------------------------------------------------------------------------

// LastTimestamp returns the timestamp (ms) of the last price point of coinID.
func (s *SampleStore) LastTimestamp(coinID string) (int64, bool) {
	series, ok := s.historical[coinID]
	if !ok || len(series.Prices) == 0 {
		return 0, false
	}
	return series.Prices[len(series.Prices)-1].TimestampMs(), true
}
