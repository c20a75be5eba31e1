package realtime

import (
	"math/rand/v2"
	"sync"
	"time"

	"coin-market-api/src/models"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------

// Simulator random-walks the last known price of seeded coins. Only coins
// with a seed price ever tick.
type Simulator struct {
	mu               sync.Mutex
	lastPrices       map[string]float64
	baseTimestamp    int64
	stepMs           int64
	count            int64
	maxChangePercent float64
	rng              *rand.Rand
}

// -----------------------------------------------------------------------------

// NewSimulator builds a simulator whose synthetic timestamps start at
// baseTimestamp (ms) and advance by step per generated tick. A nil rng is
// replaced by a time-seeded one.
func NewSimulator(seeds map[string]float64, baseTimestamp int64, step time.Duration, maxChangePercent float64, rng *rand.Rand) *Simulator {
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now>>1))
	}
	prices := make(map[string]float64, len(seeds))
	for coin, price := range seeds {
		prices[coin] = price
	}
	return &Simulator{
		lastPrices:       prices,
		baseTimestamp:    baseTimestamp,
		stepMs:           step.Milliseconds(),
		maxChangePercent: maxChangePercent,
		rng:              rng,
	}
}

// -----------------------------------------------------------------------------

func (s *Simulator) Known(coinID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.lastPrices[coinID]
	return ok
}

// -----------------------------------------------------------------------------

// Next moves coinID by a uniform random change within ±maxChangePercent and
// returns the tick. ok is false for coins without a simulated price.
func (s *Simulator) Next(coinID string) (models.MPriceUpdate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.lastPrices[coinID]
	if !ok {
		return models.MPriceUpdate{}, false
	}

	changePercent := (s.rng.Float64()*2 - 1) * s.maxChangePercent
	price := current * (1 + changePercent/100)
	s.lastPrices[coinID] = price

	// Counter is shared by all coins and never reset, so timestamps are strictly increasing
	s.count++
	return models.MPriceUpdate{
		Symbol:    coinID,
		Price:     decimal.NewFromFloat(price).Round(2).InexactFloat64(),
		Timestamp: s.baseTimestamp + s.count*s.stepMs,
	}, true
}

// -----------------------------------------------------------------------------

// Prices returns a copy of the current simulated prices.
func (s *Simulator) Prices() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]float64, len(s.lastPrices))
	for coin, price := range s.lastPrices {
		out[coin] = price
	}
	return out
}

// -----------------------------------------------------------------------------

// Generated is the number of ticks produced so far.
func (s *Simulator) Generated() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}
