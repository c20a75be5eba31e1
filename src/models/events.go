package models

import "encoding/json"

// -----------------------------------------------------------------------------
// Realtime channel events
// -----------------------------------------------------------------------------

const (
	EventConnected   = "connected"
	EventSubscribe   = "subscribe"
	EventPriceUpdate = "price_update"
	EventError       = "error"
)

// MEvent is the envelope of every WebSocket message in both directions.
type MEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// MOutboundEvent is what the hub writes to clients.
type MOutboundEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// MPriceUpdate is one simulated tick.
type MPriceUpdate struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
}
