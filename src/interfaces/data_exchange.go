package interfaces

// -----------------------------------------------------------------------------
// IDataExchanger is the outward facing server (HTTP + WebSocket).
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Start the server; blocks until it stops
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}

// -----------------------------------------------------------------------------
// IEventEmitter delivers one event to one realtime connection.
// -----------------------------------------------------------------------------

type IEventEmitter interface {
	// Emit returns helpers.ErrUnknownConnection when connID is gone.
	Emit(connID string, event string, payload interface{}) error
}
