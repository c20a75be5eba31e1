package helpers

import (
	"errors"
	"fmt"
	"runtime/debug"

	"coin-market-api/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

var (
	ErrCoinNotFound      = errors.New("coin not found")
	ErrNoPriceData       = errors.New("no price data available")
	ErrNoCoinMetadata    = errors.New("no coin metadata available")
	ErrUnknownConnection = errors.New("unknown connection")
	ErrSlowConsumer      = errors.New("send buffer full")
)

type CoinMarketError struct {
	Message string
	Cause   error
}

func (e *CoinMarketError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CoinMarketError) Unwrap() error {
	return e.Cause
}

// Distinct kinds so callers can tell "not found" from "broken data" with errors.As
type ConfigurationError struct{ CoinMarketError }
type DataError struct{ CoinMarketError }

// LookupError reports a coin that cannot be served. Message is what the client sees.
type LookupError struct {
	CoinMarketError
	CoinID string
}

// -----------------------------------------------------------------------------

func NewLookupError(coinID string, cause error) *LookupError {
	var msg string
	switch {
	case errors.Is(cause, ErrNoPriceData):
		msg = "No price data available"
	case errors.Is(cause, ErrNoCoinMetadata):
		msg = fmt.Sprintf("No coin information available for %s", coinID)
	default:
		msg = fmt.Sprintf("No historical data available for %s", coinID)
	}
	return &LookupError{CoinMarketError: CoinMarketError{Message: msg, Cause: cause}, CoinID: coinID}
}

// Error hides the cause: the message is already client facing.
func (e *LookupError) Error() string {
	return e.Message
}

func NewDataError(message string, cause error) *DataError {
	return &DataError{CoinMarketError{Message: message, Cause: cause}}
}

func NewConfigurationError(message string, cause error) *ConfigurationError {
	return &ConfigurationError{CoinMarketError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Panic Recovery
// -----------------------------------------------------------------------------

// Safely runs fn and turns a panic into an error so background loops survive it.
func Safely(log *logger.Logger, operation string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic recovered in %s: %v\n%s", operation, r, debug.Stack())
			err = &CoinMarketError{Message: fmt.Sprintf("%s panicked", operation), Cause: fmt.Errorf("%v", r)}
		}
	}()
	return fn()
}
