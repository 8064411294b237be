package forecast

import "errors"

// Data-preparation errors abort the whole request: no fallback is possible
// without clean data.
var (
	// ErrInvalidDate is returned when a record's date field cannot be parsed.
	ErrInvalidDate = errors.New("invalid date value")
	// ErrMissingColumn is returned when the requested value field is absent.
	ErrMissingColumn = errors.New("value column not found")
	// ErrInsufficientData is returned when fewer than MinDataPoints unique
	// timestamps remain after deduplication.
	ErrInsufficientData = errors.New("insufficient data points")
	// ErrNoHistoricalData is returned only when the prepared series itself is
	// empty or absent; it is the single fatal training-side failure.
	ErrNoHistoricalData = errors.New("no historical data available")
)

// Tier failures are internal: they trigger a transition to the next fallback
// tier and are never surfaced to the caller as hard errors.
var (
	errPrimaryTrainingFailed  = errors.New("primary training failed")
	errFallbackTrainingFailed = errors.New("fallback training failed")
)
