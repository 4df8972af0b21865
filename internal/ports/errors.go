package ports

import "errors"

// Standard errors shared by the core and its adapters.
// Callers match them with errors.Is; every layer wraps them with context.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Series and indicator errors
	ErrOutOfRange        = errors.New("index out of range")
	ErrMalformedSeries   = errors.New("malformed time series")
	ErrCyclicDependency  = errors.New("cyclic indicator dependency")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrIndicatorNotBound = errors.New("deferred indicator is not bound")

	// Trading record errors
	ErrInvalidOrderSequence = errors.New("order violates the entry/exit alternation")

	// Exchange Specific Errors
	ErrRateLimited          = errors.New("API rate limit exceeded")
	ErrAuthenticationFailed = errors.New("exchange authentication failed (check API keys)")
	ErrConnectionFailed     = errors.New("failed to connect to the exchange")
	ErrTimeout              = errors.New("operation timed out")

	// Database Specific Errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
)
