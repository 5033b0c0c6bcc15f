// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors.
//
// Only ErrNoData is ever returned to a caller of the synthesis engine; the
// remaining data and enrichment errors are recovered internally and exist so
// that logs and metrics can name the failure kind.
var (
	// Data errors
	ErrNoData              = &Error{Code: "NO_DATA", Message: "no data available"}
	ErrDataUnavailable     = &Error{Code: "DATA_UNAVAILABLE", Message: "price data unavailable"}
	ErrInsufficientHistory = &Error{Code: "INSUFFICIENT_HISTORY", Message: "insufficient price history"}
	ErrSymbolInvalid       = &Error{Code: "SYMBOL_INVALID", Message: "invalid ticker symbol"}

	// News errors
	ErrSourceFetchFailed = &Error{Code: "SOURCE_FETCH_FAILED", Message: "news source fetch failed"}
	ErrNoNewsFound       = &Error{Code: "NO_NEWS_FOUND", Message: "no news found"}

	// Enrichment errors
	ErrEnrichmentFailed = &Error{Code: "ENRICHMENT_FAILED", Message: "narrative enrichment failed"}
	ErrLLMTimeout       = &Error{Code: "LLM_TIMEOUT", Message: "LLM request timeout"}

	// Storage errors
	ErrRecordNotFound = &Error{Code: "RECORD_NOT_FOUND", Message: "record not found"}
	ErrStoreFailed    = &Error{Code: "STORE_FAILED", Message: "store operation failed"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// API errors
	ErrUnauthorized   = &Error{Code: "UNAUTHORIZED", Message: "missing or invalid API key"}
	ErrInvalidRequest = &Error{Code: "INVALID_REQUEST", Message: "invalid request parameter"}
)
