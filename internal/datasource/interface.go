// Package datasource contains the collectors that fetch race listings from
// external sources and the registry that builds them from configuration.
package datasource

import (
	"context"
	"errors"

	"github.com/yourusername/paddock-parser/internal/models"
)

// Collector fetches one source's current race listings.
type Collector interface {
	// Name returns the configured source name
	Name() string

	// Collect fetches everything the source currently lists
	Collect(ctx context.Context) (*Batch, error)
}

// Batch is what a collector returns. Most collectors emit raw documents;
// a collector that normalizes on its own may emit races instead.
type Batch struct {
	Documents []models.RawRaceDocument
	Races     []models.NormalizedRace
}

// Len returns the number of entries in the batch.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Documents) + len(b.Races)
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Unwrap exposes the underlying error, or the sentinel for the code.
func (e DataSourceError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return codeErrors[e.Code]
}

// Is matches the sentinel belonging to the error code.
func (e DataSourceError) Is(target error) bool {
	sentinel, ok := codeErrors[e.Code]
	return ok && sentinel == target
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeCircuitOpen          = "circuit_open"
)

// Sentinel errors, one per code
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
	ErrNetworkError         = errors.New("network error")
	ErrServerError          = errors.New("server error")
	ErrCircuitOpen          = errors.New("circuit breaker open")
)

var codeErrors = map[string]error{
	ErrCodeRateLimitExceeded:    ErrRateLimitExceeded,
	ErrCodeAuthenticationFailed: ErrAuthenticationFailed,
	ErrCodeNotFound:             ErrNotFound,
	ErrCodeInvalidData:          ErrInvalidData,
	ErrCodeNetworkError:         ErrNetworkError,
	ErrCodeServerError:          ErrServerError,
	ErrCodeCircuitOpen:          ErrCircuitOpen,
}

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
