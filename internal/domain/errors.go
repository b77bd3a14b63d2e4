package domain

import "errors"

var (
	// ErrLeadNotFound is returned when the referenced lead does not exist.
	ErrLeadNotFound = errors.New("lead not found")

	// ErrCacheMiss is returned by a LeadCache when the key is not cached.
	ErrCacheMiss = errors.New("cache miss")
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
