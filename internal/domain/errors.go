package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidCurrencyCode = errors.New("currency code must be three letters")
	ErrInvalidDateRange    = errors.New("start date must not be after end date")
	ErrInvalidPage         = errors.New("page and page size must be positive")
)

// UpstreamError is raised when the rate provider could not serve a request:
// either the call failed on the wire (StatusCode == 0) or the provider
// answered with a non-2xx status.
type UpstreamError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("rate provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("rate provider request failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Transient reports whether retrying the same request may succeed.
// Transport failures, timeouts and 5xx qualify; other 4xx responses are
// contract violations and retrying them would never help.
func (e *UpstreamError) Transient() bool {
	if e.StatusCode == 0 {
		return true
	}
	return e.StatusCode >= 500 || e.StatusCode == http.StatusRequestTimeout
}
