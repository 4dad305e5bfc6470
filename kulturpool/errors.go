package kulturpool

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownEndpoint indicates Fetch was called with an unsupported key.
	ErrUnknownEndpoint = errors.New("kulturpool: unknown endpoint")

	// ErrInvalidResponse indicates the upstream returned a body that is not
	// valid JSON.
	ErrInvalidResponse = errors.New("kulturpool: invalid response")

	// ErrMissingParam indicates a required request parameter was absent.
	ErrMissingParam = errors.New("kulturpool: missing parameter")

	// ErrInvalidBaseURL indicates the configured base URL cannot be used.
	ErrInvalidBaseURL = errors.New("kulturpool: invalid base URL")
)

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("kulturpool: %s returned status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("kulturpool: %s returned status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Temporary reports whether the status is a throttling or server error.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
