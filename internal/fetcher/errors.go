package fetcher

import (
	"errors"
	"fmt"
	"net"
	"net/http"
)

// FetchError is returned when a page could not be fetched. It carries the
// URL, the last HTTP status code (zero for transport errors), the number
// of attempts made, and the underlying cause.
type FetchError struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the last HTTP status received, or zero when the
	// request failed before a response arrived.
	StatusCode int

	// Attempts is the number of attempts made, including retries.
	Attempts int

	// Err is the underlying cause, nil for pure status-code failures.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
	}
	return fmt.Sprintf("fetch %s failed after %d attempt(s): status %d", e.URL, e.Attempts, e.StatusCode)
}

// Unwrap returns the underlying cause for errors.Is / errors.As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure class is worth retrying.
func (e *FetchError) Transient() bool {
	return isTransient(e.StatusCode, e.Err)
}

// isTransient classifies a failure as transient (retry) or permanent
// (give up immediately). Timeouts, connection errors, 5xx responses, and
// 429 throttling are transient; any other 4xx is permanent.
func isTransient(statusCode int, err error) bool {
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return true
		}
		// Connection resets and refused connections surface as *net.OpError.
		var opErr *net.OpError
		return errors.As(err, &opErr)
	}

	switch {
	case statusCode == http.StatusTooManyRequests:
		return true
	case statusCode >= 500:
		return true
	default:
		return false
	}
}
