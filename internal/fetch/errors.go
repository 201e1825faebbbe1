package fetch

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTarget is returned for targets that are not absolute http(s) URLs.
var ErrInvalidTarget = errors.New("invalid target URL")

// NetworkError reports a DNS, connection or TLS handshake failure.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// TimeoutError reports that the redirect chain did not complete within the
// configured deadline.
type TimeoutError struct {
	URL     string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s fetching %s", e.Timeout, e.URL)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// RedirectLoopError reports a redirect chain longer than the configured bound.
type RedirectLoopError struct {
	URL  string
	Max  int
	Last string
}

func (e *RedirectLoopError) Error() string {
	return fmt.Sprintf("more than %d redirects starting at %s (last location %s)", e.Max, e.URL, e.Last)
}
