// Package reliability classifies turn failures and transport status codes.
package reliability

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Kind is the failure class a turn boundary reacts to.
type Kind string

const (
	KindNone         Kind = ""
	KindCancellation Kind = "cancellation"
	KindTransport    Kind = "transport"
	KindCapability   Kind = "capability"
)

// ErrCapabilityUnavailable marks an optional capability (speech, recognition)
// that cannot be used on this host.
var ErrCapabilityUnavailable = errors.New("capability unavailable")

// Classify maps err to a Kind. Cancellation is recovered silently, transport
// failures are shown inline, capability absence only degrades features.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, context.Canceled):
		return KindCancellation
	case errors.Is(err, ErrCapabilityUnavailable):
		return KindCapability
	default:
		return KindTransport
	}
}

// StatusError is a non-2xx response from an HTTP backend.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned status %d", e.Code)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Body)
}

// Retryable reports whether resending the same request may succeed.
func (e *StatusError) Retryable() bool {
	return IsRetryableHTTPStatus(e.Code)
}

// IsRetryable reports whether err carries a retryable status. Transport
// errors without a status are treated as retryable.
func IsRetryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return Classify(err) == KindTransport
}

// IsRetryableHTTPStatus classifies retryable HTTP status codes.
func IsRetryableHTTPStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// ExponentialBackoff computes a deterministic capped backoff duration.
func ExponentialBackoff(attempt int, base, cap time.Duration) time.Duration {
	if attempt <= 0 {
		return base
	}
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= cap {
			return cap
		}
	}
	return d
}
