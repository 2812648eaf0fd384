package sdk

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// TransportError reports a failure before a complete HTTP response was
// received: DNS, connection, TLS, timeout or cancellation. StatusCode is set
// only when the headers arrived and reading the body then failed.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("aiguardrails: reading response from %s (status %d) failed: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("aiguardrails: request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was caused by the configured timeout or
// a context deadline.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// RequestError reports a non-2xx response. Body holds the raw response text.
type RequestError struct {
	StatusCode int
	Body       string
	RequestID  string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("aiguardrails: request failed %d: %s", e.StatusCode, e.Body)
}

// DecodeError reports a 2xx response whose body is not valid JSON.
type DecodeError struct {
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("aiguardrails: invalid JSON response: %v: %q", e.Err, truncate(e.Body, 256))
}

func (e *DecodeError) Unwrap() error { return e.Err }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
