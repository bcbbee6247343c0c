package httpclient

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrorKind is the closed taxonomy for outbound call failures. Every
// failure that leaves this package is one of these kinds; telemetry and
// UI-facing messages share the same vocabulary.
type ErrorKind string

const (
	KindTimeout   ErrorKind = "timeout"
	KindNetwork   ErrorKind = "network_error"
	KindHTTP      ErrorKind = "http_error"
	KindCancelled ErrorKind = "abort_error"
	KindParse     ErrorKind = "parse_error"
)

// NetworkError is a classified outbound call failure.
type NetworkError struct {
	Kind       ErrorKind
	Message    string
	URL        string
	Duration   time.Duration
	StatusCode int    // 0 unless Kind is KindHTTP
	Body       []byte // response body for KindHTTP, callers may parse the error envelope
}

func (e *NetworkError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Kind, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Classify normalizes a raised failure into a NetworkError. Priority:
// deadline expiry from the per-attempt timeout beats cancellation,
// cancellation beats everything else, the rest is a network failure.
// HTTP status and parse failures are constructed at the call site where
// the response is in hand.
func Classify(err error, url string, duration, timeout time.Duration) *NetworkError {
	var nerr *NetworkError
	if errors.As(err, &nerr) {
		return nerr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &NetworkError{
			Kind:     KindTimeout,
			Message:  fmt.Sprintf("request timed out after %s", timeout),
			URL:      url,
			Duration: duration,
		}
	}

	if errors.Is(err, context.Canceled) {
		return &NetworkError{
			Kind:     KindCancelled,
			Message:  "request cancelled by caller",
			URL:      url,
			Duration: duration,
		}
	}

	return &NetworkError{
		Kind:     KindNetwork,
		Message:  err.Error(),
		URL:      url,
		Duration: duration,
	}
}

func newHTTPError(url string, duration time.Duration, status int, statusText string, body []byte) *NetworkError {
	return &NetworkError{
		Kind:       KindHTTP,
		Message:    fmt.Sprintf("HTTP %d: %s", status, statusText),
		URL:        url,
		Duration:   duration,
		StatusCode: status,
		Body:       body,
	}
}

func newParseError(url string, duration time.Duration) *NetworkError {
	return &NetworkError{
		Kind:     KindParse,
		Message:  "failed to parse JSON response",
		URL:      url,
		Duration: duration,
	}
}
