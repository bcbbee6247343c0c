package httpclient

import (
	"math"
	"time"
)

// RetryConfig defines retry behavior for one call site.
type RetryConfig struct {
	Retries    int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

// DefaultRetryConfig provides sensible defaults.
var DefaultRetryConfig = RetryConfig{
	Retries:    2,
	BaseDelay:  1 * time.Second,
	MaxDelay:   10 * time.Second,
	Multiplier: 2.0,
}

// Delay computes the backoff before retry attempt n (starting at 0),
// capped at MaxDelay.
func (c RetryConfig) Delay(attempt int) time.Duration {
	delay := float64(c.BaseDelay) * math.Pow(c.Multiplier, float64(attempt))
	if delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}
	return time.Duration(delay)
}
