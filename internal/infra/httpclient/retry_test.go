package httpclient

import (
	"testing"
	"time"
)

func TestDelay(t *testing.T) {
	cfg := RetryConfig{
		BaseDelay:  1000 * time.Millisecond,
		MaxDelay:   10000 * time.Millisecond,
		Multiplier: 2.0,
	}

	expected := []time.Duration{
		1000 * time.Millisecond,
		2000 * time.Millisecond,
		4000 * time.Millisecond,
		8000 * time.Millisecond,
		10000 * time.Millisecond, // capped
		10000 * time.Millisecond,
	}

	for attempt, want := range expected {
		if got := cfg.Delay(attempt); got != want {
			t.Errorf("Delay(%d) = %v, want %v", attempt, got, want)
		}
	}
}
