package httpclient

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when a breaker rejects a call without
// attempting transport.
var ErrCircuitOpen = errors.New("circuit breaker is open - service unavailable")

// BreakerStatus is the breaker state machine position.
type BreakerStatus string

const (
	BreakerClosed   BreakerStatus = "closed"
	BreakerOpen     BreakerStatus = "open"
	BreakerHalfOpen BreakerStatus = "half-open"
)

// BreakerState is an immutable snapshot, carried in telemetry events.
type BreakerState struct {
	Status              BreakerStatus `json:"state"`
	ConsecutiveFailures int           `json:"failures"`
	LastFailureAt       time.Time     `json:"last_failure_time"`
}

// Breaker tracks consecutive failures for one downstream target and
// short-circuits calls while open. After recoveryTimeout has elapsed
// since the last failure, exactly one trial call is let through; its
// outcome decides between closed and open.
type Breaker struct {
	mu               sync.Mutex
	status           BreakerStatus
	failures         int
	lastFailure      time.Time
	failureThreshold int
	recoveryTimeout  time.Duration
	now              func() time.Time // for testing
}

// NewBreaker creates a breaker that opens after threshold consecutive
// failures and stays open for recovery before allowing a trial call.
func NewBreaker(threshold int, recovery time.Duration) *Breaker {
	return &Breaker{
		status:           BreakerClosed,
		failureThreshold: threshold,
		recoveryTimeout:  recovery,
		now:              time.Now,
	}
}

// DefaultBreaker uses the standard threshold of 5 failures and a 30s
// recovery window.
func DefaultBreaker() *Breaker {
	return NewBreaker(5, 30*time.Second)
}

// Allow reports whether a transport attempt may proceed. While open it
// returns ErrCircuitOpen until the recovery timeout elapses, then lets a
// single half-open trial through and rejects concurrent callers until
// the trial is recorded.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.status {
	case BreakerClosed:
		return nil
	case BreakerOpen:
		if b.now().Sub(b.lastFailure) > b.recoveryTimeout {
			b.status = BreakerHalfOpen
			return nil
		}
		return ErrCircuitOpen
	default: // half-open, trial already in flight
		return ErrCircuitOpen
	}
}

// RecordSuccess closes the breaker and resets the failure count.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.status = BreakerClosed
}

// RecordFailure counts a failed attempt and opens the breaker at the
// threshold. A failed half-open trial reopens immediately and restarts
// the recovery timer.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailure = b.now()

	if b.status == BreakerHalfOpen || b.failures >= b.failureThreshold {
		b.status = BreakerOpen
	}
}

// State returns a snapshot of the breaker.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()

	return BreakerState{
		Status:              b.status,
		ConsecutiveFailures: b.failures,
		LastFailureAt:       b.lastFailure,
	}
}
