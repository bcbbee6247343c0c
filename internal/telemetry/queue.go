package telemetry

import (
	"context"
	"sync"
	"time"
)

// MaxQueued caps the durable backlog. When full the oldest entry is
// evicted; the newest failures are the ones worth redelivering.
const MaxQueued = 10

// EventKind distinguishes tracked events from page views.
type EventKind string

const (
	EventTrack EventKind = "event"
	EventPage  EventKind = "page"
)

// QueuedEvent is a telemetry event that failed delivery and waits for
// an explicit flush.
type QueuedEvent struct {
	ID         string         `json:"id"`
	Kind       EventKind      `json:"type"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties,omitempty"`
	QueuedAt   time.Time      `json:"queued_at"`
	LastError  string         `json:"error,omitempty"`
}

// Queue is the durable backlog of undelivered events. Flush operates
// on a snapshot and reconciles removals by event ID, never by
// position, so append and flush may interleave safely.
type Queue interface {
	Add(ctx context.Context, ev QueuedEvent) error
	Snapshot(ctx context.Context) ([]QueuedEvent, error)
	Remove(ctx context.Context, ids []string) error
	Len(ctx context.Context) (int, error)
}

// MemoryQueue is the in-process Queue, used when Redis is not
// configured and in tests.
type MemoryQueue struct {
	mu     sync.Mutex
	events []QueuedEvent
}

// NewMemoryQueue creates an empty bounded queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

func (q *MemoryQueue) Add(_ context.Context, ev QueuedEvent) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.events = append(q.events, ev)
	if len(q.events) > MaxQueued {
		q.events = q.events[len(q.events)-MaxQueued:]
	}
	return nil
}

func (q *MemoryQueue) Snapshot(_ context.Context) ([]QueuedEvent, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]QueuedEvent, len(q.events))
	copy(out, q.events)
	return out, nil
}

func (q *MemoryQueue) Remove(_ context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.events[:0]
	for _, ev := range q.events {
		if !drop[ev.ID] {
			kept = append(kept, ev)
		}
	}
	q.events = kept
	return nil
}

func (q *MemoryQueue) Len(_ context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events), nil
}
