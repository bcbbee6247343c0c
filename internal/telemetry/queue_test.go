package telemetry

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func queuedEvent(i int) QueuedEvent {
	return QueuedEvent{
		ID:       fmt.Sprintf("ev-%d", i),
		Kind:     EventTrack,
		Name:     fmt.Sprintf("event_%d", i),
		QueuedAt: time.Now().UTC(),
	}
}

func TestMemoryQueueBounded(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()

	for i := 0; i < 12; i++ {
		if err := q.Add(ctx, queuedEvent(i)); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	events, err := q.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(events) != MaxQueued {
		t.Fatalf("len = %d, want %d", len(events), MaxQueued)
	}
	// Oldest two evicted, newest retained in order.
	if events[0].ID != "ev-2" || events[9].ID != "ev-11" {
		t.Errorf("retained window %s..%s, want ev-2..ev-11", events[0].ID, events[9].ID)
	}
}

func TestMemoryQueueRemoveByIdentity(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()

	for i := 0; i < 5; i++ {
		q.Add(ctx, queuedEvent(i))
	}

	// Acknowledge a non-contiguous subset.
	if err := q.Remove(ctx, []string{"ev-1", "ev-3"}); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	events, _ := q.Snapshot(ctx)
	want := []string{"ev-0", "ev-2", "ev-4"}
	if len(events) != len(want) {
		t.Fatalf("len = %d, want %d", len(events), len(want))
	}
	for i, id := range want {
		if events[i].ID != id {
			t.Errorf("events[%d] = %s, want %s (order must survive removal)", i, events[i].ID, id)
		}
	}

	if n, _ := q.Len(ctx); n != 3 {
		t.Errorf("Len() = %d, want 3", n)
	}
}

func TestMemoryQueueRemoveUnknownID(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()
	q.Add(ctx, queuedEvent(0))

	if err := q.Remove(ctx, []string{"missing"}); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if n, _ := q.Len(ctx); n != 1 {
		t.Errorf("Len() = %d, want 1", n)
	}
}
