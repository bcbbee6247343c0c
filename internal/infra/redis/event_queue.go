package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/storefront/internal/telemetry"
)

// EventQueue implements telemetry.Queue on a Redis list, so queued
// events survive restarts. Entries are serialized whole; removal works
// on the serialized member, which makes it identity-based rather than
// positional.
type EventQueue struct {
	rdb *redis.Client
	key string
}

// NewEventQueue creates a Redis-backed event queue under the given key.
func NewEventQueue(client *Client, key string) *EventQueue {
	if key == "" {
		key = "telemetry:failed_events"
	}
	return &EventQueue{rdb: client.rdb, key: key}
}

// Add appends an event and trims the list to the newest MaxQueued.
func (q *EventQueue) Add(ctx context.Context, ev telemetry.QueuedEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal queued event: %w", err)
	}

	if err := q.rdb.RPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("rpush failed: %w", err)
	}
	if err := q.rdb.LTrim(ctx, q.key, -telemetry.MaxQueued, -1).Err(); err != nil {
		return fmt.Errorf("ltrim failed: %w", err)
	}
	return nil
}

// Snapshot returns all queued events in insertion order. Entries that
// no longer unmarshal are skipped.
func (q *EventQueue) Snapshot(ctx context.Context) ([]telemetry.QueuedEvent, error) {
	members, err := q.rdb.LRange(ctx, q.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange failed: %w", err)
	}

	events := make([]telemetry.QueuedEvent, 0, len(members))
	for _, m := range members {
		var ev telemetry.QueuedEvent
		if err := json.Unmarshal([]byte(m), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// Remove deletes the entries whose event IDs were acknowledged,
// leaving the rest in place.
func (q *EventQueue) Remove(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	members, err := q.rdb.LRange(ctx, q.key, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("lrange failed: %w", err)
	}

	for _, m := range members {
		var ev telemetry.QueuedEvent
		if err := json.Unmarshal([]byte(m), &ev); err != nil {
			continue
		}
		if !drop[ev.ID] {
			continue
		}
		if err := q.rdb.LRem(ctx, q.key, 1, m).Err(); err != nil {
			return fmt.Errorf("lrem failed: %w", err)
		}
	}
	return nil
}

// Len returns the number of queued events.
func (q *EventQueue) Len(ctx context.Context) (int, error) {
	n, err := q.rdb.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("llen failed: %w", err)
	}
	return int(n), nil
}
