package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vietddude/storefront/internal/infra/httpclient"
	"github.com/vietddude/storefront/internal/metrics"
)

// Config holds telemetry sink settings.
type Config struct {
	Enabled     bool
	URL         string // sink base URL
	APIKey      string
	Environment string
	Timeout     time.Duration
	Retries     int
}

// Tracker delivers events to the telemetry sink through the resilient
// client. Track and Page are fire-and-forget: the caller never waits
// for delivery, and a delivery that fails after retries lands in the
// durable queue instead of propagating.
type Tracker struct {
	cfg    Config
	client *httpclient.Client
	queue  Queue
	log    *slog.Logger
	wg     sync.WaitGroup
}

// New creates a tracker. queue may be nil, in which case an in-memory
// bounded queue is used.
func New(cfg Config, queue Queue, log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	if queue == nil {
		queue = NewMemoryQueue()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Tracker{
		cfg: cfg,
		// The tracker's own client never reports into the tracker,
		// so telemetry failures cannot recurse.
		client: httpclient.NewClient(nil, log),
		queue:  queue,
		log:    log,
	}
}

// Track records a named event.
func (t *Tracker) Track(name string, properties map[string]any) {
	t.dispatch(EventTrack, name, properties)
}

// Page records a page view.
func (t *Tracker) Page(name string, properties map[string]any) {
	t.dispatch(EventPage, name, properties)
}

// TrackNetworkError implements httpclient.ErrorTracker: the final
// accounting of a failed outbound call, one event per logical call.
func (t *Tracker) TrackNetworkError(target string, nerr *httpclient.NetworkError, method string, attempts int, breaker *httpclient.BreakerState) {
	props := map[string]any{
		"target":      target,
		"url":         nerr.URL,
		"error":       nerr.Message,
		"error_type":  string(nerr.Kind),
		"method":      method,
		"duration_ms": nerr.Duration.Milliseconds(),
		"attempts":    attempts,
	}
	if nerr.StatusCode > 0 {
		props["status_code"] = nerr.StatusCode
	}
	if breaker != nil {
		props["circuit_breaker_state"] = *breaker
	}
	t.Track("network_error", props)
}

func (t *Tracker) dispatch(kind EventKind, name string, properties map[string]any) {
	if !t.cfg.Enabled {
		return
	}

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), t.cfg.Timeout*time.Duration(t.cfg.Retries+2))
		defer cancel()

		if err := t.deliver(ctx, kind, name, properties); err != nil {
			t.log.Warn("telemetry delivery failed, queueing",
				"event", name, "error", err)
			t.enqueue(ctx, kind, name, properties, err)
		}
	}()
}

func (t *Tracker) enqueue(ctx context.Context, kind EventKind, name string, properties map[string]any, cause error) {
	ev := QueuedEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		Name:       name,
		Properties: properties,
		QueuedAt:   time.Now().UTC(),
		LastError:  cause.Error(),
	}
	if err := t.queue.Add(ctx, ev); err != nil {
		t.log.Warn("failed to queue telemetry event", "event", name, "error", err)
		return
	}
	t.updateDepth(ctx)
}

func (t *Tracker) deliver(ctx context.Context, kind EventKind, name string, properties map[string]any) error {
	enriched := make(map[string]any, len(properties)+2)
	for k, v := range properties {
		enriched[k] = v
	}
	enriched["environment"] = t.cfg.Environment
	enriched["timestamp"] = time.Now().UTC().Format(time.RFC3339)

	path, field := "/v1/track", "event"
	if kind == EventPage {
		path, field = "/v1/page", "page"
	}

	body, err := json.Marshal(map[string]any{
		field:        name,
		"properties": enriched,
	})
	if err != nil {
		return err
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+t.cfg.APIKey)

	_, err = t.client.Do(ctx, "telemetry", httpclient.Request{
		Method: http.MethodPost,
		URL:    t.cfg.URL + path,
		Header: header,
		Body:   body,
	}, httpclient.CallOptions{
		Timeout: t.cfg.Timeout,
		Retries: t.cfg.Retries,
	})
	return err
}

// FlushQueued redelivers queued events, removing only the ones that
// succeed and preserving the relative order of the survivors.
// Best-effort at-least-once: a crash mid-flush may redeliver an event
// again on the next flush.
func (t *Tracker) FlushQueued(ctx context.Context) error {
	snapshot, err := t.queue.Snapshot(ctx)
	if err != nil {
		return err
	}
	if len(snapshot) == 0 {
		return nil
	}

	t.log.Info("flushing queued telemetry events", "count", len(snapshot))

	var delivered []string
	for _, ev := range snapshot {
		if err := t.deliver(ctx, ev.Kind, ev.Name, ev.Properties); err != nil {
			t.log.Warn("queued event redelivery failed", "event", ev.Name, "error", err)
			continue
		}
		delivered = append(delivered, ev.ID)
	}

	if err := t.queue.Remove(ctx, delivered); err != nil {
		return err
	}
	t.updateDepth(ctx)
	return nil
}

func (t *Tracker) updateDepth(ctx context.Context) {
	if n, err := t.queue.Len(ctx); err == nil {
		metrics.TelemetryQueueDepth.Set(float64(n))
	}
}

// Close waits for in-flight fire-and-forget deliveries.
func (t *Tracker) Close() {
	t.wg.Wait()
}
