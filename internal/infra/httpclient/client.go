package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/vietddude/storefront/internal/metrics"
)

// ErrorTracker receives the final accounting of a failed logical call:
// the last classified error, how many attempts were made, and a breaker
// snapshot when one was in play. One event per logical call, not one
// per retry.
type ErrorTracker interface {
	TrackNetworkError(target string, err *NetworkError, method string, attempts int, breaker *BreakerState)
}

// CallOptions control one outbound call.
type CallOptions struct {
	Timeout           time.Duration // per attempt, default 10s
	Retries           int           // additional attempts after the first
	BaseDelay         time.Duration // default 1s
	MaxDelay          time.Duration // default 10s
	UseCircuitBreaker bool
	TrackErrors       bool
}

func (o CallOptions) withDefaults() CallOptions {
	if o.Timeout == 0 {
		o.Timeout = 10 * time.Second
	}
	if o.BaseDelay == 0 {
		o.BaseDelay = DefaultRetryConfig.BaseDelay
	}
	if o.MaxDelay == 0 {
		o.MaxDelay = DefaultRetryConfig.MaxDelay
	}
	return o
}

// Request describes an outbound HTTP request.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is a fully read outbound HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

// Client wraps outbound HTTP calls with per-attempt timeouts, bounded
// retry with exponential backoff, a circuit breaker per downstream
// target, and classified errors. Calls to different targets may run
// concurrently; retries within one call are strictly sequential.
type Client struct {
	httpClient *http.Client
	tracker    ErrorTracker
	log        *slog.Logger

	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewClient creates a resilient HTTP client. tracker may be nil, in
// which case failed calls are not reported to telemetry.
func NewClient(tracker ErrorTracker, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		tracker:  tracker,
		log:      log,
		breakers: make(map[string]*Breaker),
	}
}

func (c *Client) breaker(target string) *Breaker {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.breakers[target]
	if !ok {
		b = DefaultBreaker()
		c.breakers[target] = b
	}
	return b
}

// BreakerState returns the breaker snapshot for a target.
func (c *Client) BreakerState(target string) BreakerState {
	return c.breaker(target).State()
}

// Do performs the call with retry per CallOptions. The duration carried
// on classified errors is measured from the first attempt. On final
// failure the last classified error is returned; the caller decides
// whether to treat it as fatal or to degrade. A circuit-open rejection
// is returned immediately without consuming the retry budget.
func (c *Client) Do(ctx context.Context, target string, req Request, opts CallOptions) (*Response, error) {
	opts = opts.withDefaults()
	retryCfg := RetryConfig{
		Retries:    opts.Retries,
		BaseDelay:  opts.BaseDelay,
		MaxDelay:   opts.MaxDelay,
		Multiplier: DefaultRetryConfig.Multiplier,
	}

	var br *Breaker
	if opts.UseCircuitBreaker {
		br = c.breaker(target)
	}

	start := time.Now()
	attempts := 0
	var lastErr *NetworkError

loop:
	for attempt := 0; attempt <= opts.Retries; attempt++ {
		if br != nil {
			if err := br.Allow(); err != nil {
				c.setBreakerGauge(target, br)
				return nil, err
			}
		}

		attempts++
		metrics.OutboundRequests.WithLabelValues(target).Inc()

		resp, nerr := c.attempt(ctx, req, opts.Timeout, start)
		if nerr == nil {
			if br != nil {
				br.RecordSuccess()
				c.setBreakerGauge(target, br)
			}
			metrics.OutboundLatency.WithLabelValues(target).Observe(resp.Duration.Seconds())
			return resp, nil
		}

		if br != nil {
			br.RecordFailure()
			c.setBreakerGauge(target, br)
		}
		metrics.OutboundErrors.WithLabelValues(target, string(nerr.Kind)).Inc()
		lastErr = nerr

		// No point retrying a caller-initiated cancellation.
		if nerr.Kind == KindCancelled {
			break
		}
		if attempt == opts.Retries {
			break
		}

		delay := retryCfg.Delay(attempt)
		c.log.Warn("outbound call failed, retrying",
			"target", target,
			"attempt", attempt+1,
			"delay", delay,
			"error", nerr.Message,
			"kind", string(nerr.Kind))

		select {
		case <-ctx.Done():
			lastErr = Classify(ctx.Err(), req.URL, time.Since(start), opts.Timeout)
			break loop
		case <-time.After(delay):
		}
	}

	if opts.TrackErrors && c.tracker != nil && lastErr != nil {
		var snap *BreakerState
		if br != nil {
			s := br.State()
			snap = &s
		}
		c.tracker.TrackNetworkError(target, lastErr, req.Method, attempts, snap)
	}

	return nil, lastErr
}

// DoJSON performs the call and decodes the response body. A malformed
// body is reported as a parse failure; the raw decode error does not
// cross the boundary.
func (c *Client) DoJSON(ctx context.Context, target string, req Request, out any, opts CallOptions) error {
	if req.Header == nil {
		req.Header = http.Header{}
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(ctx, target, req, opts)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return newParseError(req.URL, resp.Duration)
	}
	return nil
}

func (c *Client) attempt(ctx context.Context, req Request, timeout time.Duration, start time.Time) (*Response, *NetworkError) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, Classify(err, req.URL, time.Since(start), timeout)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, Classify(err, req.URL, time.Since(start), timeout)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Classify(err, req.URL, time.Since(start), timeout)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newHTTPError(req.URL, time.Since(start), resp.StatusCode, http.StatusText(resp.StatusCode), body)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Duration:   time.Since(start),
	}, nil
}

func (c *Client) setBreakerGauge(target string, b *Breaker) {
	var v float64
	switch b.State().Status {
	case BreakerHalfOpen:
		v = 1
	case BreakerOpen:
		v = 2
	}
	metrics.CircuitBreakerState.WithLabelValues(target).Set(v)
}
