package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OutboundRequests tracks outbound call attempts per downstream target
	OutboundRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_outbound_requests_total",
			Help: "Total number of outbound request attempts",
		},
		[]string{"target"},
	)

	// OutboundErrors tracks classified outbound failures per target
	OutboundErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_outbound_errors_total",
			Help: "Total number of outbound request failures by error kind",
		},
		[]string{"target", "kind"},
	)

	// OutboundLatency tracks outbound call latency per target
	OutboundLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_outbound_latency_seconds",
			Help:    "Outbound call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"target"},
	)

	// CircuitBreakerState tracks breaker state per target (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storefront_circuit_breaker_state",
			Help: "Circuit breaker state per target (0=closed, 1=half-open, 2=open)",
		},
		[]string{"target"},
	)

	// OrdersTotal tracks order submissions by outcome
	OrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_orders_total",
			Help: "Total number of order submissions by outcome",
		},
		[]string{"status"},
	)

	// TelemetryQueueDepth tracks the number of undelivered telemetry events
	TelemetryQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_telemetry_queue_depth",
			Help: "Number of telemetry events waiting for redelivery",
		},
	)
)
