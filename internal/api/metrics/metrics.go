// Package metrics defines and registers all custom Prometheus metrics for the
// travel guide API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry through promauto, so
// importing the package is enough.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "travel"

// ── Vendor metrics ────────────────────────────────────────────────────────────

// VendorRequestsTotal counts outbound vendor calls by final outcome.
// Labels:
//   - vendor: "feishu", "deepseek", "qweather", "openweather", "amap"
//   - outcome: "ok", "transport_error", "status_error", "vendor_error", "no_token"
var VendorRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vendor_requests_total",
		Help:      "Total number of outbound vendor requests, by outcome.",
	},
	[]string{"vendor", "outcome"},
)

// VendorRetriesTotal counts repeated attempts after a transport failure.
var VendorRetriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vendor_retries_total",
		Help:      "Total number of retried vendor attempts after transport failures.",
	},
	[]string{"vendor"},
)

// VendorRequestDuration measures a vendor call including all retries.
var VendorRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "vendor_request_duration_seconds",
		Help:      "Duration of outbound vendor requests including retries.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	},
	[]string{"vendor"},
)

// TokenRefreshTotal counts credential exchanges.
// Label:
//   - result: "ok" or "failed"
var TokenRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Total number of tenant token exchanges, by result.",
	},
	[]string{"vendor", "result"},
)

// ── Guide metrics ─────────────────────────────────────────────────────────────

// GuidesGeneratedTotal counts orchestration runs.
// Label:
//   - result: "ok", "failed", "optimized"
var GuidesGeneratedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guides_generated_total",
		Help:      "Total number of guide generations and optimizations, by result.",
	},
	[]string{"result"},
)

// GuidePersistFailuresTotal counts guides returned with a persistence warning.
var GuidePersistFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guide_persist_failures_total",
		Help:      "Total number of guides that could not be saved to the store.",
	},
)

// EnrichmentDegradedTotal counts enrichment steps skipped because of a failure.
// Label:
//   - step: "weather", "traffic", "booking"
var EnrichmentDegradedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrichment_degraded_total",
		Help:      "Total number of enrichment steps that degraded to no data.",
	},
	[]string{"step"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok", "invalid", "pending", "disabled", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Archive metrics ───────────────────────────────────────────────────────────

// ArchiveQueueDepth tracks jobs waiting in each archive worker channel.
var ArchiveQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "archive_queue_depth",
		Help:      "Current number of guide events pending in each archive worker channel.",
	},
	[]string{"worker_id"},
)
