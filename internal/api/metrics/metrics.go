// Package metrics defines and registers the custom Prometheus metrics of the
// roster API. HTTP request metrics come from the echoprometheus middleware;
// the ones here describe the request lifecycle itself.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "roster"

// ── Request lifecycle ─────────────────────────────────────────────────────────

// RequestsCreatedTotal counts newly created duty requests.
// Label:
//   - shift: "morning", "afternoon" or "night"
var RequestsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_created_total",
		Help:      "Total number of duty requests created, by shift.",
	},
	[]string{"shift"},
)

// TransitionsTotal counts lifecycle transition attempts.
// Labels:
//   - action: "accept", "reject" or "revoke"
//   - result: "ok", "unauthorized", "invalid_transition", "not_found" or "error"
var TransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transitions_total",
		Help:      "Total number of lifecycle transition attempts, by action and result.",
	},
	[]string{"action", "result"},
)

// ── Audit pipeline ────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of history entries waiting per worker.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of history entries pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditRecordDuration measures how long persisting one history entry takes.
var AuditRecordDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_record_duration_seconds",
		Help:      "Duration of writing a single history entry.",
		Buckets:   prometheus.DefBuckets,
	},
)

// AuditErrorsTotal counts history entries that could not be written.
var AuditErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_errors_total",
		Help:      "Total number of history entries that failed to persist.",
	},
)
