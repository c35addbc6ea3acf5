// Package metrics defines and registers all custom Prometheus metrics for
// the video vault API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry via promauto at package
// load; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vidvault"

// ── Admission metrics ─────────────────────────────────────────────────────────

// AdmissionDecisionsTotal counts admission checks by decision path.
// Label:
//   - outcome: "admitted_existing", "admitted_new", or "denied_limit"
var AdmissionDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admission_decisions_total",
		Help:      "Total number of device admission decisions, by outcome.",
	},
	[]string{"outcome"},
)

// AdmissionConflictRetriesTotal counts duplicate-key rejections recovered by
// retrying the lookup-and-refresh path. A non-zero value is normal under
// concurrent first-time logins from the same device.
var AdmissionConflictRetriesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admission_conflict_retries_total",
		Help:      "Total number of device creations recovered as admitted-existing after a uniqueness conflict.",
	},
)

// DeviceCacheTotal counts known-device cache reads on the check hot path.
// Label:
//   - result: "hit" (store lookup skipped) or "miss" (store lookup performed)
var DeviceCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "device_cache_total",
		Help:      "Total number of known-device cache reads, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Audit trail metrics ───────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of admission events waiting in each
// audit worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of admission events pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)

// AuditFailuresTotal counts admission events that could not be persisted.
// Audit writes are best-effort; failures are logged and dropped.
var AuditFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_failures_total",
		Help:      "Total number of admission audit events that failed to persist.",
	},
)
