// Package metrics defines and registers the Prometheus collectors for the
// dashboard state core and the dev API. It is the single source of truth for
// metric names, labels and help strings.
//
// Collectors are registered with the default registry through promauto when
// the package is first imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dashboard"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginAttemptsTotal counts settled login calls.
// Label:
//   - result: "success", "rejected" (boundary failure) or "invalid" (failed local validation)
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of settled login attempts, by result.",
	},
	[]string{"result"},
)

// SessionInvalidationsTotal counts logouts the user did not ask for.
// Label:
//   - reason: "check_auth_failed" or "unauthorized_event"
var SessionInvalidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_invalidations_total",
		Help:      "Total number of sessions collapsed into a logout without user action.",
	},
	[]string{"reason"},
)

// StaleAuthChecksTotal counts profile checks whose result was discarded
// because a logout happened while they were in flight.
var StaleAuthChecksTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_auth_checks_total",
		Help:      "Total number of auth checks discarded after a concurrent logout.",
	},
)

// SnapshotWritesTotal counts persisted session snapshot writes.
// Label:
//   - result: "ok" or "error"
var SnapshotWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_writes_total",
		Help:      "Total number of session snapshot writes, by result.",
	},
	[]string{"result"},
)

// SnapshotQueueDepth tracks snapshots waiting in the write-behind queue.
var SnapshotQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "snapshot_queue_depth",
		Help:      "Current number of session snapshots waiting to be written.",
	},
)

// ── Interaction metrics ───────────────────────────────────────────────────────

// NotificationsAddedTotal counts queued notifications.
// Label:
//   - kind: "success", "error", "warning" or "info"
var NotificationsAddedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_added_total",
		Help:      "Total number of notifications added, by kind.",
	},
	[]string{"kind"},
)

// NotificationsExpiredTotal counts notifications removed by their timer.
var NotificationsExpiredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_expired_total",
		Help:      "Total number of notifications removed by auto-expiry.",
	},
)

// ModalOpensTotal counts OpenModal calls.
// Label:
//   - kind: the payload's ModalKind, or "none"
var ModalOpensTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "modal_opens_total",
		Help:      "Total number of modal opens, by payload kind.",
	},
	[]string{"kind"},
)

// ── Dev API metrics ───────────────────────────────────────────────────────────

// DevAPIRequestDuration measures dev API handler latency.
// Labels:
//   - route: the matched route pattern (e.g. "/auth/login")
//   - code: the HTTP status code
var DevAPIRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "devapi",
		Name:      "request_duration_seconds",
		Help:      "Duration of dev API requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"route", "code"},
)
