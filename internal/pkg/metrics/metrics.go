// Package metrics defines and registers all custom Prometheus metrics for the
// inventory web front end. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at package init; the
// /metrics endpoint gathers them together with the HTTP middleware metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "inventory_web"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionLoadsTotal counts reads of the persistent session store.
// Label:
//   - result: "present", "absent", "expired", "corrupt" or "error"
var SessionLoadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_loads_total",
		Help:      "Total number of session store loads, by outcome.",
	},
	[]string{"result"},
)

// SignInsTotal counts committed sign-ins.
// Label:
//   - role: "admin" or "employee"
var SignInsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sign_ins_total",
		Help:      "Total number of sign-ins persisted, by role.",
	},
	[]string{"role"},
)

// SignOutsTotal counts session teardowns.
// Label:
//   - reason: "user" (explicit logout) or "rejected" (backend returned 401)
var SignOutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sign_outs_total",
		Help:      "Total number of sign-outs, by reason.",
	},
	[]string{"reason"},
)

// GateRedirectsTotal counts protected views withheld for lack of identity.
var GateRedirectsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_redirects_total",
		Help:      "Total number of protected requests redirected to login.",
	},
)

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestsTotal counts calls to the inventory backend.
// Labels:
//   - method: HTTP method
//   - outcome: "ok", "unauthenticated", "forbidden", "error" or "unavailable"
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of backend requests, by method and outcome.",
	},
	[]string{"method", "outcome"},
)

// BackendRequestDuration measures backend round trips.
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of backend requests from send to response headers.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)
