// Package metrics defines and registers all custom Prometheus metrics for
// the recovery orchestrator. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics register with the default Prometheus registry at import time via
// promauto; the router exposes them at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "oxyrecover"

// ── Reset protocol metrics ────────────────────────────────────────────────────

// ResetRequestsTotal counts settled reset submissions by aggregate outcome.
// Label:
//   - outcome: "dispatched", "partially_dispatched", or "dispatch_failed"
var ResetRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reset_requests_total",
		Help:      "Total number of reset submissions, by aggregate dispatch outcome.",
	},
	[]string{"outcome"},
)

// FanoutRequestsTotal counts individual per-environment reset calls.
// Label:
//   - result: "success", "rejected" (remote said no), or "error" (transport)
var FanoutRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fanout_requests_total",
		Help:      "Total number of per-environment reset requests, by result.",
	},
	[]string{"result"},
)

// TokenValidationsTotal counts token checks.
// Label:
//   - result: "valid", "expired", "unknown", or "already_consumed"
var TokenValidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_validations_total",
		Help:      "Total number of recovery token validations, by result.",
	},
	[]string{"result"},
)

// CredentialChangesTotal counts credential-change attempts that settled.
// Label:
//   - result: "success" or "failed"
var CredentialChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credential_changes_total",
		Help:      "Total number of credential changes, by result.",
	},
	[]string{"result"},
)

// AccountLookupsTotal counts the admin-only identifier lookups.
// Label:
//   - result: "found" or "error"
var AccountLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "account_lookups_total",
		Help:      "Total number of admin account lookups, by result.",
	},
	[]string{"result"},
)

// ── Template metrics ──────────────────────────────────────────────────────────

// TemplateRendersTotal counts template renders.
// Label:
//   - mode: "preview" (admin editor) or "dispatch" (real recipient)
var TemplateRendersTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "template_renders_total",
		Help:      "Total number of template renders, by mode.",
	},
	[]string{"mode"},
)

// ── Audit pipeline metrics ────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of audit events waiting in each worker
// channel of the async dispatcher.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditEventsTotal counts audit events handled by the async sink.
// Label:
//   - result: "persisted" or "failed"
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of audit events processed by the sink, by result.",
	},
	[]string{"result"},
)
