// Package metrics defines all custom Prometheus metrics for the admin portal
// API. It is the single source of truth for metric names, labels, and help
// strings; promauto registers everything with the default registry at init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "invalid_credentials", "locked", "unverified", "inactive"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"result"},
)

// LockoutsTotal counts accounts entering the failed-login lockout window.
var LockoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lockouts_total",
		Help:      "Total number of accounts locked after repeated login failures.",
	},
)

// RegistrationsTotal counts account creations.
// Label:
//   - kind: "self" (public registration) or "invited" (admin-provisioned)
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts created, by origin.",
	},
	[]string{"kind"},
)

// InvitationsTotal counts invitation lifecycle events.
// Label:
//   - event: "sent", "resent", "accepted"
var InvitationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invitations_total",
		Help:      "Total number of invitation emails and acceptances.",
	},
	[]string{"event"},
)

// TokenRefreshesTotal counts refresh-token exchanges by outcome.
// Label:
//   - result: "success" or "rejected"
var TokenRefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Total number of refresh-token exchanges, by outcome.",
	},
	[]string{"result"},
)

// RateLimitDecisionsTotal counts throttling decisions.
// Label:
//   - result: "allowed" or "limited"
var RateLimitDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_decisions_total",
		Help:      "Total number of rate limiter decisions, by result.",
	},
	[]string{"result"},
)

// EmailsSentTotal counts transactional email deliveries.
// Labels:
//   - kind: "verification", "invitation", "password_reset"
//   - result: "sent" or "failed"
var EmailsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_sent_total",
		Help:      "Total number of transactional emails, by kind and result.",
	},
	[]string{"kind", "result"},
)
