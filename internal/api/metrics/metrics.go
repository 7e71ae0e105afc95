// Package metrics defines and registers all custom Prometheus metrics for the
// identity core. It is the single source of truth for metric names, labels,
// and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// TokenValidationFailures counts rejected bearer tokens.
// Label:
//   - reason: the typed validation failure ("token malformed", "token expired",
//     "token signature invalid", "token algorithm unsupported",
//     "refresh_token_as_bearer")
var TokenValidationFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_validation_failures_total",
		Help:      "Total number of bearer tokens rejected by the gateway, by cause.",
	},
	[]string{"reason"},
)

// AuthzDecisions counts authorization gateway outcomes.
// Label:
//   - outcome: "allow_public", "allow_authenticated", "allow_role",
//     "unauthenticated" (401), "forbidden" (403)
var AuthzDecisions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_decisions_total",
		Help:      "Total number of authorization gateway decisions, by outcome.",
	},
	[]string{"outcome"},
)

// WebsocketConnections tracks the number of currently open realtime
// connections (one per tab, not per user).
var WebsocketConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_connections",
		Help:      "Current number of open websocket connections.",
	},
)

// OnlineUsers tracks the number of distinct users with at least one live
// realtime connection.
var OnlineUsers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "online_users",
		Help:      "Current number of distinct users considered online.",
	},
)

// PresenceBroadcasts counts presence transition broadcasts.
// Label:
//   - topic: "user.online" or "user.offline"
var PresenceBroadcasts = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "presence_broadcasts_total",
		Help:      "Total number of presence transitions broadcast, by topic.",
	},
	[]string{"topic"},
)
