package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Authorization outcomes.
const (
	resultAllowed      = "allowed"
	resultUnauthorized = "unauthorized"
	resultForbidden    = "forbidden"
)

var authzDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "library_authz_decisions_total",
		Help: "Authorization decisions on protected routes by result and role",
	},
	[]string{"result", "role"},
)

func recordDecision(result, role string) {
	if role == "" {
		role = "none"
	}
	authzDecisionsTotal.WithLabelValues(result, role).Inc()
}
