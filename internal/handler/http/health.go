// Package http serves the lending library over HTTP: book and checkout
// routes, health checks, metrics and the middleware chain around them.
package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"lending-library/internal/handler/http/respond"
	"lending-library/internal/observability/metrics"
)

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy", "degraded" or "unhealthy"
	Timestamp string                 `json:"timestamp"` // RFC 3339
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// BreakerState is the part of a circuit breaker the health check reads.
type BreakerState interface {
	State() gobreaker.State
}

// HealthHandler reports the store backend, database connectivity and the
// database circuit breaker. DB and Breaker are nil for the memory store.
type HealthHandler struct {
	Backend string
	DB      *sql.DB
	Breaker BreakerState
	Version string
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]CheckStatus{
		"store": {Status: "healthy", Details: map[string]any{"backend": h.Backend}},
	}
	if h.DB != nil {
		checks["database"] = h.checkDatabase(ctx)
	}
	if h.Breaker != nil {
		checks["circuit_breaker"] = checkBreaker(h.Breaker.State())
	}

	status, code := "healthy", http.StatusOK
	for _, c := range checks {
		switch c.Status {
		case "unhealthy":
			status, code = "unhealthy", http.StatusServiceUnavailable
		case "degraded":
			if status == "healthy" {
				status = "degraded"
			}
		}
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

// checkDatabase pings the database and publishes pool statistics.
func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if err := h.DB.PingContext(ctx); err != nil {
		return CheckStatus{Status: "unhealthy", Message: respond.SanitizeError(err)}
	}

	stats := h.DB.Stats()
	metrics.UpdateDBStats(stats)
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
	if stats.MaxOpenConnections == 0 {
		return CheckStatus{Status: "degraded", Message: "connection pool max connections not configured", Details: details}
	}
	utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
	details["utilization_percent"] = utilization
	// a pinned single-connection sqlite pool is always fully used
	if utilization >= 80.0 && stats.MaxOpenConnections > 1 {
		return CheckStatus{Status: "degraded", Message: "connection pool utilization above 80%", Details: details}
	}
	return CheckStatus{Status: "healthy", Details: details}
}

func checkBreaker(state gobreaker.State) CheckStatus {
	details := map[string]any{"state": state.String()}
	switch state {
	case gobreaker.StateOpen:
		return CheckStatus{Status: "unhealthy", Message: "database circuit breaker open", Details: details}
	case gobreaker.StateHalfOpen:
		return CheckStatus{Status: "degraded", Message: "database circuit breaker probing", Details: details}
	default:
		return CheckStatus{Status: "healthy", Details: details}
	}
}

// ReadyHandler answers readiness checks. Without a database the process is
// ready as soon as it serves.
type ReadyHandler struct {
	DB *sql.DB
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			http.Error(w, "database not ready", http.StatusServiceUnavailable)
			return
		}
	}
	writeText(w, "ready")
}

// LiveHandler always answers 200 while the process can serve.
type LiveHandler struct{}

func (LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	writeText(w, "alive")
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
