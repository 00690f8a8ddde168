package http

import (
	"log/slog"
	"net/http"

	"lending-library/internal/handler/http/admin"
	"lending-library/internal/handler/http/auth"
	"lending-library/internal/handler/http/book"
	"lending-library/internal/handler/http/checkout"
	"lending-library/internal/handler/http/requestid"
	"lending-library/internal/observability/tracing"
	"lending-library/internal/usecase/library"
	"lending-library/pkg/security/csp"
)

// RouterConfig holds what NewRouter needs beyond the library itself.
type RouterConfig struct {
	Logger       *slog.Logger
	Health       *HealthHandler
	Ready        *ReadyHandler
	Tokens       *auth.Tokens // nil leaves mutations open
	RateLimiter  *RateLimiter // nil disables rate limiting
	MaxBodyBytes int64
	CSP          *csp.Policy // defaults to csp.APIPolicy
}

// NewRouter mounts every route and wraps the mux in the middleware chain.
// Outermost first: request id, security headers, tracing, metrics, logging,
// recover, rate limit, body limit, authorization.
func NewRouter(svc *library.Service, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	book.Register(mux, svc)
	checkout.Register(mux, svc)
	admin.Register(mux, svc)

	health := cfg.Health
	if health == nil {
		health = &HealthHandler{}
	}
	ready := cfg.Ready
	if ready == nil {
		ready = &ReadyHandler{}
	}
	mux.Handle("GET /health", health)
	mux.Handle("GET /ready", ready)
	mux.Handle("GET /live", LiveHandler{})
	mux.Handle("GET /metrics", MetricsHandler())

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var h http.Handler = mux
	if cfg.Tokens != nil {
		h = auth.Authz(cfg.Tokens)(h)
	}
	if cfg.MaxBodyBytes > 0 {
		h = LimitRequestBody(cfg.MaxBodyBytes)(h)
	}
	if cfg.RateLimiter != nil {
		h = cfg.RateLimiter.Limit(h)
	}
	h = Recover(logger)(h)
	h = Logging(logger)(h)
	h = MetricsMiddleware(h)
	h = tracing.Middleware(h)

	policy := cfg.CSP
	if policy == nil {
		policy = csp.APIPolicy()
	}
	h = SecurityHeaders(policy)(h)
	h = requestid.Middleware(h)
	return h
}
