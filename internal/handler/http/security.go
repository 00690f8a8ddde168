package http

import (
	"net/http"

	"lending-library/pkg/security/csp"
)

// SecurityHeaders sets the headers every JSON response carries: the given
// Content-Security-Policy, no MIME sniffing and no referrer.
func SecurityHeaders(policy *csp.Policy) func(http.Handler) http.Handler {
	name, value := policy.HeaderName(), policy.Build()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if value != "" {
				h.Set(name, value)
			}
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "no-referrer")
			next.ServeHTTP(w, r)
		})
	}
}
