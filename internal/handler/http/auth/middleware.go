// Package auth guards mutating routes with bearer JWTs.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"lending-library/internal/domain/entity"
	"lending-library/internal/handler/http/respond"
	"lending-library/internal/observability/logging"
)

// Error codes for authentication failures.
const (
	CodeUnauthorized entity.Code = "UNAUTHORIZED"
	CodeForbidden    entity.Code = "FORBIDDEN"
)

type ctxKey string

const ctxClaims ctxKey = "claims"

// ClaimsFromContext returns the verified claims of the request, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxClaims).(*Claims)
	return c, ok
}

// Authz requires a valid token with a permitted role on every request that
// is not a public endpoint. Reads are open except under /admin/.
func Authz(tokens *Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsPublicEndpoint(r.URL.Path) || (isRead(r.Method) && !strings.HasPrefix(r.URL.Path, "/admin/")) {
				next.ServeHTTP(w, r)
				return
			}

			log := logging.FromContext(r.Context())
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				recordDecision(resultUnauthorized, "")
				deny(w, http.StatusUnauthorized, CodeUnauthorized, "missing bearer token")
				return
			}
			claims, err := tokens.Parse(raw)
			if err != nil {
				recordDecision(resultUnauthorized, "")
				log.Warn("token rejected", slog.String("error", err.Error()))
				deny(w, http.StatusUnauthorized, CodeUnauthorized, "invalid token")
				return
			}
			if !checkRolePermission(claims.Role, r.Method, r.URL.Path) {
				recordDecision(resultForbidden, claims.Role)
				log.Warn("forbidden",
					slog.String("user", claims.Subject),
					slog.String("role", claims.Role),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path))
				deny(w, http.StatusForbidden, CodeForbidden, "forbidden")
				return
			}

			recordDecision(resultAllowed, claims.Role)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxClaims, claims)))
		})
	}
}

func isRead(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

func deny(w http.ResponseWriter, status int, code entity.Code, msg string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="library"`)
	}
	respond.JSON(w, status, respond.ErrorBody{Errors: []respond.ErrorItem{{Code: code, Message: msg}}})
}
