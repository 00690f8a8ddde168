package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lending-library/internal/handler/http/pathutil"
	"lending-library/internal/handler/http/responsewriter"
	"lending-library/internal/observability/metrics"
)

// MetricsMiddleware records request count, latency and sizes. Paths are
// normalized so every isbn shares one label value.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		rec := responsewriter.Wrap(w)
		start := time.Now()
		next.ServeHTTP(rec, r)

		metrics.RecordHTTPRequest(
			r.Method,
			pathutil.NormalizePath(r.URL.Path),
			strconv.Itoa(rec.StatusCode()),
			time.Since(start),
			int(r.ContentLength),
			rec.BytesWritten(),
		)
	})
}

// MetricsHandler returns an HTTP handler for the Prometheus metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
