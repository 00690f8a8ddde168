// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds.
	// Buckets cover 5ms to 10s for p95/p99 latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestsInFlight tracks requests currently being served
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	// HTTPRequestSize measures HTTP request body size in bytes
	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// HTTPRateLimited counts requests rejected by the rate limiter
	HTTPRateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"path"},
	)
)

// Business metrics track library operations
var (
	// BooksTotal tracks the number of distinct books in the catalog
	BooksTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "library_books_total",
			Help: "Number of distinct books (isbns) in the catalog",
		},
	)

	// CheckoutsActive tracks the number of live checkouts
	CheckoutsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "library_checkouts_active",
			Help: "Number of books currently checked out",
		},
	)

	// BookAddsTotal counts addBook calls by result
	BookAddsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_book_adds_total",
			Help: "Total number of addBook operations",
		},
		[]string{"result"}, // result: inserted, merged, rejected, error
	)

	// CheckoutsTotal counts checkoutBook calls by result
	CheckoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_checkouts_total",
			Help: "Total number of checkoutBook operations",
		},
		[]string{"result"}, // result: success, rejected, error
	)

	// ReturnsTotal counts returnBook calls by result
	ReturnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_returns_total",
			Help: "Total number of returnBook operations",
		},
		[]string{"result"}, // result: success, rejected, error
	)

	// SearchesTotal counts findBooks calls
	SearchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "library_searches_total",
			Help: "Total number of findBooks operations",
		},
	)

	// ClearsTotal counts clear operations
	ClearsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "library_clears_total",
			Help: "Total number of times library state was cleared",
		},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsOpen tracks open database connections
	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_open",
			Help: "Number of open database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, requestSize, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	}
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordDBQuery records the duration of a database query operation.
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
