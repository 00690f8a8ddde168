// Package observability groups the logging, metrics and tracing packages.
//
// Subpackages:
//   - logging: slog constructors and request-scoped loggers
//   - metrics: Prometheus collectors for HTTP, library operations and the database
//   - tracing: OpenTelemetry provider, HTTP middleware and span helpers
package observability
