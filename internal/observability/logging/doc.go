// Package logging wraps log/slog with the conventions used across the service.
//
// The API server logs JSON to stdout; the CLI logs text to stderr. Request
// handlers attach request and trace ids with WithRequestID and pass the
// logger down through the context:
//
//	logger := logging.WithRequestID(r.Context(), slog.Default())
//	ctx := logging.WithLogger(r.Context(), logger)
//	logging.FromContext(ctx).Info("book added", slog.String("isbn", isbn))
package logging
