// Package tracing wires OpenTelemetry into the service.
//
// NewProvider installs the SDK tracer provider at startup. Middleware opens a
// server span per HTTP request and use cases open child spans with StartSpan
// and close them with EndSpan:
//
//	ctx, span := tracing.StartSpan(ctx, "ledger.Checkout", attribute.String("isbn", isbn))
//	defer func() { tracing.EndSpan(span, err) }()
package tracing
