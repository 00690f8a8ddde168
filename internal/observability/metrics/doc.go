// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count, size)
//   - Library metrics (adds, checkouts, returns, catalog size)
//   - Database query metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "lending-library/internal/observability/metrics"
//
//	func checkout(ctx context.Context, lend entity.Lend) error {
//	    start := time.Now()
//	    err := ledger.Checkout(ctx, lend)
//	    metrics.RecordDBQuery("checkout", time.Since(start))
//	    if err != nil {
//	        metrics.RecordCheckout(metrics.ResultRejected)
//	        return err
//	    }
//	    metrics.RecordCheckout(metrics.ResultSuccess)
//	    return nil
//	}
package metrics
