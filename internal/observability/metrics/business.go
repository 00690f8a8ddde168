package metrics

import (
	"database/sql"
)

// Result labels shared by the library counters.
const (
	ResultSuccess  = "success"
	ResultInserted = "inserted"
	ResultMerged   = "merged"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// RecordBookAdded records the outcome of an addBook call.
// result is one of ResultInserted, ResultMerged, ResultRejected or ResultError.
func RecordBookAdded(result string) {
	BookAddsTotal.WithLabelValues(result).Inc()
}

// RecordCheckout records the outcome of a checkoutBook call.
func RecordCheckout(result string) {
	CheckoutsTotal.WithLabelValues(result).Inc()
}

// RecordReturn records the outcome of a returnBook call.
func RecordReturn(result string) {
	ReturnsTotal.WithLabelValues(result).Inc()
}

func RecordSearch() {
	SearchesTotal.Inc()
}

func RecordClear() {
	ClearsTotal.Inc()
	BooksTotal.Set(0)
	CheckoutsActive.Set(0)
}

// UpdateCatalogSize sets the catalog gauges.
// This gauge should be updated periodically to reflect the current state.
func UpdateCatalogSize(books, checkouts int64) {
	BooksTotal.Set(float64(books))
	CheckoutsActive.Set(float64(checkouts))
}

// UpdateDBStats copies connection pool statistics into the DB gauges.
func UpdateDBStats(stats sql.DBStats) {
	DBConnectionsOpen.Set(float64(stats.OpenConnections))
	DBConnectionsIdle.Set(float64(stats.Idle))
}
