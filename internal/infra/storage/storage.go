// Package storage opens the configured store backend.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"lending-library/internal/infra/adapter/persistence/memory"
	"lending-library/internal/infra/adapter/persistence/postgres"
	"lending-library/internal/infra/adapter/persistence/sqlite"
	"lending-library/internal/infra/db"
	"lending-library/internal/repository"
	"lending-library/internal/resilience/circuitbreaker"
)

// Backend names accepted by Open.
const (
	Memory   = "memory"
	Postgres = db.DriverPostgres
	SQLite   = db.DriverSQLite
)

// ErrUnknownBackend is returned by Open for a name it does not know.
var ErrUnknownBackend = errors.New("unknown backend")

// Backend is an opened store. DB and Breaker are nil for the memory store.
type Backend struct {
	Name    string
	Store   repository.Store
	DB      *sql.DB
	Breaker *circuitbreaker.DBCircuitBreaker
}

// Open connects to the backend, applies the schema and wraps the pool in a
// circuit breaker. dsn is DATABASE_URL for postgres and a file path for
// sqlite; the memory store ignores it.
func Open(ctx context.Context, name, dsn string, pool db.ConnectionConfig) (*Backend, error) {
	if name == Memory {
		return &Backend{Name: name, Store: memory.NewStore()}, nil
	}
	if name != Postgres && name != SQLite {
		return nil, fmt.Errorf("storage: %w %q", ErrUnknownBackend, name)
	}

	conn, err := db.Open(ctx, name, dsn, pool)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(conn, name); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("storage: migrate: %w", err)
	}

	breaker := circuitbreaker.NewDBCircuitBreaker(conn)
	b := &Backend{Name: name, DB: conn, Breaker: breaker}
	if name == Postgres {
		b.Store = postgres.NewStore(breaker)
	} else {
		b.Store = sqlite.NewStore(breaker)
	}
	slog.Info("store opened", slog.String("backend", name))
	return b, nil
}

// Close releases the connection pool, if any.
func (b *Backend) Close() error {
	return b.Store.Close()
}
