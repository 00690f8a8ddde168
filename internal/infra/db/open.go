package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	envcfg "lending-library/pkg/config"
)

// Driver names accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ConnectionConfig holds database connection pool configuration.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// DefaultConnectionConfig returns the default connection pool configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

// Open opens and pings a connection pool for driver.
//
// For postgres dsn is a libpq/pgx URL. For sqlite dsn is a file path (or
// ":memory:"); it is rewritten by SQLiteDSN and the pool is pinned to one
// connection, so every transaction takes the single write lock in turn.
func Open(ctx context.Context, driver, dsn string, cfg ConnectionConfig) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("open %s: DATABASE_URL not set", driver)
		}
		db, err = sql.Open("pgx", dsn)
	case DriverSQLite:
		db, err = sql.Open("sqlite", SQLiteDSN(dsn))
		cfg.MaxOpenConns, cfg.MaxIdleConns = 1, 1
		cfg.ConnMaxLifetime, cfg.ConnMaxIdleTime = 0, 0
	default:
		return nil, fmt.Errorf("open: unknown driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	slog.Info("database connection pool configured",
		slog.String("driver", driver),
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", cfg.ConnMaxIdleTime))

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	slog.Info("database connection established successfully", slog.String("driver", driver))
	return db, nil
}

// SQLiteDSN turns a file path into a modernc.org/sqlite DSN with foreign
// keys on, a busy timeout and IMMEDIATE transactions.
func SQLiteDSN(path string) string {
	if path == "" {
		path = ":memory:"
	}
	const params = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	return path + "?" + params
}

// ConnectionConfigFromEnv reads pool settings from DB_* environment variables.
// Non-positive values keep the default.
func ConnectionConfigFromEnv() ConnectionConfig {
	cfg := DefaultConnectionConfig()
	if v := envcfg.GetEnvInt("DB_MAX_OPEN_CONNS", 0); v > 0 {
		cfg.MaxOpenConns = v
	}
	if v := envcfg.GetEnvInt("DB_MAX_IDLE_CONNS", 0); v > 0 {
		cfg.MaxIdleConns = v
	}
	if v := envcfg.GetEnvDuration("DB_CONN_MAX_LIFETIME", 0); envcfg.ValidatePositiveDuration(v) == nil {
		cfg.ConnMaxLifetime = v
	}
	if v := envcfg.GetEnvDuration("DB_CONN_MAX_IDLE_TIME", 0); envcfg.ValidatePositiveDuration(v) == nil {
		cfg.ConnMaxIdleTime = v
	}
	if v := envcfg.GetEnvDuration("DB_PING_TIMEOUT", 0); envcfg.ValidatePositiveDuration(v) == nil {
		cfg.PingTimeout = v
	}
	return cfg
}
