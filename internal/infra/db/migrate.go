package db

import (
	"database/sql"
	"fmt"
)

// MigrateUp creates the PostgreSQL schema. Every statement is idempotent.
//
// The search column is a tsvector written by the application from title and
// authors with the search package's tokenizer, so PostgreSQL, SQLite and the
// memory store agree on what a word is. Queries are cast with ::tsquery and
// are never stemmed.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS books (
    isbn        TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    authors     TEXT[] NOT NULL,
    pages       INTEGER NOT NULL CHECK (pages > 0),
    year        INTEGER NOT NULL,
    publisher   TEXT NOT NULL,
    n_copies    INTEGER NOT NULL CHECK (n_copies > 0),
    search      TSVECTOR NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS checkouts (
    isbn           TEXT NOT NULL REFERENCES books(isbn) ON DELETE CASCADE,
    patron_id      TEXT NOT NULL,
    checked_out_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (isbn, patron_id)
)`); err != nil {
		return err
	}

	indexes := []string{
		// 全文検索用
		`CREATE INDEX IF NOT EXISTS idx_books_search ON books USING gin(search)`,
		// ORDER BY title, isbn
		`CREATE INDEX IF NOT EXISTS idx_books_title_isbn ON books(title, isbn)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}
	return nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS books (
    isbn       TEXT PRIMARY KEY,
    title      TEXT NOT NULL,
    authors    TEXT NOT NULL,
    pages      INTEGER NOT NULL CHECK (pages > 0),
    year       INTEGER NOT NULL,
    publisher  TEXT NOT NULL,
    n_copies   INTEGER NOT NULL CHECK (n_copies > 0),
    created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
)`,
	`CREATE VIRTUAL TABLE IF NOT EXISTS books_fts USING fts5(
    isbn UNINDEXED,
    title,
    authors,
    tokenize = "unicode61 remove_diacritics 0 tokenchars '_'"
)`,
	`CREATE TABLE IF NOT EXISTS checkouts (
    isbn           TEXT NOT NULL REFERENCES books(isbn) ON DELETE CASCADE,
    patron_id      TEXT NOT NULL,
    checked_out_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
    PRIMARY KEY (isbn, patron_id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_books_title_isbn ON books(title, isbn)`,
}

// MigrateUpSQLite creates the SQLite schema, including the FTS5 index.
func MigrateUpSQLite(db *sql.DB) error {
	for i, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("sqlite schema step %d: %w", i+1, err)
		}
	}
	return nil
}

// Migrate runs the schema for driver.
func Migrate(db *sql.DB, driver string) error {
	switch driver {
	case DriverPostgres:
		return MigrateUp(db)
	case DriverSQLite:
		return MigrateUpSQLite(db)
	default:
		return fmt.Errorf("migrate: unknown driver %q", driver)
	}
}
