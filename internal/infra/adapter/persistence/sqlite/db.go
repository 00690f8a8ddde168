// Package sqlite stores the catalog in a single SQLite file (modernc.org/sqlite).
//
// Authors are kept as a JSON array in a TEXT column. Full-text search goes
// through the books_fts FTS5 table, which is written alongside books.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"lending-library/internal/domain/entity"
)

// DB is the subset of *sql.DB used by this package.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

const bookColumns = `isbn, title, authors, pages, year, publisher, n_copies`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBook(s scanner) (*entity.Book, error) {
	var (
		b       entity.Book
		authors string
	)
	if err := s.Scan(&b.ISBN, &b.Title, &authors,
		&b.Pages, &b.Year, &b.Publisher, &b.NCopies); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(authors), &b.Authors); err != nil {
		return nil, fmt.Errorf("decode authors of %s: %w", b.ISBN, err)
	}
	return &b, nil
}

func encodeAuthors(authors []string) (string, error) {
	if authors == nil {
		authors = []string{}
	}
	raw, err := json.Marshal(authors)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// ftsAuthors is the authors column of books_fts. As in the other stores a
// phrase may run from one author name into the next.
func ftsAuthors(authors []string) string {
	return strings.Join(authors, " ")
}
