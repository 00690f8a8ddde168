package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"

	"lending-library/internal/domain/entity"
	"lending-library/internal/pkg/search"
)

// DB is the subset of *sql.DB used by this package.
// *circuitbreaker.DBCircuitBreaker satisfies it as well.
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
	var b entity.Book
	if err := s.Scan(&b.ISBN, &b.Title, pq.Array(&b.Authors),
		&b.Pages, &b.Year, &b.Publisher, &b.NCopies); err != nil {
		return nil, err
	}
	return &b, nil
}

// searchVector is the tsvector literal stored in the search column.
func searchVector(b *entity.Book) string {
	return search.ToTSVector(b.Title, strings.Join(b.Authors, " "))
}
