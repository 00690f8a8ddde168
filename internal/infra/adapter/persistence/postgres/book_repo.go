package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lending-library/internal/domain/entity"
	"lending-library/internal/observability/metrics"
	"lending-library/internal/repository"
)

type BookRepo struct{ db DB }

func NewBookRepo(db DB) repository.BookRepository {
	return &BookRepo{db: db}
}

func (repo *BookRepo) Get(ctx context.Context, isbn string) (*entity.Book, error) {
	const query = `
SELECT ` + bookColumns + `
FROM books
WHERE isbn = $1`
	b, err := scanBook(repo.db.QueryRowContext(ctx, query, isbn))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return b, nil
}

// Search matches q against the search tsvector column. A nil limit is
// bound as NULL, which PostgreSQL treats as LIMIT ALL.
func (repo *BookRepo) Search(ctx context.Context, q repository.BookSearch) ([]*entity.Book, error) {
	const query = `
SELECT ` + bookColumns + `
FROM books
WHERE search @@ $1::tsquery
ORDER BY title ASC, isbn ASC
OFFSET $2
LIMIT $3`
	var limit interface{}
	if q.Limit != nil {
		limit = *q.Limit
	}

	if !q.Query.HasPositive() {
		return []*entity.Book{}, nil
	}

	start := time.Now()
	rows, err := repo.db.QueryContext(ctx, query, q.Query.ToTSQuery(), q.Offset, limit)
	metrics.RecordDBQuery("search_books", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	books := make([]*entity.Book, 0, 16)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("Search: Scan: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	return books, nil
}

func (repo *BookRepo) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM books`
	var n int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}
