package sqlite

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
WHERE isbn = ?`
	b, err := scanBook(repo.db.QueryRowContext(ctx, query, isbn))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return b, nil
}

// Search runs q as an FTS5 MATCH expression. LIMIT -1 is SQLite for no limit.
func (repo *BookRepo) Search(ctx context.Context, q repository.BookSearch) ([]*entity.Book, error) {
	const query = `
SELECT ` + bookColumns + `
FROM books
WHERE isbn IN (SELECT isbn FROM books_fts WHERE books_fts MATCH ?)
ORDER BY title ASC, isbn ASC
LIMIT ? OFFSET ?`
	limit := -1
	if q.Limit != nil {
		limit = *q.Limit
	}

	if !q.Query.HasPositive() {
		return []*entity.Book{}, nil
	}

	start := time.Now()
	rows, err := repo.db.QueryContext(ctx, query, q.Query.ToFTS5(), limit, q.Offset)
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
