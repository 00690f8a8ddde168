package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/lib/pq"

	"lending-library/internal/domain/entity"
	"lending-library/internal/repository"
)

// Store implements repository.Store on PostgreSQL.
//
// WithinISBN opens a transaction and takes a transaction-scoped advisory lock
// derived from the isbn, so concurrent adds and checkouts of one title queue
// behind each other even before the book row exists.
type Store struct {
	db        DB
	books     repository.BookRepository
	checkouts repository.CheckoutRepository
}

func NewStore(db DB) *Store {
	return &Store{
		db:        db,
		books:     NewBookRepo(db),
		checkouts: NewCheckoutRepo(db),
	}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) Books() repository.BookRepository         { return s.books }
func (s *Store) Checkouts() repository.CheckoutRepository { return s.checkouts }

func (s *Store) WithinISBN(ctx context.Context, isbn string, fn func(repository.ISBNScope) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("WithinISBN: BeginTx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const lock = `SELECT pg_advisory_xact_lock(hashtext($1))`
	if _, err = tx.ExecContext(ctx, lock, isbn); err != nil {
		return fmt.Errorf("WithinISBN: lock: %w", err)
	}
	if err = fn(&txScope{tx: tx, isbn: isbn}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("WithinISBN: Commit: %w", err)
	}
	return nil
}

// Clear deletes checkouts and books in one transaction.
func (s *Store) Clear(ctx context.Context) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Clear: BeginTx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for _, stmt := range []string{`DELETE FROM checkouts`, `DELETE FROM books`} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("Clear: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("Clear: Commit: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool when the store owns one.
func (s *Store) Close() error {
	if c, ok := s.db.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type txScope struct {
	tx   *sql.Tx
	isbn string
}

func (sc *txScope) Book(ctx context.Context) (*entity.Book, error) {
	const query = `
SELECT ` + bookColumns + `
FROM books
WHERE isbn = $1`
	b, err := scanBook(sc.tx.QueryRowContext(ctx, query, sc.isbn))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Book: %w", err)
	}
	return b, nil
}

func (sc *txScope) InsertBook(ctx context.Context, b *entity.Book) error {
	const query = `
INSERT INTO books (isbn, title, authors, pages, year, publisher, n_copies, search)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8::tsvector)`
	if _, err := sc.tx.ExecContext(ctx, query,
		sc.isbn, b.Title, pq.Array(b.Authors), b.Pages, b.Year, b.Publisher, b.NCopies, searchVector(b),
	); err != nil {
		return fmt.Errorf("InsertBook: %w", err)
	}
	return nil
}

func (sc *txScope) AddCopies(ctx context.Context, n int) (*entity.Book, error) {
	const query = `
UPDATE books
SET n_copies = n_copies + $2
WHERE isbn = $1
RETURNING ` + bookColumns
	b, err := scanBook(sc.tx.QueryRowContext(ctx, query, sc.isbn, n))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("AddCopies: %w", err)
	}
	return b, nil
}

func (sc *txScope) Checkouts(ctx context.Context) ([]*entity.Checkout, error) {
	const query = `
SELECT isbn, patron_id
FROM checkouts
WHERE isbn = $1`
	rows, err := sc.tx.QueryContext(ctx, query, sc.isbn)
	if err != nil {
		return nil, fmt.Errorf("Checkouts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.Checkout
	for rows.Next() {
		var c entity.Checkout
		if err := rows.Scan(&c.ISBN, &c.PatronID); err != nil {
			return nil, fmt.Errorf("Checkouts: Scan: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (sc *txScope) InsertCheckout(ctx context.Context, patronID string) error {
	const query = `INSERT INTO checkouts (isbn, patron_id) VALUES ($1, $2)`
	if _, err := sc.tx.ExecContext(ctx, query, sc.isbn, patronID); err != nil {
		return fmt.Errorf("InsertCheckout: %w", err)
	}
	return nil
}

func (sc *txScope) DeleteCheckout(ctx context.Context, patronID string) (bool, error) {
	const query = `DELETE FROM checkouts WHERE isbn = $1 AND patron_id = $2`
	res, err := sc.tx.ExecContext(ctx, query, sc.isbn, patronID)
	if err != nil {
		return false, fmt.Errorf("DeleteCheckout: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("DeleteCheckout: RowsAffected: %w", err)
	}
	return n > 0, nil
}
