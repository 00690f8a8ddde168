package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"lending-library/internal/domain/entity"
	"lending-library/internal/repository"
)

// Store implements repository.Store on SQLite.
//
// The connection is opened with _txlock=immediate, so every WithinISBN
// transaction holds the database write lock from BEGIN to COMMIT. That is
// coarser than one lock per isbn but gives the same guarantee.
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

	if err = fn(&txScope{tx: tx, isbn: isbn}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("WithinISBN: Commit: %w", err)
	}
	return nil
}

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
	for _, stmt := range []string{`DELETE FROM checkouts`, `DELETE FROM books_fts`, `DELETE FROM books`} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("Clear: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("Clear: Commit: %w", err)
	}
	return nil
}

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
WHERE isbn = ?`
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
	authors, err := encodeAuthors(b.Authors)
	if err != nil {
		return fmt.Errorf("InsertBook: %w", err)
	}
	const insertBook = `
INSERT INTO books (isbn, title, authors, pages, year, publisher, n_copies)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := sc.tx.ExecContext(ctx, insertBook,
		sc.isbn, b.Title, authors, b.Pages, b.Year, b.Publisher, b.NCopies,
	); err != nil {
		return fmt.Errorf("InsertBook: %w", err)
	}
	const insertFTS = `INSERT INTO books_fts (isbn, title, authors) VALUES (?, ?, ?)`
	if _, err := sc.tx.ExecContext(ctx, insertFTS, sc.isbn, b.Title, ftsAuthors(b.Authors)); err != nil {
		return fmt.Errorf("InsertBook: fts: %w", err)
	}
	return nil
}

func (sc *txScope) AddCopies(ctx context.Context, n int) (*entity.Book, error) {
	const query = `
UPDATE books
SET n_copies = n_copies + ?
WHERE isbn = ?
RETURNING ` + bookColumns
	b, err := scanBook(sc.tx.QueryRowContext(ctx, query, n, sc.isbn))
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
WHERE isbn = ?`
	rows, err := sc.tx.QueryContext(ctx, query, sc.isbn)
	if err != nil {
		return nil, fmt.Errorf("Checkouts: %w", err)
	}
	return collectCheckouts(rows)
}

func (sc *txScope) InsertCheckout(ctx context.Context, patronID string) error {
	const query = `INSERT INTO checkouts (isbn, patron_id) VALUES (?, ?)`
	if _, err := sc.tx.ExecContext(ctx, query, sc.isbn, patronID); err != nil {
		return fmt.Errorf("InsertCheckout: %w", err)
	}
	return nil
}

func (sc *txScope) DeleteCheckout(ctx context.Context, patronID string) (bool, error) {
	const query = `DELETE FROM checkouts WHERE isbn = ? AND patron_id = ?`
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

func collectCheckouts(rows *sql.Rows) ([]*entity.Checkout, error) {
	defer func() { _ = rows.Close() }()
	var out []*entity.Checkout
	for rows.Next() {
		var c entity.Checkout
		if err := rows.Scan(&c.ISBN, &c.PatronID); err != nil {
			return nil, fmt.Errorf("scan checkout: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
