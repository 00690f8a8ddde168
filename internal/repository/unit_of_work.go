package repository

import (
	"context"

	"lending-library/internal/domain/entity"
)

// UnitOfWork serializes read-then-write sequences on a single isbn.
//
// WithinISBN runs fn with exclusive access to the book and the checkouts of
// isbn. Writes made through the scope are committed when fn returns nil and
// discarded when it returns an error. Two calls for the same isbn never
// overlap; calls for different isbns may.
type UnitOfWork interface {
	WithinISBN(ctx context.Context, isbn string, fn func(ISBNScope) error) error
}

// ISBNScope is the set of operations allowed while an isbn is held.
// Every method acts on the isbn the scope was opened for.
type ISBNScope interface {
	// Book returns (nil, nil) when the isbn is unknown.
	Book(ctx context.Context) (*entity.Book, error)
	InsertBook(ctx context.Context, book *entity.Book) error
	// AddCopies increments nCopies by n and returns the updated book.
	AddCopies(ctx context.Context, n int) (*entity.Book, error)
	Checkouts(ctx context.Context) ([]*entity.Checkout, error)
	InsertCheckout(ctx context.Context, patronID string) error
	// DeleteCheckout reports whether a checkout existed.
	DeleteCheckout(ctx context.Context, patronID string) (bool, error)
}

// Store bundles every port a backend provides.
type Store interface {
	UnitOfWork
	Books() BookRepository
	Checkouts() CheckoutRepository
	// Clear drops all books and checkouts.
	Clear(ctx context.Context) error
	Close() error
}
