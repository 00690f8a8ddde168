// Package library is the entry point for every lending-library command.
// It validates raw requests and dispatches them to the catalog and the
// ledger.
package library

import (
	"context"
	"log/slog"

	"lending-library/internal/domain/entity"
	"lending-library/internal/observability/logging"
	"lending-library/internal/observability/metrics"
	"lending-library/internal/repository"
	"lending-library/internal/usecase/catalog"
	"lending-library/internal/usecase/ledger"
)

// BookStatus is a stored book together with its current availability.
type BookStatus struct {
	Book         *entity.Book        `json:"book"`
	Availability entity.Availability `json:"availability"`
}

// Service runs the lending-library commands. Each command validates its raw
// request before the catalog or the ledger sees it.
type Service struct {
	catalog *catalog.Service
	ledger  *ledger.Service
	store   repository.Store
}

// New composes a Service. store backs Clear and RefreshGauges.
func New(c *catalog.Service, l *ledger.Service, store repository.Store) *Service {
	return &Service{catalog: c, ledger: l, store: store}
}

// NewWithStore wires a catalog and a ledger onto store.
func NewWithStore(store repository.Store) *Service {
	return New(
		&catalog.Service{Books: store.Books(), UoW: store},
		&ledger.Service{UoW: store, Checkouts: store.Checkouts()},
		store,
	)
}

// AddBook validates req as a book and adds it to the catalog.
func (s *Service) AddBook(ctx context.Context, req map[string]any) (*entity.Book, error) {
	book, err := entity.ValidateAs[entity.Book](entity.CommandAddBook, req)
	if err != nil {
		return nil, err
	}
	return s.catalog.AddBook(ctx, book)
}

// FindBooks validates req as a search and returns the matching page.
func (s *Service) FindBooks(ctx context.Context, req map[string]any) ([]*entity.Book, error) {
	find, err := entity.ValidateAs[entity.FindRequest](entity.CommandFindBooks, req)
	if err != nil {
		return nil, err
	}
	return s.catalog.FindBooks(ctx, find)
}

// CheckoutBook validates req as a loan and lends one copy to the patron.
func (s *Service) CheckoutBook(ctx context.Context, req map[string]any) error {
	lend, err := entity.ValidateAs[entity.Lend](entity.CommandCheckoutBook, req)
	if err != nil {
		return err
	}
	return s.ledger.Checkout(ctx, lend)
}

// ReturnBook validates req as a loan and takes the patron's copy back.
func (s *Service) ReturnBook(ctx context.Context, req map[string]any) error {
	lend, err := entity.ValidateAs[entity.Lend](entity.CommandReturnBook, req)
	if err != nil {
		return err
	}
	return s.ledger.Return(ctx, lend)
}

// GetBook returns the book stored under isbn and how many copies are free.
func (s *Service) GetBook(ctx context.Context, isbn string) (*BookStatus, error) {
	if err := entity.ValidateISBN(isbn); err != nil {
		return nil, err
	}
	book, err := s.catalog.GetBook(ctx, isbn)
	if err != nil {
		return nil, err
	}
	av, err := s.ledger.Availability(ctx, isbn)
	if err != nil {
		return nil, err
	}
	return &BookStatus{Book: book, Availability: av}, nil
}

// Loans returns who currently holds a copy of isbn. An unknown isbn is
// reported like GetBook reports it.
func (s *Service) Loans(ctx context.Context, isbn string) ([]*entity.Checkout, error) {
	if err := entity.ValidateISBN(isbn); err != nil {
		return nil, err
	}
	if _, err := s.catalog.GetBook(ctx, isbn); err != nil {
		return nil, err
	}
	return s.ledger.Loans(ctx, isbn)
}

// LoadBooks adds each book in order and stops at the first failure. Books
// added before the failure stay in the catalog.
func (s *Service) LoadBooks(ctx context.Context, books []map[string]any) (int, error) {
	for i, raw := range books {
		if _, err := s.AddBook(ctx, raw); err != nil {
			logging.FromContext(ctx).Info("load stopped",
				slog.Int("index", i),
				slog.Int("loaded", i),
				slog.String("reason", err.Error()))
			return i, err
		}
	}
	return len(books), nil
}

// Clear removes every book and checkout.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		err = entity.WrapDB(err)
		logging.FromContext(ctx).Error("clear failed", slog.Any("error", err))
		return err
	}
	metrics.RecordClear()
	logging.FromContext(ctx).Info("library cleared")
	return nil
}

// RefreshGauges publishes the current catalog and checkout sizes.
func (s *Service) RefreshGauges(ctx context.Context) error {
	books, err := s.store.Books().Count(ctx)
	if err != nil {
		return entity.WrapDB(err)
	}
	checkouts, err := s.store.Checkouts().Count(ctx)
	if err != nil {
		return entity.WrapDB(err)
	}
	metrics.UpdateCatalogSize(books, checkouts)
	return nil
}
