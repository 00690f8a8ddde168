// Package memory is an in-process implementation of the repository ports.
// Work on one isbn is serialized through a lock table keyed by isbn; writes
// made inside WithinISBN are staged and applied only when the callback
// succeeds and no Clear ran since the scope was opened.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"lending-library/internal/domain/entity"
	"lending-library/internal/repository"
)

// Store keeps books and checkouts in maps. The zero value is not usable;
// call NewStore.
type Store struct {
	mu        sync.RWMutex
	books     map[string]*entity.Book
	checkouts map[string][]string // isbn -> patron ids in checkout order
	gen       uint64              // bumped by Clear
	locks     *lockTable
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		books:     make(map[string]*entity.Book),
		checkouts: make(map[string][]string),
		locks:     newLockTable(),
	}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) Books() repository.BookRepository         { return bookRepo{s} }
func (s *Store) Checkouts() repository.CheckoutRepository { return checkoutRepo{s} }

// Clear drops every book and checkout. Scopes still open on some isbn are
// ordered before the clear: their staged writes are discarded.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	clear(s.books)
	clear(s.checkouts)
	return nil
}

func (s *Store) Close() error { return nil }

// WithinISBN implements repository.UnitOfWork.
func (s *Store) WithinISBN(ctx context.Context, isbn string, fn func(repository.ISBNScope) error) error {
	unlock := s.locks.Lock(isbn)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	sc := &scope{
		isbn:    isbn,
		book:    s.books[isbn].Clone(),
		patrons: slices.Clone(s.checkouts[isbn]),
	}
	gen := s.gen
	s.mu.RUnlock()

	if err := fn(sc); err != nil {
		return err
	}
	if !sc.dirty {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return nil
	}
	if sc.book != nil {
		s.books[isbn] = sc.book
	}
	if len(sc.patrons) == 0 {
		delete(s.checkouts, isbn)
	} else {
		s.checkouts[isbn] = sc.patrons
	}
	return nil
}

// scope holds a private copy of one isbn's state while the isbn is locked.
type scope struct {
	isbn    string
	book    *entity.Book
	patrons []string
	dirty   bool
}

func (sc *scope) Book(_ context.Context) (*entity.Book, error) {
	return sc.book.Clone(), nil
}

func (sc *scope) InsertBook(_ context.Context, book *entity.Book) error {
	if sc.book != nil {
		return errDuplicateBook
	}
	sc.book = book.Clone()
	sc.dirty = true
	return nil
}

func (sc *scope) AddCopies(_ context.Context, n int) (*entity.Book, error) {
	if sc.book == nil {
		return nil, entity.ErrNotFound
	}
	sc.book.NCopies += n
	sc.dirty = true
	return sc.book.Clone(), nil
}

func (sc *scope) Checkouts(_ context.Context) ([]*entity.Checkout, error) {
	out := make([]*entity.Checkout, 0, len(sc.patrons))
	for _, p := range sc.patrons {
		out = append(out, &entity.Checkout{ISBN: sc.isbn, PatronID: p})
	}
	return out, nil
}

func (sc *scope) InsertCheckout(_ context.Context, patronID string) error {
	if slices.Contains(sc.patrons, patronID) {
		return errDuplicateCheckout
	}
	sc.patrons = append(sc.patrons, patronID)
	sc.dirty = true
	return nil
}

func (sc *scope) DeleteCheckout(_ context.Context, patronID string) (bool, error) {
	i := slices.Index(sc.patrons, patronID)
	if i < 0 {
		return false, nil
	}
	sc.patrons = slices.Delete(sc.patrons, i, i+1)
	sc.dirty = true
	return true, nil
}

type bookRepo struct{ s *Store }

func (r bookRepo) Get(_ context.Context, isbn string) (*entity.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.books[isbn].Clone(), nil
}

func (r bookRepo) Search(_ context.Context, q repository.BookSearch) ([]*entity.Book, error) {
	r.s.mu.RLock()
	matches := make([]*entity.Book, 0)
	for _, b := range r.s.books {
		if q.Query.Match(b.Title, strings.Join(b.Authors, " ")) {
			matches = append(matches, b.Clone())
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Title != matches[j].Title {
			return matches[i].Title < matches[j].Title
		}
		return matches[i].ISBN < matches[j].ISBN
	})

	if q.Offset >= len(matches) {
		return []*entity.Book{}, nil
	}
	matches = matches[q.Offset:]
	if q.Limit != nil && *q.Limit < len(matches) {
		matches = matches[:*q.Limit]
	}
	return matches, nil
}

func (r bookRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.books)), nil
}

type checkoutRepo struct{ s *Store }

func (r checkoutRepo) ListByISBN(_ context.Context, isbn string) ([]*entity.Checkout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Checkout, 0, len(r.s.checkouts[isbn]))
	for _, p := range r.s.checkouts[isbn] {
		out = append(out, &entity.Checkout{ISBN: isbn, PatronID: p})
	}
	return out, nil
}

func (r checkoutRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, ps := range r.s.checkouts {
		n += int64(len(ps))
	}
	return n, nil
}
