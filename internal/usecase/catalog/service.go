// Package catalog implements the book catalog: adding and merging titles
// and searching them.
package catalog

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"lending-library/internal/domain/entity"
	"lending-library/internal/observability/logging"
	"lending-library/internal/observability/metrics"
	"lending-library/internal/observability/tracing"
	"lending-library/internal/pkg/search"
	"lending-library/internal/repository"
)

const msgMismatch = "invalid book/data mismatch"

// Service provides catalog use cases. Books serves reads; UoW serializes the
// merge-or-insert decision per isbn.
type Service struct {
	Books repository.BookRepository
	UoW   repository.UnitOfWork
}

// AddBook inserts book, or merges it into the stored record with the same
// isbn by adding its copies. A stored record that differs in any field other
// than NCopies is left untouched and the add fails on isbn.
func (s *Service) AddBook(ctx context.Context, book entity.Book) (out *entity.Book, err error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.AddBook", attribute.String("isbn", book.ISBN))
	defer func() { tracing.EndSpan(span, err) }()

	if book.NCopies <= 0 {
		book.NCopies = 1
	}

	merged := false
	err = s.UoW.WithinISBN(ctx, book.ISBN, func(sc repository.ISBNScope) error {
		cur, err := sc.Book(ctx)
		if err != nil {
			return err
		}
		if cur == nil {
			nb := book.Clone()
			if err := sc.InsertBook(ctx, nb); err != nil {
				return err
			}
			out, merged = nb, false
			return nil
		}
		if !cur.SameEdition(&book) {
			return entity.ConflictError(entity.ErrBookMismatch, msgMismatch)
		}
		updated, err := sc.AddCopies(ctx, book.NCopies)
		if err != nil {
			return err
		}
		out, merged = updated, true
		return nil
	})

	log := logging.FromContext(ctx)
	if err != nil {
		err = entity.WrapDB(err)
		if entity.HasCode(err, entity.CodeDB) {
			metrics.RecordBookAdded(metrics.ResultError)
			log.Error("add book failed", slog.String("isbn", book.ISBN), slog.Any("error", err))
		} else {
			metrics.RecordBookAdded(metrics.ResultRejected)
			log.Info("add book rejected", slog.String("isbn", book.ISBN), slog.String("reason", err.Error()))
		}
		return nil, err
	}

	if merged {
		metrics.RecordBookAdded(metrics.ResultMerged)
	} else {
		metrics.RecordBookAdded(metrics.ResultInserted)
	}
	log.Debug("book added",
		slog.String("isbn", out.ISBN),
		slog.Int("n_copies", out.NCopies),
		slog.Bool("merged", merged))
	return out, nil
}

// FindBooks returns the books matching req.Search over title and authors,
// ordered by title then isbn, skipping req.Index and returning at most
// req.Count. A search with nothing to require, or a zero count, matches
// nothing.
func (s *Service) FindBooks(ctx context.Context, req entity.FindRequest) (books []*entity.Book, err error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.FindBooks", attribute.String("search", req.Search))
	defer func() { tracing.EndSpan(span, err) }()
	metrics.RecordSearch()

	q := search.Parse(req.Search)
	if !q.HasPositive() || (req.Count != nil && *req.Count == 0) {
		return []*entity.Book{}, nil
	}

	books, err = s.Books.Search(ctx, repository.BookSearch{
		Query:  q,
		Offset: req.Index,
		Limit:  req.Count,
	})
	if err != nil {
		err = entity.WrapDB(err)
		logging.FromContext(ctx).Error("find books failed", slog.String("search", req.Search), slog.Any("error", err))
		return nil, err
	}
	span.SetAttributes(attribute.Int("results", len(books)))
	return books, nil
}

// GetBook returns the stored book. An unknown isbn is a BAD_TYPE error on
// isbn wrapping entity.ErrNotFound.
func (s *Service) GetBook(ctx context.Context, isbn string) (*entity.Book, error) {
	b, err := s.Books.Get(ctx, isbn)
	if err != nil {
		return nil, entity.WrapDB(err)
	}
	if b == nil {
		return nil, entity.ConflictError(entity.ErrNotFound, "unknown isbn")
	}
	return b, nil
}
