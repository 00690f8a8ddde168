// Package ledger tracks which patron holds which title and enforces the
// per-title copy ceiling.
package ledger

import (
	"context"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel/attribute"

	"lending-library/internal/domain/entity"
	"lending-library/internal/observability/logging"
	"lending-library/internal/observability/metrics"
	"lending-library/internal/observability/tracing"
	"lending-library/internal/repository"
)

const (
	msgInvalidISBN   = "invalid isbn"
	msgNoCopies      = "no copies available"
	msgAlreadyOut    = "book already checked out by patron"
	msgNotCheckedOut = "book not checked out by patron"
)

// Service provides checkout and return. Every operation holds the isbn for
// its whole read-check-write sequence, so the live checkout count never
// exceeds NCopies.
type Service struct {
	UoW       repository.UnitOfWork
	Checkouts repository.CheckoutRepository // read side for Loans
}

// Checkout lends one copy of lend.ISBN to lend.PatronID.
// Checks run in order: unknown book, no free copy, patron already holds one.
func (s *Service) Checkout(ctx context.Context, lend entity.Lend) (err error) {
	ctx, span := tracing.StartSpan(ctx, "ledger.Checkout",
		attribute.String("isbn", lend.ISBN),
		attribute.String("patron_id", lend.PatronID))
	defer func() { tracing.EndSpan(span, err) }()

	err = s.UoW.WithinISBN(ctx, lend.ISBN, func(sc repository.ISBNScope) error {
		book, err := sc.Book(ctx)
		if err != nil {
			return err
		}
		if book == nil {
			return entity.ConflictError(entity.ErrUnknownBook, msgInvalidISBN)
		}
		live, err := sc.Checkouts(ctx)
		if err != nil {
			return err
		}
		if len(live) >= book.NCopies {
			return entity.ConflictError(entity.ErrNoCopiesAvailable, msgNoCopies)
		}
		if holds(live, lend.PatronID) {
			return entity.ConflictError(entity.ErrAlreadyCheckedOut, msgAlreadyOut)
		}
		return sc.InsertCheckout(ctx, lend.PatronID)
	})
	return s.finish(ctx, "checkout", lend, err, metrics.RecordCheckout)
}

// Return ends the loan of lend.ISBN to lend.PatronID. Returning a title the
// patron does not hold fails whether it was never lent or already returned.
func (s *Service) Return(ctx context.Context, lend entity.Lend) (err error) {
	ctx, span := tracing.StartSpan(ctx, "ledger.Return",
		attribute.String("isbn", lend.ISBN),
		attribute.String("patron_id", lend.PatronID))
	defer func() { tracing.EndSpan(span, err) }()

	err = s.UoW.WithinISBN(ctx, lend.ISBN, func(sc repository.ISBNScope) error {
		book, err := sc.Book(ctx)
		if err != nil {
			return err
		}
		if book == nil {
			return entity.ConflictError(entity.ErrUnknownBook, msgInvalidISBN)
		}
		deleted, err := sc.DeleteCheckout(ctx, lend.PatronID)
		if err != nil {
			return err
		}
		if !deleted {
			return entity.ConflictError(entity.ErrNotCheckedOut, msgNotCheckedOut)
		}
		return nil
	})
	return s.finish(ctx, "return", lend, err, metrics.RecordReturn)
}

// Availability reports copies owned, lent and free for isbn as one
// consistent snapshot.
func (s *Service) Availability(ctx context.Context, isbn string) (entity.Availability, error) {
	var av entity.Availability
	err := s.UoW.WithinISBN(ctx, isbn, func(sc repository.ISBNScope) error {
		book, err := sc.Book(ctx)
		if err != nil {
			return err
		}
		if book == nil {
			return entity.ConflictError(entity.ErrNotFound, "unknown isbn")
		}
		live, err := sc.Checkouts(ctx)
		if err != nil {
			return err
		}
		av = entity.Availability{
			ISBN:      isbn,
			NCopies:   book.NCopies,
			Out:       len(live),
			Available: book.NCopies - len(live),
		}
		return nil
	})
	if err != nil {
		return entity.Availability{}, entity.WrapDB(err)
	}
	return av, nil
}

// Loans lists the live checkouts of isbn, oldest first. It does not check
// that the book exists.
func (s *Service) Loans(ctx context.Context, isbn string) ([]*entity.Checkout, error) {
	list, err := s.Checkouts.ListByISBN(ctx, isbn)
	if err != nil {
		logging.FromContext(ctx).Error("list loans failed", slog.String("isbn", isbn), slog.Any("error", err))
		return nil, entity.WrapDB(err)
	}
	return list, nil
}

func (s *Service) finish(ctx context.Context, op string, lend entity.Lend, err error, record func(string)) error {
	log := logging.FromContext(ctx)
	if err == nil {
		record(metrics.ResultSuccess)
		log.Debug(op+" recorded", slog.String("isbn", lend.ISBN), slog.String("patron_id", lend.PatronID))
		return nil
	}
	err = entity.WrapDB(err)
	if entity.HasCode(err, entity.CodeDB) {
		record(metrics.ResultError)
		log.Error(op+" failed",
			slog.String("isbn", lend.ISBN),
			slog.String("patron_id", lend.PatronID),
			slog.Any("error", err))
		return err
	}
	record(metrics.ResultRejected)
	log.Info(op+" rejected",
		slog.String("isbn", lend.ISBN),
		slog.String("patron_id", lend.PatronID),
		slog.String("reason", err.Error()))
	return err
}

func holds(live []*entity.Checkout, patronID string) bool {
	return slices.ContainsFunc(live, func(c *entity.Checkout) bool { return c.PatronID == patronID })
}
