package repository

import (
	"context"

	"lending-library/internal/domain/entity"
)

type CheckoutRepository interface {
	// ListByISBN returns the live checkouts of isbn, oldest first.
	ListByISBN(ctx context.Context, isbn string) ([]*entity.Checkout, error)
	Count(ctx context.Context) (int64, error)
}
