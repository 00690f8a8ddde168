package sqlite

import (
	"context"
	"fmt"

	"lending-library/internal/domain/entity"
	"lending-library/internal/repository"
)

type CheckoutRepo struct{ db DB }

func NewCheckoutRepo(db DB) repository.CheckoutRepository {
	return &CheckoutRepo{db: db}
}

func (repo *CheckoutRepo) ListByISBN(ctx context.Context, isbn string) ([]*entity.Checkout, error) {
	const query = `
SELECT isbn, patron_id
FROM checkouts
WHERE isbn = ?
ORDER BY checked_out_at ASC, rowid ASC`
	rows, err := repo.db.QueryContext(ctx, query, isbn)
	if err != nil {
		return nil, fmt.Errorf("ListByISBN: %w", err)
	}
	return collectCheckouts(rows)
}

func (repo *CheckoutRepo) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM checkouts`
	var n int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}
