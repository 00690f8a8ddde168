package postgres

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
WHERE isbn = $1
ORDER BY checked_out_at ASC`
	rows, err := repo.db.QueryContext(ctx, query, isbn)
	if err != nil {
		return nil, fmt.Errorf("ListByISBN: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.Checkout
	for rows.Next() {
		var c entity.Checkout
		if err := rows.Scan(&c.ISBN, &c.PatronID); err != nil {
			return nil, fmt.Errorf("ListByISBN: Scan: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (repo *CheckoutRepo) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM checkouts`
	var n int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}
