package repository

import (
	"context"

	"lending-library/internal/domain/entity"
	"lending-library/internal/pkg/search"
)

// BookSearch contains a parsed full-text query and the page to return.
type BookSearch struct {
	Query  search.Query
	Offset int  // Number of leading matches to skip
	Limit  *int // Optional: nil returns every match after Offset
}

type BookRepository interface {
	// Get returns (nil, nil) when no book has the isbn.
	Get(ctx context.Context, isbn string) (*entity.Book, error)
	// Search returns books matching the query over title and authors,
	// ordered by title ascending.
	Search(ctx context.Context, q BookSearch) ([]*entity.Book, error)
	Count(ctx context.Context) (int64, error)
}
