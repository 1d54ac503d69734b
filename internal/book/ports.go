package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book data storage.
//
// ConditionalUpdate must evaluate the filter and write the new state as one
// atomic step: of any number of concurrent calls whose filter excludes the
// state written by the others, at most one succeeds.
type Repository interface {
	List(ctx context.Context, q Query) ([]Book, int, error)
	GetByID(ctx context.Context, id string) (Book, error)
	Create(ctx context.Context, d Draft) (Book, error)
	Update(ctx context.Context, id string, d Draft) (Book, error)
	Delete(ctx context.Context, id string) (Book, error)
	ConditionalUpdate(ctx context.Context, id string, match Filter, state BorrowState) (Book, error)
	CountWhere(ctx context.Context, match Filter) (int, error)
	ListWhere(ctx context.Context, match Filter) ([]Book, error)
}
