package borrow

import (
	"context"

	"libraryapi/internal/book"
	"libraryapi/internal/user"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=borrow

// RecordStore is the slice of the book repository the coordinator needs.
// ConditionalUpdate returns book.ErrNotMatched when the filter matched nothing.
type RecordStore interface {
	ConditionalUpdate(ctx context.Context, id string, match book.Filter, state book.BorrowState) (book.Book, error)
	CountWhere(ctx context.Context, match book.Filter) (int, error)
}

// UserDirectory resolves borrowers. GetByID returns user.ErrNotFound for
// unknown ids.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}
