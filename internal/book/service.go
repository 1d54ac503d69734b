package book

import (
	"context"
)

// Service provides catalog operations on books. Borrow state is not
// editable here; see package borrow.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns a page of books matching the query and the total match count.
func (s *Service) List(ctx context.Context, q Query) ([]Book, int, error) {
	return s.repo.List(ctx, q)
}

// Get returns a book by its id.
func (s *Service) Get(ctx context.Context, id string) (Book, error) {
	if !ValidID(id) {
		return Book{}, ErrInvalidID
	}
	return s.repo.GetByID(ctx, id)
}

// Create adds a new, available book to the catalog.
func (s *Service) Create(ctx context.Context, d Draft) (Book, error) {
	return s.repo.Create(ctx, d)
}

// Update replaces the catalog fields of a book.
func (s *Service) Update(ctx context.Context, id string, d Draft) (Book, error) {
	if !ValidID(id) {
		return Book{}, ErrInvalidID
	}
	return s.repo.Update(ctx, id, d)
}

// Delete removes a book and returns the removed record.
func (s *Service) Delete(ctx context.Context, id string) (Book, error) {
	if !ValidID(id) {
		return Book{}, ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

// HeldBy returns the books currently borrowed by userID.
func (s *Service) HeldBy(ctx context.Context, userID string) ([]Book, error) {
	if !ValidID(userID) {
		return nil, ErrInvalidID
	}
	return s.repo.ListWhere(ctx, HeldBy(userID))
}
