package book

import (
	"errors"
	"time"

	"libraryapi/internal/platform/ident"
)

var (
	// ErrNotFound is returned when a book is not found.
	ErrNotFound = errors.New("book not found")
	// ErrAlreadyExists is returned when a book with the same title and author exists.
	ErrAlreadyExists = errors.New("book already exists")
	// ErrInvalidID is returned when an identifier is not a valid UUID.
	ErrInvalidID = errors.New("invalid book id")
	// ErrNotMatched is returned by ConditionalUpdate when no record matched the filter.
	ErrNotMatched = errors.New("no book matched the update condition")
)

// Book represents a catalog record and its borrow state.
//
// IsAvailable is true exactly when BorrowedBy is nil.
type Book struct {
	ID            string    `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Author        string    `json:"author" db:"author"`
	Genre         string    `json:"genre,omitempty" db:"genre"`
	PublishedYear int       `json:"published_year" db:"published_year"`
	IsAvailable   bool      `json:"is_available" db:"is_available"`
	BorrowedBy    *string   `json:"borrowed_by" db:"borrowed_by"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Draft holds the editable catalog fields of a book.
type Draft struct {
	Title         string
	Author        string
	Genre         string
	PublishedYear int
}

// Query defines filters and pagination for listing books.
type Query struct {
	Genre     string
	Author    string
	Available *bool
	Limit     int
	Offset    int
}

// ValidID reports whether raw is a canonical UUID string.
func ValidID(raw string) bool {
	return ident.Valid(raw)
}

// BorrowState is the pair (is_available, borrowed_by) written by a borrow or
// return transition. Build it with Available or BorrowedTo.
type BorrowState struct {
	borrowedBy string
	borrowed   bool
}

// Available is the state of a book on the shelf.
func Available() BorrowState {
	return BorrowState{}
}

// BorrowedTo is the state of a book held by userID.
func BorrowedTo(userID string) BorrowState {
	return BorrowState{borrowedBy: userID, borrowed: true}
}

// IsAvailable reports the is_available value of the state.
func (s BorrowState) IsAvailable() bool {
	return !s.borrowed
}

// BorrowedBy returns the borrower id, or nil for an available book.
func (s BorrowState) BorrowedBy() *string {
	if !s.borrowed {
		return nil
	}
	id := s.borrowedBy
	return &id
}

// Filter is a predicate over the borrow fields of a book. Zero fields match
// everything.
type Filter struct {
	Available  *bool
	BorrowedBy string
	Unborrowed bool
}

// Claimable matches books that can be borrowed.
func Claimable() Filter {
	available := true
	return Filter{Available: &available, Unborrowed: true}
}

// OnLoan matches books that are currently borrowed by anyone.
func OnLoan() Filter {
	available := false
	return Filter{Available: &available}
}

// HeldBy matches books currently borrowed by userID.
func HeldBy(userID string) Filter {
	return Filter{BorrowedBy: userID}
}

// Matches evaluates the filter against b.
func (f Filter) Matches(b Book) bool {
	if f.Available != nil && b.IsAvailable != *f.Available {
		return false
	}
	if f.BorrowedBy != "" && (b.BorrowedBy == nil || *b.BorrowedBy != f.BorrowedBy) {
		return false
	}
	if f.Unborrowed && b.BorrowedBy != nil {
		return false
	}
	return true
}
