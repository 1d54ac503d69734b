// Package borrow coordinates borrowing and returning books. It owns the
// borrow state machine and the error taxonomy; atomicity is delegated to the
// record store's conditional update.
package borrow

import (
	"errors"

	"libraryapi/internal/book"
)

var (
	ErrInvalidIdentifier    = errors.New("invalid book or user identifier")
	ErrUserNotFound         = errors.New("user not found")
	ErrQuotaExceeded        = errors.New("user has reached the borrow limit")
	ErrBookUnavailable      = errors.New("book is already borrowed or does not exist")
	ErrNotCurrentlyBorrowed = errors.New("book is not currently borrowed or does not exist")
	ErrStoreUnavailable     = errors.New("store unavailable")
)

// Kind classifies coordinator errors.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidIdentifier
	KindUserNotFound
	KindQuotaExceeded
	KindBookUnavailable
	KindNotCurrentlyBorrowed
	KindStoreUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindInvalidIdentifier:
		return "InvalidIdentifier"
	case KindUserNotFound:
		return "UserNotFound"
	case KindQuotaExceeded:
		return "QuotaExceeded"
	case KindBookUnavailable:
		return "BookUnavailable"
	case KindNotCurrentlyBorrowed:
		return "NotCurrentlyBorrowed"
	case KindStoreUnavailable:
		return "StoreUnavailable"
	default:
		return "Unknown"
	}
}

// KindOf returns the kind of err, or KindUnknown for errors the coordinator
// did not produce.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrInvalidIdentifier):
		return KindInvalidIdentifier
	case errors.Is(err, ErrUserNotFound):
		return KindUserNotFound
	case errors.Is(err, ErrQuotaExceeded):
		return KindQuotaExceeded
	case errors.Is(err, ErrBookUnavailable):
		return KindBookUnavailable
	case errors.Is(err, ErrNotCurrentlyBorrowed):
		return KindNotCurrentlyBorrowed
	case errors.Is(err, ErrStoreUnavailable):
		return KindStoreUnavailable
	default:
		return KindUnknown
	}
}

// storeError marks a failure of the record store or user directory. It
// matches ErrStoreUnavailable and unwraps to the original cause.
type storeError struct {
	err error
}

func (e *storeError) Error() string {
	return ErrStoreUnavailable.Error() + ": " + e.err.Error()
}

func (e *storeError) Unwrap() error {
	return e.err
}

func (e *storeError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

func storeFault(err error) error {
	return &storeError{err: err}
}

type BorrowInput struct {
	BookID string
	UserID string
}

type ReturnInput struct {
	BookID string
}

// Borrower is the public view of the user holding a book.
type Borrower struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Outcome is the result of a successful transition.
type Outcome struct {
	Message  string    `json:"message"`
	Book     book.Book `json:"book"`
	Borrower *Borrower `json:"borrower,omitempty"`
}
