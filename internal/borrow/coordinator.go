package borrow

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"libraryapi/internal/book"
	"libraryapi/internal/platform/reqctx"
	"libraryapi/internal/user"
)

// DefaultLimit is the number of books a user may hold at once.
const DefaultLimit = 3

const tracerName = "libraryapi/internal/borrow"

type Coordinator struct {
	books   RecordStore
	users   UserDirectory
	limit   int
	validID func(string) bool
	tracer  trace.Tracer
	logger  *slog.Logger
}

type Option func(*Coordinator)

// WithLimit sets the maximum number of books a user may hold. Values below 1
// are ignored.
func WithLimit(limit int) Option {
	return func(c *Coordinator) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// WithIDFormat replaces the identifier check applied to book and user ids.
func WithIDFormat(valid func(string) bool) Option {
	return func(c *Coordinator) {
		if valid != nil {
			c.validID = valid
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewCoordinator(books RecordStore, users UserDirectory, opts ...Option) *Coordinator {
	c := &Coordinator{
		books:   books,
		users:   users,
		limit:   DefaultLimit,
		validID: book.ValidID,
		tracer:  otel.Tracer(tracerName),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Limit reports the configured borrow limit.
func (c *Coordinator) Limit() int {
	return c.limit
}

// Borrow lends an available book to a user who is under the limit.
//
// The quota check and the claim are separate store calls, so a user racing
// their own requests can end up one book over the limit. The claim itself is
// a single conditional update; of many concurrent borrowers of one book
// exactly one succeeds.
func (c *Coordinator) Borrow(ctx context.Context, in BorrowInput) (out Outcome, err error) {
	ctx, span := c.tracer.Start(ctx, "borrow.Borrow", trace.WithAttributes(
		attribute.String("book.id", in.BookID),
		attribute.String("user.id", in.UserID),
	))
	defer func() { c.finish(ctx, span, "borrow", in.BookID, err) }()

	if !c.validID(in.BookID) || !c.validID(in.UserID) {
		return Outcome{}, ErrInvalidIdentifier
	}

	u, err := c.users.GetByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Outcome{}, ErrUserNotFound
		}
		return Outcome{}, storeFault(err)
	}

	held, err := c.books.CountWhere(ctx, book.HeldBy(in.UserID))
	if err != nil {
		return Outcome{}, storeFault(err)
	}
	span.SetAttributes(attribute.Int("user.held", held))
	if held >= c.limit {
		return Outcome{}, ErrQuotaExceeded
	}

	b, err := c.books.ConditionalUpdate(ctx, in.BookID, book.Claimable(), book.BorrowedTo(in.UserID))
	if err != nil {
		if errors.Is(err, book.ErrNotMatched) {
			return Outcome{}, ErrBookUnavailable
		}
		return Outcome{}, storeFault(err)
	}

	return Outcome{
		Message:  "Book borrowed by " + u.Name,
		Book:     b,
		Borrower: &Borrower{ID: u.ID, Name: u.Name, Email: u.Email},
	}, nil
}

// Return puts a borrowed book back on the shelf.
func (c *Coordinator) Return(ctx context.Context, in ReturnInput) (out Outcome, err error) {
	ctx, span := c.tracer.Start(ctx, "borrow.Return", trace.WithAttributes(
		attribute.String("book.id", in.BookID),
	))
	defer func() { c.finish(ctx, span, "return", in.BookID, err) }()

	if !c.validID(in.BookID) {
		return Outcome{}, ErrInvalidIdentifier
	}

	b, err := c.books.ConditionalUpdate(ctx, in.BookID, book.OnLoan(), book.Available())
	if err != nil {
		if errors.Is(err, book.ErrNotMatched) {
			return Outcome{}, ErrNotCurrentlyBorrowed
		}
		return Outcome{}, storeFault(err)
	}

	return Outcome{Message: "Book returned", Book: b}, nil
}

func (c *Coordinator) finish(ctx context.Context, span trace.Span, op, bookID string, err error) {
	defer span.End()

	rqID := reqctx.RequestID(ctx)
	if err == nil {
		span.SetStatus(codes.Ok, "")
		c.logger.Info(op+" completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("book_id", bookID))
		return
	}

	kind := KindOf(err)
	span.SetAttributes(attribute.String("borrow.error_kind", kind.String()))
	if kind == KindStoreUnavailable {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error(op+" failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("book_id", bookID), slog.String("err", err.Error()))
		return
	}
	c.logger.Info(op+" rejected", slog.String("rqID", rqID), slog.String("op", op), slog.String("book_id", bookID), slog.String("kind", kind.String()))
}
