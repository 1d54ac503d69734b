package book

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

const bookColumns = `id, title, author, genre, published_year, is_available, borrowed_by, created_at, updated_at`

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.Genre, &b.PublishedYear,
		&b.IsAvailable, &b.BorrowedBy, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

// filterClauses renders f as SQL conditions numbered from argn.
func filterClauses(f Filter, argn int) ([]string, []any, int) {
	clauses := []string{}
	args := []any{}

	if f.Available != nil {
		clauses = append(clauses, fmt.Sprintf("is_available = $%d", argn))
		args = append(args, *f.Available)
		argn++
	}
	if f.BorrowedBy != "" {
		clauses = append(clauses, fmt.Sprintf("borrowed_by = $%d", argn))
		args = append(args, f.BorrowedBy)
		argn++
	}
	if f.Unborrowed {
		clauses = append(clauses, "borrowed_by IS NULL")
	}
	return clauses, args, argn
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Book, int, error) {
	clauses, args, argn := filterClauses(Filter{Available: q.Available}, 1)
	clauses = append([]string{"1=1"}, clauses...)

	if q.Genre != "" {
		clauses = append(clauses, fmt.Sprintf("genre = $%d", argn))
		args = append(args, q.Genre)
		argn++
	}
	if q.Author != "" {
		clauses = append(clauses, fmt.Sprintf("author ILIKE $%d", argn))
		args = append(args, "%"+q.Author+"%")
		argn++
	}

	where := "WHERE " + strings.Join(clauses, " AND ")

	var total int
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, "SELECT COUNT(*) FROM books "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := fmt.Sprintf(`
		SELECT %s
		FROM books
		%s
		ORDER BY title ASC, id ASC
		LIMIT $%d OFFSET $%d`,
		bookColumns, where, argn, argn+1)

	// LIMIT NULL means no limit.
	var limit any
	if q.Limit > 0 {
		limit = q.Limit
	}
	argsWithPage := append([]any{}, args...)
	argsWithPage = append(argsWithPage, limit, q.Offset)
	timeoutCtx2, cancel2 := r.withTimeout(ctx)
	defer cancel2()
	rows, err := r.db.Query(timeoutCtx2, dataSQL, argsWithPage...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Book, error) {
	const query = `SELECT ` + bookColumns + ` FROM books WHERE id = $1 LIMIT 1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) Create(ctx context.Context, d Draft) (Book, error) {
	const query = `
		INSERT INTO books (id, title, author, genre, published_year, is_available, borrowed_by, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, true, NULL, NOW(), NOW())
		RETURNING ` + bookColumns

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, query, d.Title, d.Author, d.Genre, d.PublishedYear))
	if err != nil {
		if isUniqueViolation(err) {
			return Book{}, ErrAlreadyExists
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) Update(ctx context.Context, id string, d Draft) (Book, error) {
	const query = `
		UPDATE books
		SET title = $2, author = $3, genre = $4, published_year = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + bookColumns

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, query, id, d.Title, d.Author, d.Genre, d.PublishedYear))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		if isUniqueViolation(err) {
			return Book{}, ErrAlreadyExists
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) (Book, error) {
	const query = `DELETE FROM books WHERE id = $1 RETURNING ` + bookColumns

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

// ConditionalUpdate runs a single UPDATE whose WHERE clause carries the
// filter, so row-level locking in Postgres decides racing writers.
func (r *PostgresRepo) ConditionalUpdate(ctx context.Context, id string, match Filter, state BorrowState) (Book, error) {
	clauses, args, argn := filterClauses(match, 2)
	clauses = append([]string{"id = $1"}, clauses...)

	query := fmt.Sprintf(`
		UPDATE books
		SET is_available = $%d, borrowed_by = $%d, updated_at = NOW()
		WHERE %s
		RETURNING %s`,
		argn, argn+1, strings.Join(clauses, " AND "), bookColumns)

	allArgs := append([]any{id}, args...)
	allArgs = append(allArgs, state.IsAvailable(), state.BorrowedBy())

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, query, allArgs...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotMatched
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) CountWhere(ctx context.Context, match Filter) (int, error) {
	clauses, args, _ := filterClauses(match, 1)
	clauses = append([]string{"1=1"}, clauses...)

	var total int
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, "SELECT COUNT(*) FROM books WHERE "+strings.Join(clauses, " AND "), args...).Scan(&total)
	return total, err
}

func (r *PostgresRepo) ListWhere(ctx context.Context, match Filter) ([]Book, error) {
	clauses, args, _ := filterClauses(match, 1)
	clauses = append([]string{"1=1"}, clauses...)

	query := fmt.Sprintf(`SELECT %s FROM books WHERE %s ORDER BY title ASC, id ASC`,
		bookColumns, strings.Join(clauses, " AND "))

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
