package book

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"libraryapi/internal/platform/ident"
)

const booksTable = "books"

var (
	sqliteDialect = goqu.Dialect("sqlite3")
	sqliteColumns = []any{
		"id", "title", "author", "genre", "published_year",
		"is_available", "borrowed_by", "created_at", "updated_at",
	}
)

// SQLiteRepo stores books in SQLite. Writes are serialized by the database
// writer lock, so a single UPDATE carrying the filter decides racing claims.
type SQLiteRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewSQLiteRepo(db *sqlx.DB, timeout time.Duration) *SQLiteRepo {
	return &SQLiteRepo{db: db, timeout: timeout}
}

func (r *SQLiteRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func filterExpressions(f Filter) []exp.Expression {
	var exprs []exp.Expression
	if f.Available != nil {
		exprs = append(exprs, goqu.C("is_available").Eq(*f.Available))
	}
	if f.BorrowedBy != "" {
		exprs = append(exprs, goqu.C("borrowed_by").Eq(f.BorrowedBy))
	}
	if f.Unborrowed {
		exprs = append(exprs, goqu.C("borrowed_by").IsNull())
	}
	return exprs
}

func queryExpressions(q Query) []exp.Expression {
	exprs := filterExpressions(Filter{Available: q.Available})
	if q.Genre != "" {
		exprs = append(exprs, goqu.C("genre").Eq(q.Genre))
	}
	if q.Author != "" {
		exprs = append(exprs, goqu.C("author").Like("%"+q.Author+"%"))
	}
	return exprs
}

func (r *SQLiteRepo) List(ctx context.Context, q Query) ([]Book, int, error) {
	where := queryExpressions(q)

	countSQL, countArgs, err := sqliteDialect.From(booksTable).
		Select(goqu.COUNT(goqu.Star())).
		Where(where...).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.GetContext(timeoutCtx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, err
	}

	ds := sqliteDialect.From(booksTable).
		Select(sqliteColumns...).
		Where(where...).
		Order(goqu.C("title").Asc(), goqu.C("id").Asc())
	if q.Limit > 0 {
		ds = ds.Limit(uint(q.Limit))
	}
	if q.Offset > 0 {
		ds = ds.Offset(uint(q.Offset))
	}
	dataSQL, dataArgs, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	out := []Book{}
	if err := r.db.SelectContext(timeoutCtx, &out, dataSQL, dataArgs...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *SQLiteRepo) getByID(ctx context.Context, q sqlx.QueryerContext, id string) (Book, error) {
	query, args, err := sqliteDialect.From(booksTable).
		Select(sqliteColumns...).
		Where(goqu.C("id").Eq(id)).
		Limit(1).
		Prepared(true).ToSQL()
	if err != nil {
		return Book{}, fmt.Errorf("build get query: %w", err)
	}

	var b Book
	if err := sqlx.GetContext(ctx, q, &b, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *SQLiteRepo) GetByID(ctx context.Context, id string) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.getByID(timeoutCtx, r.db, id)
}

func (r *SQLiteRepo) Create(ctx context.Context, d Draft) (Book, error) {
	now := time.Now().UTC()
	b := Book{
		ID:            ident.New(),
		Title:         d.Title,
		Author:        d.Author,
		Genre:         d.Genre,
		PublishedYear: d.PublishedYear,
		IsAvailable:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	query, args, err := sqliteDialect.Insert(booksTable).Rows(goqu.Record{
		"id":             b.ID,
		"title":          b.Title,
		"author":         b.Author,
		"genre":          b.Genre,
		"published_year": b.PublishedYear,
		"is_available":   true,
		"borrowed_by":    nil,
		"created_at":     b.CreatedAt,
		"updated_at":     b.UpdatedAt,
	}).Prepared(true).ToSQL()
	if err != nil {
		return Book{}, fmt.Errorf("build insert query: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if _, err := r.db.ExecContext(timeoutCtx, query, args...); err != nil {
		if isSQLiteUnique(err) {
			return Book{}, ErrAlreadyExists
		}
		return Book{}, err
	}
	return b, nil
}

func (r *SQLiteRepo) Update(ctx context.Context, id string, d Draft) (Book, error) {
	query, args, err := sqliteDialect.Update(booksTable).Set(goqu.Record{
		"title":          d.Title,
		"author":         d.Author,
		"genre":          d.Genre,
		"published_year": d.PublishedYear,
		"updated_at":     time.Now().UTC(),
	}).Where(goqu.C("id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return Book{}, fmt.Errorf("build update query: %w", err)
	}

	b, err := r.execThenGet(ctx, id, query, args, ErrNotFound)
	if err != nil && isSQLiteUnique(err) {
		return Book{}, ErrAlreadyExists
	}
	return b, err
}

func (r *SQLiteRepo) Delete(ctx context.Context, id string) (Book, error) {
	query, args, err := sqliteDialect.Delete(booksTable).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return Book{}, fmt.Errorf("build delete query: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTxx(timeoutCtx, nil)
	if err != nil {
		return Book{}, err
	}
	defer func() { _ = tx.Rollback() }()

	b, err := r.getByID(timeoutCtx, tx, id)
	if err != nil {
		return Book{}, err
	}
	if _, err := tx.ExecContext(timeoutCtx, query, args...); err != nil {
		return Book{}, err
	}
	return b, tx.Commit()
}

// ConditionalUpdate issues one UPDATE with the filter in its WHERE clause and
// reads the row back inside the same transaction.
func (r *SQLiteRepo) ConditionalUpdate(ctx context.Context, id string, match Filter, state BorrowState) (Book, error) {
	var borrowedBy any
	if p := state.BorrowedBy(); p != nil {
		borrowedBy = *p
	}

	where := append([]exp.Expression{goqu.C("id").Eq(id)}, filterExpressions(match)...)
	query, args, err := sqliteDialect.Update(booksTable).Set(goqu.Record{
		"is_available": state.IsAvailable(),
		"borrowed_by":  borrowedBy,
		"updated_at":   time.Now().UTC(),
	}).Where(where...).Prepared(true).ToSQL()
	if err != nil {
		return Book{}, fmt.Errorf("build conditional update: %w", err)
	}

	return r.execThenGet(ctx, id, query, args, ErrNotMatched)
}

// execThenGet runs a single-row write and returns the row afterwards, or
// notMatched when the write touched nothing.
func (r *SQLiteRepo) execThenGet(ctx context.Context, id, query string, args []any, notMatched error) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTxx(timeoutCtx, nil)
	if err != nil {
		return Book{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(timeoutCtx, query, args...)
	if err != nil {
		return Book{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Book{}, err
	}
	if n == 0 {
		return Book{}, notMatched
	}

	b, err := r.getByID(timeoutCtx, tx, id)
	if err != nil {
		return Book{}, err
	}
	return b, tx.Commit()
}

func (r *SQLiteRepo) CountWhere(ctx context.Context, match Filter) (int, error) {
	query, args, err := sqliteDialect.From(booksTable).
		Select(goqu.COUNT(goqu.Star())).
		Where(filterExpressions(match)...).
		Prepared(true).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	err = r.db.GetContext(timeoutCtx, &total, query, args...)
	return total, err
}

func (r *SQLiteRepo) ListWhere(ctx context.Context, match Filter) ([]Book, error) {
	query, args, err := sqliteDialect.From(booksTable).
		Select(sqliteColumns...).
		Where(filterExpressions(match)...).
		Order(goqu.C("title").Asc(), goqu.C("id").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	out := []Book{}
	if err := r.db.SelectContext(timeoutCtx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func isSQLiteUnique(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
