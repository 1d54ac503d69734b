package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"libraryapi/internal/platform/ident"
)

const usersTable = "users"

var (
	sqliteDialect = goqu.Dialect("sqlite3")
	sqliteColumns = []any{"id", "name", "email", "created_at", "updated_at"}
)

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

func (r *SQLiteRepo) Create(ctx context.Context, user *User) error {
	now := time.Now().UTC()
	id := ident.New()

	query, args, err := sqliteDialect.Insert(usersTable).Rows(goqu.Record{
		"id":         id,
		"name":       user.Name,
		"email":      user.Email,
		"created_at": now,
		"updated_at": now,
	}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if _, err := r.db.ExecContext(timeoutCtx, query, args...); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrAlreadyExists
		}
		return err
	}

	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *SQLiteRepo) GetByID(ctx context.Context, id string) (User, error) {
	query, args, err := sqliteDialect.From(usersTable).
		Select(sqliteColumns...).
		Where(goqu.C("id").Eq(id)).
		Limit(1).
		Prepared(true).ToSQL()
	if err != nil {
		return User{}, fmt.Errorf("build get query: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var u User
	if err := r.db.GetContext(timeoutCtx, &u, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *SQLiteRepo) List(ctx context.Context, limit, offset int) ([]User, int, error) {
	countSQL, _, err := sqliteDialect.From(usersTable).Select(goqu.COUNT(goqu.Star())).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	listSQL, listArgs, err := sqliteDialect.From(usersTable).
		Select(sqliteColumns...).
		Order(goqu.C("name").Asc(), goqu.C("id").Asc()).
		Limit(uint(limit)).
		Offset(uint(offset)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.GetContext(timeoutCtx, &total, countSQL); err != nil {
		return nil, 0, err
	}
	users := []User{}
	if err := r.db.SelectContext(timeoutCtx, &users, listSQL, listArgs...); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
