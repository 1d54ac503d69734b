// Package storage opens the configured backend and exposes its repositories.
package storage

import (
	"context"
	"fmt"

	"libraryapi/internal/book"
	"libraryapi/internal/config"
	"libraryapi/internal/platform/postgres"
	"libraryapi/internal/platform/sqlite"
	"libraryapi/internal/user"
)

type Stores struct {
	Driver string
	Books  book.Repository
	Users  user.Repository

	ping  func(ctx context.Context) error
	close func()
}

// Ping reports whether the backend is reachable.
func (s *Stores) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

func Open(ctx context.Context, cfg config.Store) (*Stores, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := postgres.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Driver: cfg.Driver,
			Books:  book.NewPostgresRepo(pool, cfg.Timeout),
			Users:  user.NewPostgresRepo(pool, cfg.Timeout),
			ping:   pool.Ping,
			close:  pool.Close,
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Driver: cfg.Driver,
			Books:  book.NewSQLiteRepo(db, cfg.Timeout),
			Users:  user.NewSQLiteRepo(db, cfg.Timeout),
			ping:   db.PingContext,
			close:  func() { _ = db.Close() },
		}, nil

	case config.DriverMemory:
		return &Stores{
			Driver: cfg.Driver,
			Books:  book.NewMemoryRepo(),
			Users:  user.NewMemoryRepo(),
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
