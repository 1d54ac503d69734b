package book

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"libraryapi/internal/platform/sqlite"
)

func TestSQLiteRepo(t *testing.T) {
	borrowers := []string{testUserID, "8c3e5b0a-1d2f-4e6a-9b7c-0d1e2f3a4b5c"}

	runRepositoryContract(t, func(t *testing.T) Repository {
		ctx := context.Background()
		db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "library.db"))
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		now := time.Now().UTC()
		for i, id := range borrowers {
			_, err := db.ExecContext(ctx,
				`INSERT INTO users (id, name, email, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
				id, "Reader", "reader"+string(rune('a'+i))+"@example.com", now, now)
			require.NoError(t, err)
		}
		return NewSQLiteRepo(db, 3*time.Second)
	}, borrowers)
}
