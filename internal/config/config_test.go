package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 3, cfg.BorrowLimit)
	assert.Equal(t, 3*time.Second, cfg.Store.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Redis.UserTTL)
	assert.Equal(t, int64(1<<20), cfg.HTTP.MaxBodyBytes)
	assert.Empty(t, cfg.AuthSecret)
	assert.Empty(t, cfg.HTTP.CORSOrigins)
	assert.False(t, cfg.HTTP.TrustProxy)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/lib.db")
	t.Setenv("BORROW_LIMIT", "5")
	t.Setenv("DB_TIMEOUT", "750ms")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/lib.db", cfg.Store.SQLitePath)
	assert.Equal(t, 5, cfg.BorrowLimit)
	assert.Equal(t, 750*time.Millisecond, cfg.Store.Timeout)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.True(t, cfg.HTTP.TrustProxy)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mongo")
		_, err := Load()
		assert.ErrorContains(t, err, "STORE_DRIVER")
	})

	t.Run("limit", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "memory")
		t.Setenv("BORROW_LIMIT", "0")
		_, err := Load()
		assert.ErrorContains(t, err, "BORROW_LIMIT")
	})

	t.Run("not a number", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "memory")
		t.Setenv("BORROW_LIMIT", "three")
		_, err := Load()
		assert.Error(t, err)
	})
}
