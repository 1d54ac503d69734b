package httpx

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countPassed(handler http.Handler, n int, prepare func(i int, r *http.Request)) int {
	passed := 0
	for i := 0; i < n; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		prepare(i, req)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code == http.StatusOK {
			passed++
		}
	}
	return passed
}

func TestRateLimit_IgnoresForwardedHeaderByDefault(t *testing.T) {
	rl := NewRateLimitMiddleware(0.001, 1, false)
	t.Cleanup(rl.Stop)

	passed := countPassed(rl.Middleware(okHandler()), 50, func(i int, r *http.Request) {
		r.RemoteAddr = "10.0.0.1:1234"
		r.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
	})

	assert.Equal(t, 1, passed)
}

func TestRateLimit_KeysOnHostNotPort(t *testing.T) {
	rl := NewRateLimitMiddleware(0.001, 1, false)
	t.Cleanup(rl.Stop)

	passed := countPassed(rl.Middleware(okHandler()), 10, func(i int, r *http.Request) {
		r.RemoteAddr = fmt.Sprintf("10.0.0.1:%d", 40000+i)
	})

	assert.Equal(t, 1, passed)
}

func TestRateLimit_TrustedProxyUsesLastHop(t *testing.T) {
	rl := NewRateLimitMiddleware(0.001, 1, true)
	t.Cleanup(rl.Stop)
	handler := rl.Middleware(okHandler())

	// A client rotating the spoofable first hop still shares one bucket.
	passed := countPassed(handler, 20, func(i int, r *http.Request) {
		r.RemoteAddr = "10.0.0.254:1234"
		r.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d, 203.0.113.7", i))
	})
	assert.Equal(t, 1, passed)

	// Distinct clients behind the same proxy get their own buckets.
	passed = countPassed(handler, 5, func(i int, r *http.Request) {
		r.RemoteAddr = "10.0.0.254:1234"
		r.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", 100+i))
	})
	assert.Equal(t, 5, passed)
}

func TestRateLimit_SweeperEvictsIdleClients(t *testing.T) {
	rl := newRateLimitMiddleware(100, 10, false, 10*time.Millisecond)
	t.Cleanup(rl.Stop)

	countPassed(rl.Middleware(okHandler()), 3, func(i int, r *http.Request) {
		r.RemoteAddr = fmt.Sprintf("10.0.0.%d:1234", i)
	})
	require.Equal(t, 3, rl.size())

	assert.Eventually(t, func() bool { return rl.size() == 0 }, time.Second, 5*time.Millisecond)
}

func TestRateLimit_StopEndsSweeper(t *testing.T) {
	rl := NewRateLimitMiddleware(1, 1, false)

	done := make(chan struct{})
	go func() {
		rl.Stop()
		rl.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}

	select {
	case <-rl.stopped:
	default:
		t.Fatal("sweeper still running after Stop")
	}
}
