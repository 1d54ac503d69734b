package main

import (
	"context"
	"net/http"
	"time"

	"libraryapi/internal/book"
	"libraryapi/internal/borrow"
	"libraryapi/internal/config"
	"libraryapi/internal/httpx"
	"libraryapi/internal/platform/crypto"
	"libraryapi/internal/user"
)

type handlers struct {
	books  *book.HTTPHandler
	users  *user.HTTPHandler
	borrow *borrow.HTTPHandler
	ready  func(ctx context.Context) error
}

func newRouter(cfg *config.Config, h handlers, rateLimiter *httpx.RateLimitMiddleware) http.Handler {
	router := http.NewServeMux()
	admin := httpx.RequireRole(cfg.AuthSecret, crypto.RoleAdmin)

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := h.ready(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("GET /api/v1/books", h.books.List)
	router.Handle("POST /api/v1/books", admin(http.HandlerFunc(h.books.Create)))
	router.HandleFunc("GET /api/v1/books/{bookId}", h.books.Get)
	router.Handle("PUT /api/v1/books/{bookId}", admin(http.HandlerFunc(h.books.Update)))
	router.Handle("DELETE /api/v1/books/{bookId}", admin(http.HandlerFunc(h.books.Delete)))

	router.HandleFunc("POST /api/v1/books/{bookId}/borrow/{userId}", h.borrow.Borrow)
	router.HandleFunc("POST /api/v1/books/{bookId}/return", h.borrow.Return)

	router.HandleFunc("GET /api/v1/users", h.users.List)
	router.Handle("POST /api/v1/users", admin(http.HandlerFunc(h.users.Create)))
	router.HandleFunc("GET /api/v1/users/{userId}", h.users.Get)
	router.HandleFunc("GET /api/v1/users/{userId}/books", h.books.ListHeldBy)

	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.RecoveryMiddleware,
		httpx.AccessLogMiddleware,
		httpx.SecurityHeadersMiddleware(cfg.HTTP.EnableHSTS),
		httpx.CORSMiddleware(cfg.HTTP.CORSOrigins),
		rateLimiter.Middleware,
		httpx.RequestSizeLimitMiddleware(cfg.HTTP.MaxBodyBytes),
	)
}
