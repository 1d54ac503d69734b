package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"libraryapi/internal/book"
	"libraryapi/internal/borrow"
	"libraryapi/internal/config"
	"libraryapi/internal/httpx"
	"libraryapi/internal/platform/redisclient"
	"libraryapi/internal/storage"
	"libraryapi/internal/user"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := storage.Open(ctx, cfg.Store)
	if err != nil {
		slog.Error("cannot open store", slog.String("driver", cfg.Store.Driver), slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer stores.Close()
	slog.Info("store connection OK", slog.String("driver", stores.Driver))

	var directory borrow.UserDirectory = stores.Users
	if cfg.Redis.Addr != "" {
		rdb, err := redisclient.Open(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Error("cannot connect to redis", slog.String("err", err.Error()))
			os.Exit(1)
		}
		defer rdb.Close()
		directory = user.NewCachedDirectory(stores.Users, user.NewRedisCache(rdb), cfg.Redis.UserTTL)
		slog.Info("user cache enabled", slog.String("addr", cfg.Redis.Addr), slog.Duration("ttl", cfg.Redis.UserTTL))
	}

	coordinator := borrow.NewCoordinator(stores.Books, directory,
		borrow.WithLimit(cfg.BorrowLimit),
		borrow.WithLogger(slog.Default()),
	)

	if cfg.AuthSecret == "" {
		slog.Warn("AUTH_SECRET is empty, admin routes are unprotected")
	}

	rateLimiter := httpx.NewRateLimitMiddleware(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst, cfg.HTTP.TrustProxy)
	defer rateLimiter.Stop()

	router := newRouter(cfg, handlers{
		books:  book.NewHTTPHandler(book.NewService(stores.Books)),
		users:  user.NewHTTPHandler(user.NewService(stores.Users)),
		borrow: borrow.NewHTTPHandler(coordinator),
		ready:  stores.Ping,
	}, rateLimiter)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("starting server", slog.String("addr", cfg.Addr), slog.Int("borrow_limit", coordinator.Limit()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.String("err", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", slog.String("err", err.Error()))
	}
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}
