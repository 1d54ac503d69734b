package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"libraryapi/internal/platform/reqctx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var errCacheMiss = errors.New("cache miss")

// Cache stores user records by id.
type Cache interface {
	Get(ctx context.Context, id string) (User, error)
	Set(ctx context.Context, u User, ttl time.Duration) error
}

type RedisCache struct {
	redis *redis.Client
}

func NewRedisCache(redisClient *redis.Client) *RedisCache {
	return &RedisCache{redis: redisClient}
}

func (c *RedisCache) key(id string) string {
	return fmt.Sprintf("user:%s", id)
}

func (c *RedisCache) Get(ctx context.Context, id string) (User, error) {
	res, err := c.redis.Get(ctx, c.key(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return User{}, errCacheMiss
		}
		return User{}, err
	}

	var u User
	if err := json.Unmarshal([]byte(res), &u); err != nil {
		return User{}, fmt.Errorf("decode cached user: %w", err)
	}
	return u, nil
}

func (c *RedisCache) Set(ctx context.Context, u User, ttl time.Duration) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return c.redis.Set(ctx, c.key(u.ID), data, ttl).Err()
}

// CachedDirectory resolves users through a read-through cache. Cache faults
// are logged and fall through to the repository; missing users are not
// cached.
type CachedDirectory struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
}

func NewCachedDirectory(repo Repository, cache Cache, ttl time.Duration) *CachedDirectory {
	return &CachedDirectory{repo: repo, cache: cache, ttl: ttl}
}

func (d *CachedDirectory) GetByID(ctx context.Context, id string) (User, error) {
	rqID := reqctx.RequestID(ctx)

	u, err := d.cache.Get(ctx, id)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, errCacheMiss) {
		slog.Warn("user cache get failed", slog.String("rqID", rqID), slog.String("id", id), slog.String("err", err.Error()))
	}

	u, err = d.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	if err := d.cache.Set(ctx, u, d.ttl); err != nil {
		slog.Warn("user cache set failed", slog.String("rqID", rqID), slog.String("id", id), slog.String("err", err.Error()))
	}
	return u, nil
}
