// Package cache is a time-windowed response cache on Redis. It is a pure
// performance hint: a nil *Cache is valid and every lookup just misses
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"tokenlens/internal/config"
	"tokenlens/internal/metrics"
)

type Cache struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

// New connects and pings. Call only when the cache is enabled in config
func New(ctx context.Context, cfg *config.CacheConfig) (*Cache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Redis.Addr,
		Username:     cfg.Redis.Username,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 60 * time.Second
	}

	prefix := cfg.Redis.Prefix
	if prefix == "" {
		prefix = "tokenlens"
	}

	return &Cache{rdb: rdb, prefix: prefix, ttl: ttl}, nil
}

// Client exposes the underlying connection so middleware can share it for
// rate-limit state. Nil receiver yields nil
func (c *Cache) Client() *goredis.Client {
	if c == nil {
		return nil
	}
	return c.rdb
}

func (c *Cache) key(signature string) string {
	return c.prefix + ":resp:" + signature
}

// Get unmarshals a cached payload into out. Returns false on miss or any
// Redis/decode problem — the caller recomputes either way
func (c *Cache) Get(ctx context.Context, signature string, out any) bool {
	if c == nil {
		return false
	}

	b, err := c.rdb.Get(ctx, c.key(signature)).Bytes()
	if errors.Is(err, goredis.Nil) {
		metrics.CacheHits.WithLabelValues("miss").Inc()
		return false
	}
	if err != nil {
		metrics.CacheHits.WithLabelValues("error").Inc()
		return false
	}
	if err := json.Unmarshal(b, out); err != nil {
		metrics.CacheHits.WithLabelValues("error").Inc()
		return false
	}

	metrics.CacheHits.WithLabelValues("hit").Inc()
	return true
}

// Set stores a payload under the request signature. Failures are swallowed;
// caching is never required for correctness
func (c *Cache) Set(ctx context.Context, signature string, v any) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, c.key(signature), b, c.ttl).Err()
}

func (c *Cache) Health(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
