// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "recipe:"
	defaultDialTimeout = 5 * time.Second
	scanBatch          = 100
)

// RedisOptions configures NewRedisCache. Zero values take defaults.
type RedisOptions struct {
	URL         string // redis://host:port/db
	Prefix      string
	DefaultTTL  time.Duration
	PoolSize    int
	DialTimeout time.Duration
}

// RedisCache keeps query entries in Redis so that console replicas share
// them. Every key is namespaced under Prefix.
type RedisCache struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
	closed     atomic.Bool
	counters
}

// NewRedisCache connects and pings the server before returning.
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	if opts.URL == "" {
		return nil, errors.New("redis URL is required")
	}
	ro, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	if opts.PoolSize > 0 {
		ro.PoolSize = opts.PoolSize
	}
	dial := opts.DialTimeout
	if dial <= 0 {
		dial = defaultDialTimeout
	}
	ro.DialTimeout = dial

	client := redis.NewClient(ro)
	pctx, cancel := context.WithTimeout(ctx, dial)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	c := &RedisCache{
		client:     client,
		prefix:     opts.Prefix,
		defaultTTL: opts.DefaultTTL,
	}
	if c.prefix == "" {
		c.prefix = defaultRedisPrefix
	}
	if c.defaultTTL <= 0 {
		c.defaultTTL = 5 * time.Minute
	}
	return c, nil
}

func (c *RedisCache) check() error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	return nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		c.misses.Add(1)
		return nil, ErrCacheMiss
	case err != nil:
		return nil, err
	}
	c.hits.Add(1)
	return val, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.check(); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return err
	}
	c.sets.Add(1)
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.check(); err != nil {
		return err
	}
	return c.client.Del(ctx, c.prefix+key).Err()
}

// DeleteByPrefix removes the keys under prefix within this cache's namespace.
func (c *RedisCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	if err := c.check(); err != nil {
		return err
	}
	return c.deleteMatching(ctx, c.prefix+escapeGlob(prefix)+"*")
}

// Clear empties the namespace and leaves other keys alone.
func (c *RedisCache) Clear(ctx context.Context) error {
	if err := c.check(); err != nil {
		return err
	}
	return c.deleteMatching(ctx, escapeGlob(c.prefix)+"*")
}

// deleteMatching walks the keyspace with SCAN so large namespaces do not
// stall the server the way KEYS would.
func (c *RedisCache) deleteMatching(ctx context.Context, pattern string) error {
	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return fmt.Errorf("scanning %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return fmt.Errorf("deleting %s: %w", pattern, err)
			}
			deleted += n
		}
		if cursor = next; cursor == 0 {
			break
		}
	}
	slog.DebugContext(ctx, "redis keys deleted", "pattern", pattern, "count", deleted)
	return nil
}

func (c *RedisCache) Has(ctx context.Context, key string) (bool, error) {
	if err := c.check(); err != nil {
		return false, err
	}
	n, err := c.client.Exists(ctx, c.prefix+key).Result()
	return n > 0, err
}

func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.check(); err != nil {
		return err
	}
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.client.Close()
}

// Stats returns the lookups counted by this process only.
func (c *RedisCache) Stats() Stats {
	return c.snapshot(0)
}

// escapeGlob quotes the characters SCAN MATCH treats as wildcards.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`*?[]\`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

var (
	_ Cacher        = (*RedisCache)(nil)
	_ StatsProvider = (*RedisCache)(nil)
)
