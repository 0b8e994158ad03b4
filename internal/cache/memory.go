// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultMaxSize bounds the memory cache when no size is configured.
const DefaultMaxSize = 10000

// MemoryCache is a bounded in-process store. Once MaxSize entries are held
// the least recently used one is evicted.
type MemoryCache struct {
	lru        *expirable.LRU[string, memoryEntry]
	defaultTTL time.Duration
	closed     atomic.Bool
	counters
}

// The LRU expires everything at defaultTTL; a shorter TTL passed to Set is
// checked on read against expiresAt.
type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCacheOptions configures NewMemoryCache. Zero values take defaults.
type MemoryCacheOptions struct {
	DefaultTTL time.Duration
	MaxSize    int
}

func NewMemoryCache(opts MemoryCacheOptions) *MemoryCache {
	size := opts.MaxSize
	if size <= 0 {
		size = DefaultMaxSize
	}
	ttl := opts.DefaultTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MemoryCache{
		lru:        expirable.NewLRU[string, memoryEntry](size, nil, ttl),
		defaultTTL: ttl,
	}
}

func (c *MemoryCache) check() error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	return nil
}

// Get returns a copy of the stored bytes.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	e, ok := c.lru.Get(key)
	if ok && time.Now().After(e.expiresAt) {
		c.lru.Remove(key)
		ok = false
	}
	if !ok {
		c.misses.Add(1)
		return nil, ErrCacheMiss
	}
	c.hits.Add(1)
	return slices.Clone(e.value), nil
}

// Set stores a copy of value. TTLs above the default are capped to it.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.check(); err != nil {
		return err
	}
	if ttl <= 0 || ttl > c.defaultTTL {
		ttl = c.defaultTTL
	}
	c.lru.Add(key, memoryEntry{
		value:     append([]byte(nil), value...),
		expiresAt: time.Now().Add(ttl),
	})
	c.sets.Add(1)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	if err := c.check(); err != nil {
		return err
	}
	c.lru.Remove(key)
	return nil
}

func (c *MemoryCache) DeleteByPrefix(_ context.Context, prefix string) error {
	if err := c.check(); err != nil {
		return err
	}
	for _, k := range c.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.lru.Remove(k)
		}
	}
	return nil
}

func (c *MemoryCache) Clear(context.Context) error {
	if err := c.check(); err != nil {
		return err
	}
	c.lru.Purge()
	return nil
}

// Has does not touch recency.
func (c *MemoryCache) Has(_ context.Context, key string) (bool, error) {
	if err := c.check(); err != nil {
		return false, err
	}
	e, ok := c.lru.Peek(key)
	return ok && time.Now().Before(e.expiresAt), nil
}

// Ping fails only once the cache is closed.
func (c *MemoryCache) Ping(context.Context) error {
	return c.check()
}

// Close drops all entries. Further calls return ErrCacheClosed.
func (c *MemoryCache) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		c.lru.Purge()
	}
	return nil
}

// Keys returns the keys currently held, oldest first.
func (c *MemoryCache) Keys() []string {
	return c.lru.Keys()
}

// Stats returns the counters and the number of live entries.
func (c *MemoryCache) Stats() Stats {
	return c.snapshot(c.lru.Len())
}

var (
	_ Cacher        = (*MemoryCache)(nil)
	_ StatsProvider = (*MemoryCache)(nil)
)
