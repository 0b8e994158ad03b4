// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache is the byte store under the query client. Keys are query
// keys joined with "/", so invalidating a query prefix is a key-prefix
// delete on the store.
package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

var (
	ErrCacheMiss   = errors.New("cache: miss")
	ErrCacheClosed = errors.New("cache: closed")
)

// Cacher is implemented by MemoryCache and RedisCache. Implementations are
// safe for concurrent use.
type Cacher interface {
	// Get returns ErrCacheMiss for absent and expired keys.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value. A zero ttl takes the store default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) (bool, error)
	// Ping reports whether the store can serve requests.
	Ping(ctx context.Context) error
	Close() error
}

// StatsProvider is implemented by stores that count their lookups.
type StatsProvider interface {
	Stats() Stats
	ResetStats()
}

// Stats is a snapshot of a store's counters. Items is zero for Redis.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Sets    int64   `json:"sets"`
	Items   int     `json:"items"`
	HitRate float64 `json:"hit_rate"`
}

// counters backs StatsProvider for both stores.
type counters struct {
	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

func (c *counters) snapshot(items int) Stats {
	s := Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Sets:   c.sets.Load(),
		Items:  items,
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total) * 100
	}
	return s
}

// ResetStats zeroes the counters.
func (c *counters) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.sets.Store(0)
}
