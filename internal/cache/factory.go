// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Backend types.
const (
	TypeMemory = "memory"
	TypeRedis  = "redis"
)

// Config holds configuration for cache creation.
type Config struct {
	Type       string // TypeMemory or TypeRedis
	RedisURL   string
	Prefix     string
	DefaultTTL time.Duration
	MaxSize    int

	// FallbackToMemory creates a memory cache when Redis is unreachable.
	FallbackToMemory bool
}

// Info describes the backend New selected.
type Info struct {
	Backend    string
	IsFallback bool
}

// New creates a cache based on the provided configuration.
func New(cfg Config) (Cacher, Info, error) {
	if cfg.Type == TypeRedis && cfg.RedisURL != "" {
		rc, err := NewRedisCache(context.Background(), RedisOptions{
			URL:        cfg.RedisURL,
			Prefix:     cfg.Prefix,
			DefaultTTL: cfg.DefaultTTL,
		})
		if err == nil {
			return rc, Info{Backend: TypeRedis}, nil
		}
		if !cfg.FallbackToMemory {
			return nil, Info{}, fmt.Errorf("creating redis cache: %w", err)
		}
		slog.Warn("redis unavailable, using memory cache", "error", err)
		return newMemory(cfg), Info{Backend: TypeMemory, IsFallback: true}, nil
	}
	return newMemory(cfg), Info{Backend: TypeMemory}, nil
}

func newMemory(cfg Config) *MemoryCache {
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL: cfg.DefaultTTL,
		MaxSize:    cfg.MaxSize,
	})
}
