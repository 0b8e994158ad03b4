// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Entry is a cached value stamped with the time it was stored.
type Entry[T any] struct {
	StoredAt time.Time `json:"storedAt"`
	Value    T         `json:"value"`
}

// Age reports how old the entry is at now.
func (e *Entry[T]) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}

// Entries reads and writes JSON-encoded Entry values of one type over a
// Cacher. Every write uses the same retention.
type Entries[T any] struct {
	store     Cacher
	retention time.Duration
}

// NewEntries wraps store. A zero retention takes the store's default TTL.
func NewEntries[T any](store Cacher, retention time.Duration) *Entries[T] {
	return &Entries[T]{store: store, retention: retention}
}

// Load returns the entry under key, or ErrCacheMiss. An entry that no longer
// decodes as T is dropped and reported as a miss.
func (e *Entries[T]) Load(ctx context.Context, key string) (*Entry[T], error) {
	raw, err := e.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var entry Entry[T]
	if err := json.Unmarshal(raw, &entry); err != nil {
		slog.WarnContext(ctx, "dropping undecodable cache entry", "key", key, "error", err)
		if derr := e.store.Delete(ctx, key); derr != nil && !errors.Is(derr, ErrCacheClosed) {
			return nil, fmt.Errorf("dropping cache entry %q: %w", key, derr)
		}
		return nil, ErrCacheMiss
	}
	return &entry, nil
}

// Store writes value under key stamped with at.
func (e *Entries[T]) Store(ctx context.Context, key string, value T, at time.Time) error {
	raw, err := json.Marshal(Entry[T]{StoredAt: at, Value: value})
	if err != nil {
		return fmt.Errorf("encoding cache entry %q: %w", key, err)
	}
	return e.store.Set(ctx, key, raw, e.retention)
}
