// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recipeRow struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

func TestEntries_StoreLoad(t *testing.T) {
	entries := NewEntries[[]recipeRow](NewMemoryCache(MemoryCacheOptions{}), time.Minute)
	ctx := context.Background()

	_, err := entries.Load(ctx, "recipes/")
	assert.ErrorIs(t, err, ErrCacheMiss)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := []recipeRow{{ID: 1, Title: "Borscht"}, {ID: 2, Title: "Pelmeni"}}
	require.NoError(t, entries.Store(ctx, "recipes/", rows, at))

	got, err := entries.Load(ctx, "recipes/")
	require.NoError(t, err)
	assert.Equal(t, rows, got.Value)
	assert.True(t, got.StoredAt.Equal(at))
	assert.Equal(t, 90*time.Second, got.Age(at.Add(90*time.Second)))
}

func TestEntries_UndecodableIsDropped(t *testing.T) {
	mem := NewMemoryCache(MemoryCacheOptions{})
	entries := NewEntries[recipeRow](mem, time.Minute)
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, "recipes/7/", []byte("{not json"), 0))

	_, err := entries.Load(ctx, "recipes/7/")
	assert.ErrorIs(t, err, ErrCacheMiss)

	ok, err := mem.Has(ctx, "recipes/7/")
	require.NoError(t, err)
	assert.False(t, ok, "a broken entry should be removed")
}

func TestEntries_RetentionOnRedis(t *testing.T) {
	rc, mr := newTestRedis(t)
	entries := NewEntries[recipeRow](rc, 30*time.Second)

	require.NoError(t, entries.Store(context.Background(), "recipes/3/", recipeRow{ID: 3}, time.Now()))
	assert.Equal(t, 30*time.Second, mr.TTL("test:recipes/3/"))
}
