// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package query

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/olegiv/recipe-console/internal/metrics"
)

// Mutation runs writes of one kind and tracks how many are in flight.
type Mutation[T any] struct {
	client  *Client
	kind    Kind
	pending atomic.Int64
}

// NewMutation binds a mutation kind to a client.
func NewMutation[T any](c *Client, kind Kind) *Mutation[T] {
	return &Mutation[T]{client: c, kind: kind}
}

// Pending reports whether a run is in progress.
func (m *Mutation[T]) Pending() bool {
	return m.pending.Load() > 0
}

// Run calls fn once and, on success, invalidates the kind's prefix resolved
// with id. Mutations are never retried. An invalidation failure is logged;
// the write itself has succeeded.
func (m *Mutation[T]) Run(ctx context.Context, id int64, fn func(ctx context.Context) (T, error)) (T, error) {
	m.pending.Add(1)
	defer m.pending.Add(-1)

	out, err := fn(ctx)
	if err != nil {
		return out, err
	}

	if prefix := m.kind.Prefix(id); prefix != nil {
		metrics.RecordInvalidation(string(m.kind))
		if err := m.client.Invalidate(context.WithoutCancel(ctx), prefix); err != nil {
			slog.ErrorContext(ctx, "failed to invalidate queries", "kind", m.kind, "prefix", prefix.String(), "error", err)
		}
	}
	return out, nil
}

// Mutate runs a one-off mutation of the given kind.
func Mutate[T any](ctx context.Context, c *Client, kind Kind, id int64, fn func(ctx context.Context) (T, error)) (T, error) {
	return NewMutation[T](c, kind).Run(ctx, id, fn)
}
