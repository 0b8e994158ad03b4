// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/singleflight"

	"github.com/olegiv/recipe-console/internal/apiclient"
	"github.com/olegiv/recipe-console/internal/cache"
	"github.com/olegiv/recipe-console/internal/metrics"
	"github.com/olegiv/recipe-console/internal/session"
)

// Defaults applied by NewClient.
const (
	DefaultStaleTime  = 30 * time.Second
	DefaultRetention  = 5 * time.Minute
	DefaultRetryDelay = time.Second
	maxRetryDelay     = 30 * time.Second
	maxGenerations    = 10000
)

// ScopeFunc returns the cache scope for the caller, typically derived from
// the credential so that sessions never read each other's entries.
type ScopeFunc func(ctx context.Context) string

// ScopeFromTokens scopes entries by the stored credential.
func ScopeFromTokens(tokens session.TokenStore) ScopeFunc {
	return func(ctx context.Context) string {
		creds, err := tokens.Credentials(ctx)
		if err != nil {
			return ""
		}
		return creds.Scope()
	}
}

// Options configures a Client. Zero durations take the defaults.
type Options struct {
	StaleTime time.Duration
	Retention time.Duration
	// Retries is the number of attempts after the first; 0 disables retry.
	Retries    uint64
	RetryDelay time.Duration
	Scope      ScopeFunc
}

// Client caches query results in a cache.Cacher.
type Client struct {
	cache      cache.Cacher
	staleTime  time.Duration
	retention  time.Duration
	retries    uint64
	retryDelay time.Duration
	scope      ScopeFunc
	now        func() time.Time

	mu    sync.Mutex
	gens  *expirable.LRU[string, uint64]
	group singleflight.Group

	// apply serializes result writes (shared) against invalidation
	// (exclusive) so a superseded result cannot land after the delete.
	apply sync.RWMutex
}

// NewClient creates a query client over store.
func NewClient(store cache.Cacher, opts Options) *Client {
	c := &Client{
		cache:      store,
		staleTime:  opts.StaleTime,
		retention:  opts.Retention,
		retries:    opts.Retries,
		retryDelay: opts.RetryDelay,
		scope:      opts.Scope,
		now:        time.Now,
	}
	if c.staleTime <= 0 {
		c.staleTime = DefaultStaleTime
	}
	if c.retention <= 0 {
		c.retention = DefaultRetention
	}
	if c.retryDelay <= 0 {
		c.retryDelay = DefaultRetryDelay
	}
	if c.scope == nil {
		c.scope = func(context.Context) string { return "" }
	}
	c.gens = expirable.NewLRU[string, uint64](maxGenerations, nil, c.retention)
	return c
}

// QueryOptions describes one read.
type QueryOptions[T any] struct {
	Key     Key
	Enabled bool
	Fn      func(ctx context.Context) (T, error)
}

// Result is the outcome of a read. Loading is set when the caller went away
// before the fetch settled; the fetch itself still completes and is cached.
type Result[T any] struct {
	Data      T
	Err       error
	Loading   bool
	FromCache bool
}

// Fetch serves the query from cache while fresh, otherwise fetches it.
// Disabled queries return the zero Result without calling Fn.
func Fetch[T any](ctx context.Context, c *Client, opts QueryOptions[T]) Result[T] {
	return run(ctx, c, opts, false)
}

// Refetch fetches the query regardless of freshness and supersedes any fetch
// of the same key already in flight.
func Refetch[T any](ctx context.Context, c *Client, opts QueryOptions[T]) Result[T] {
	return run(ctx, c, opts, true)
}

func run[T any](ctx context.Context, c *Client, opts QueryOptions[T], force bool) Result[T] {
	if !opts.Enabled {
		return Result[T]{}
	}

	sk := c.storageKey(ctx, opts.Key)
	store := cache.NewEntries[T](c.cache, c.retention)

	cached, err := store.Load(ctx, sk)
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		slog.WarnContext(ctx, "query cache read failed", "key", sk, "error", err)
		cached = nil
	}
	if cached != nil && !force && cached.Age(c.now()) < c.staleTime {
		metrics.RecordCache(sk, metrics.OutcomeHit)
		return Result[T]{Data: cached.Value, FromCache: true}
	}
	if cached != nil {
		metrics.RecordCache(sk, metrics.OutcomeStale)
	} else {
		metrics.RecordCache(sk, metrics.OutcomeMiss)
	}

	var gen uint64
	if force {
		gen = c.bump(sk)
	} else {
		gen = c.generation(sk)
	}

	ch := c.group.DoChan(sk+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		// Detached so other waiters and the cache still get the result
		// after this caller leaves.
		fctx := context.WithoutCancel(ctx)
		data, err := fetchWithRetry(fctx, c, opts.Fn)
		if err != nil {
			return nil, err
		}
		c.apply.RLock()
		defer c.apply.RUnlock()
		if !c.current(sk, gen) {
			slog.DebugContext(fctx, "superseded query result dropped", "key", sk)
			return data, nil
		}
		if err := store.Store(fctx, sk, data, c.now()); err != nil {
			slog.WarnContext(fctx, "query cache write failed", "key", sk, "error", err)
		}
		return data, nil
	})

	select {
	case <-ctx.Done():
		return Result[T]{Err: ctx.Err(), Loading: true}
	case res := <-ch:
		if res.Err != nil {
			if cached != nil {
				return Result[T]{Data: cached.Value, Err: res.Err, FromCache: true}
			}
			return Result[T]{Err: res.Err}
		}
		data, _ := res.Val.(T)
		return Result[T]{Data: data}
	}
}

// fetchWithRetry retries fn on transport failures and 5xx responses with
// exponential backoff. Other errors return at once.
func fetchWithRetry[T any](ctx context.Context, c *Client, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	b := retry.WithMaxRetries(c.retries, retry.WithCappedDuration(maxRetryDelay, retry.NewExponential(c.retryDelay)))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			if apiclient.Retryable(err) {
				slog.DebugContext(ctx, "retrying query", "error", err)
				return retry.RetryableError(err)
			}
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// Invalidate drops every entry under prefix in all scopes and supersedes
// fetches of those keys already in flight.
func (c *Client) Invalidate(ctx context.Context, prefix Key) error {
	p := prefix.String()
	c.apply.Lock()
	defer c.apply.Unlock()

	c.mu.Lock()
	for _, k := range c.gens.Keys() {
		if strings.HasPrefix(k, p) {
			g, _ := c.gens.Peek(k)
			c.gens.Add(k, g+1)
		}
	}
	c.mu.Unlock()

	if err := c.cache.DeleteByPrefix(ctx, p); err != nil {
		return fmt.Errorf("invalidating %s: %w", p, err)
	}
	return nil
}

// Clear drops every cached entry.
func (c *Client) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.gens.Purge()
	c.mu.Unlock()
	return c.cache.Clear(ctx)
}

// storageKey places the scope after the query key so that invalidation by
// key prefix reaches every scope.
func (c *Client) storageKey(ctx context.Context, k Key) string {
	scope := c.scope(ctx)
	if scope == "" {
		scope = "anon"
	}
	return k.String() + "@" + scope
}

func (c *Client) generation(sk string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.gens.Get(sk)
	if !ok {
		c.gens.Add(sk, 0)
	}
	return g
}

func (c *Client) bump(sk string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, _ := c.gens.Get(sk)
	g++
	c.gens.Add(sk, g)
	return g
}

func (c *Client) current(sk string, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, _ := c.gens.Peek(sk)
	return g == gen
}
