// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package query

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/olegiv/recipe-console/internal/metrics"
)

// Poller defaults.
const (
	DefaultPollInterval   = 3 * time.Second
	DefaultPollMaxBackoff = 30 * time.Second
)

// Poller re-runs a function on a fixed interval until its context ends.
// Consecutive failures stretch the wait exponentially up to MaxBackoff; the
// first success returns it to the interval.
type Poller struct {
	interval   time.Duration
	maxBackoff time.Duration
	fn         func(ctx context.Context) error

	backoff  retry.Backoff
	failures int
}

// NewPoller creates a poller. Zero durations take the defaults.
func NewPoller(interval, maxBackoff time.Duration, fn func(ctx context.Context) error) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if maxBackoff < interval {
		maxBackoff = max(interval, DefaultPollMaxBackoff)
	}
	p := &Poller{interval: interval, maxBackoff: maxBackoff, fn: fn}
	p.reset()
	return p
}

// Run blocks, polling until ctx is cancelled, and returns ctx.Err().
func (p *Poller) Run(ctx context.Context) error {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		err := p.fn(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		timer.Reset(p.next(err))
	}
}

// Failures returns the number of consecutive failed ticks.
func (p *Poller) Failures() int {
	return p.failures
}

// next records a tick outcome and returns the wait before the next tick.
func (p *Poller) next(err error) time.Duration {
	if err == nil {
		if p.failures > 0 {
			slog.Info("poll recovered", "after_failures", p.failures)
		}
		p.reset()
		return p.interval
	}

	p.failures++
	metrics.RecordPollError()
	wait, _ := p.backoff.Next()
	slog.Warn("poll failed", "failures", p.failures, "retry_in", wait, "error", err)
	return wait
}

func (p *Poller) reset() {
	p.failures = 0
	p.backoff = retry.WithCappedDuration(p.maxBackoff, retry.NewExponential(p.interval*2))
}
