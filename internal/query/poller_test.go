// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package query

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPollerBackoff(t *testing.T) {
	p := NewPoller(time.Second, 5*time.Second, nil)
	boom := errors.New("boom")

	steps := []struct {
		err  error
		want time.Duration
	}{
		{nil, time.Second},
		{boom, 2 * time.Second},
		{boom, 4 * time.Second},
		{boom, 5 * time.Second},
		{boom, 5 * time.Second},
		{nil, time.Second},
		{boom, 2 * time.Second},
	}

	for i, s := range steps {
		if got := p.next(s.err); got != s.want {
			t.Errorf("step %d: next(%v) = %v, want %v", i, s.err, got, s.want)
		}
	}
	if p.Failures() != 1 {
		t.Errorf("Failures() = %d, want 1", p.Failures())
	}
}

func TestPollerDefaults(t *testing.T) {
	p := NewPoller(0, 0, nil)
	if p.interval != DefaultPollInterval {
		t.Errorf("interval = %v, want %v", p.interval, DefaultPollInterval)
	}
	if p.maxBackoff != DefaultPollMaxBackoff {
		t.Errorf("maxBackoff = %v, want %v", p.maxBackoff, DefaultPollMaxBackoff)
	}
}

func TestPollerRunsUntilCancelled(t *testing.T) {
	var ticks atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPoller(5*time.Millisecond, 10*time.Millisecond, func(context.Context) error {
		if ticks.Add(1) == 2 {
			return errors.New("transient")
		}
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for ticks.Load() < 5 {
		select {
		case <-deadline:
			t.Fatalf("only %d ticks before deadline", ticks.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}
