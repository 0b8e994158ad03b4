// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/olegiv/recipe-console/internal/render"
)

// MessageTimeout is the body of a 503 sent when a page takes too long,
// usually because the backend is slow.
const MessageTimeout = "The recipe service did not answer in time. Please try again."

// Timeout bounds each request to d. Backend calls made with the request
// context are cancelled at the deadline; if the handler has not started
// its response by then, a 503 is sent and its later writes are dropped.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			dw := &deadlineWriter{w: w}
			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(dw, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if dw.expire() {
					slog.WarnContext(r.Context(), "request timed out",
						"method", r.Method, "path", r.URL.Path, "after", d)
					render.JSONError(w, http.StatusServiceUnavailable, MessageTimeout)
				}
			}
		})
	}
}

// deadlineWriter forwards writes until expire is called.
type deadlineWriter struct {
	w       http.ResponseWriter
	mu      sync.Mutex
	started bool
	expired bool
}

func (dw *deadlineWriter) Header() http.Header {
	return dw.w.Header()
}

// expire stops forwarding and reports whether no response was started.
func (dw *deadlineWriter) expire() bool {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	dw.expired = true
	return !dw.started
}

func (dw *deadlineWriter) WriteHeader(code int) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.expired || dw.started {
		return
	}
	dw.started = true
	dw.w.WriteHeader(code)
}

func (dw *deadlineWriter) Write(b []byte) (int, error) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.expired {
		return 0, http.ErrHandlerTimeout
	}
	if !dw.started {
		dw.started = true
		dw.w.WriteHeader(http.StatusOK)
	}
	return dw.w.Write(b)
}
