// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/olegiv/recipe-console/internal/render"
)

// limiterCache hands out one token bucket per key. Idle keys age out of the
// LRU so a scan of addresses cannot grow it without bound.
type limiterCache[K comparable] struct {
	mu       sync.Mutex
	limiters *expirable.LRU[K, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

func newLimiterCache[K comparable](rps float64, burst, size int, idle time.Duration) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: expirable.NewLRU[K, *rate.Limiter](size, nil, idle),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// get returns the limiter for key, creating one if needed.
func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if limiter, ok := lc.limiters.Get(key); ok {
		return limiter
	}
	limiter := rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters.Add(key, limiter)
	return limiter
}

// LoginRateLimitConfig holds per-IP limits for the sign-in endpoints.
type LoginRateLimitConfig struct {
	// RPS is requests per second per IP.
	RPS   float64
	Burst int
	// MaxIPs bounds how many addresses are tracked.
	MaxIPs int
	// IdleTTL drops an address's bucket after this long without requests.
	IdleTTL time.Duration
}

// DefaultLoginRateLimitConfig allows a burst of 5 then one attempt every two
// seconds per IP.
func DefaultLoginRateLimitConfig() LoginRateLimitConfig {
	return LoginRateLimitConfig{
		RPS:     0.5,
		Burst:   5,
		MaxIPs:  10000,
		IdleTTL: 15 * time.Minute,
	}
}

// LoginRateLimit limits sign-in attempts per client IP. It expects chi's
// RealIP to have normalized RemoteAddr.
func LoginRateLimit(cfg LoginRateLimitConfig) func(http.Handler) http.Handler {
	def := DefaultLoginRateLimitConfig()
	if cfg.RPS <= 0 {
		cfg.RPS = def.RPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.MaxIPs <= 0 {
		cfg.MaxIPs = def.MaxIPs
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = def.IdleTTL
	}
	cache := newLimiterCache[string](cfg.RPS, cfg.Burst, cfg.MaxIPs, cfg.IdleTTL)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !cache.get(ip).Allow() {
				slog.WarnContext(r.Context(), "login rate limit exceeded", "ip", ip)
				w.Header().Set("Retry-After", "2")
				render.JSONError(w, http.StatusTooManyRequests, "Too many login attempts. Please wait and try again.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
