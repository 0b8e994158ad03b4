// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net"
	"net/http"

	"filippo.io/csrf/gorilla"

	"github.com/olegiv/recipe-console/internal/render"
)

// CSRFConfig configures cross-site request rejection. The check relies on
// Sec-Fetch-Site and Origin headers, so views carry no token.
type CSRFConfig struct {
	AuthKey []byte
	// TrustedOrigins are host:port values whose cross-origin posts are
	// accepted, e.g. a console reached through a different local address.
	TrustedOrigins []string
	// OnFailure replaces the default 403 JSON response.
	OnFailure http.Handler
}

// ConsoleCSRFConfig trusts the console's own listen address in
// development, where it is often opened through 127.0.0.1 and localhost
// interchangeably.
func ConsoleCSRFConfig(authKey []byte, addr string, isDev bool) CSRFConfig {
	cfg := CSRFConfig{AuthKey: authKey}
	if isDev && addr != "" {
		cfg.TrustedOrigins = localAliases(addr)
	}
	return cfg
}

// localAliases returns addr plus its localhost/127.0.0.1 twin.
func localAliases(addr string) []string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return []string{addr}
	}
	switch host {
	case "localhost":
		return []string{addr, net.JoinHostPort("127.0.0.1", port)}
	case "127.0.0.1":
		return []string{addr, net.JoinHostPort("localhost", port)}
	}
	return []string{addr}
}

// CSRF rejects cross-site state-changing requests with 403.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	onFailure := cfg.OnFailure
	if onFailure == nil {
		onFailure = http.HandlerFunc(rejectCrossSite)
	}
	opts := []csrf.Option{csrf.ErrorHandler(onFailure)}
	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}
	return csrf.Protect(cfg.AuthKey, opts...)
}

func rejectCrossSite(w http.ResponseWriter, r *http.Request) {
	slog.WarnContext(r.Context(), "cross-site request rejected",
		"reason", csrf.FailureReason(r),
		"method", r.Method,
		"origin", r.Header.Get("Origin"),
		"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
	)
	render.JSONError(w, http.StatusForbidden, "This request was blocked as cross-site.")
}

// SkipCSRF exempts exact paths from the check. The OAuth callback arrives as
// a cross-site top-level navigation.
func SkipCSRF(paths ...string) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		skip[p] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				r = csrf.UnsafeSkipCheck(r)
			}
			next.ServeHTTP(w, r)
		})
	}
}
