// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides the console's HTTP middleware: session
// loading, route guards, request context, CSRF, security headers, timeouts
// and login rate limiting.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/alexedwards/scs/v2"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/recipe-console/internal/logging"
	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/render"
	"github.com/olegiv/recipe-console/internal/session"
)

// DefaultSessionWait bounds how long a request waits for the profile fetch.
const DefaultSessionWait = 2 * time.Second

// Route guard redirect targets.
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// SessionConfig configures LoadSession.
type SessionConfig struct {
	Manager *scs.SessionManager
	Profile session.ProfileFunc
	// Wait is how long the request blocks on the profile fetch before it is
	// served as Initializing. 0 means DefaultSessionWait.
	Wait time.Duration
}

// LoadSession attaches a session.Session built from the browser's scs
// session to the request context and starts it. It must run inside the
// manager's LoadAndSave.
//
// The profile fetch outlives a slow request: it runs detached from the
// request's cancellation and, once settled, its result sits in the query
// cache for the next request.
func LoadSession(cfg SessionConfig) func(http.Handler) http.Handler {
	store := session.NewScsStore(cfg.Manager)
	wait := cfg.Wait
	if wait <= 0 {
		wait = DefaultSessionWait
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := session.New(store, cfg.Profile)
			ctx := session.NewContext(r.Context(), s)

			done := make(chan struct{})
			go func() {
				defer close(done)
				if err := s.Start(context.WithoutCancel(ctx)); err != nil {
					slog.WarnContext(ctx, "session start failed", "error", err)
				}
			}()

			timer := time.NewTimer(wait)
			defer timer.Stop()
			select {
			case <-done:
			case <-timer.C:
				slog.DebugContext(ctx, "profile fetch still running, serving initializing session")
			case <-r.Context().Done():
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession admits Authenticated sessions. Initializing sessions get
// the loading view with 503 and Retry-After; anonymous ones are redirected
// to the login page.
func RequireSession(renderer *render.Renderer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := session.FromContext(r.Context())
			state := session.StateAnonymous
			if s != nil {
				state = s.State()
			}

			switch state {
			case session.StateAuthenticated:
				next.ServeHTTP(w, r)
			case session.StateInitializing:
				w.Header().Set("Retry-After", "1")
				if err := renderer.Render(w, r, http.StatusServiceUnavailable, render.View{
					Name:  "loading",
					Title: "Loading",
				}); err != nil {
					slog.ErrorContext(r.Context(), "render failed", "view", "loading", "error", err)
				}
			default:
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			}
		})
	}
}

// RequireRoles admits members whose role is one of roles and redirects the
// rest to the dashboard. An empty list admits everyone.
func RequireRoles(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(roles) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil || !slices.Contains(roles, user.Role) {
				var role model.Role
				if user != nil {
					role = user.Role
				}
				slog.WarnContext(r.Context(), "access denied", "role", role, "required", roles)
				http.Redirect(w, r, HomePath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUser returns the signed-in member, or nil.
func GetUser(r *http.Request) *model.User {
	if s := session.FromContext(r.Context()); s != nil {
		return s.User()
	}
	return nil
}

// GetSession returns the request's session, or nil outside LoadSession.
func GetSession(r *http.Request) *session.Session {
	return session.FromContext(r.Context())
}

// RequestContext copies chi's request ID and the request path into the
// context so log records and backend calls carry them.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := chimw.GetReqID(ctx); id != "" {
			ctx = logging.WithRequestID(ctx, id)
		}
		ctx = logging.WithPath(ctx, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
