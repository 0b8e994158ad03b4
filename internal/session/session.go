// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session tracks who is signed in: the persisted credential, the
// profile fetched for it and the loading flag while that fetch runs.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/olegiv/recipe-console/internal/model"
)

// State is the derived session state.
type State int

const (
	StateInitializing State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// ErrNoToken is returned by Refresh when no credential is stored.
var ErrNoToken = errors.New("no stored token")

// ProfileFunc fetches the current member's profile with the stored token.
// When fresh is set the result must come from the backend, not a cache.
type ProfileFunc func(ctx context.Context, fresh bool) (*model.User, error)

// Session holds the signed-in member. It starts Initializing; Start moves it
// to Authenticated or Anonymous. Safe for concurrent use.
type Session struct {
	store TokenStore
	fetch ProfileFunc
	now   func() time.Time

	mu      sync.RWMutex
	user    *model.User
	loading bool
	// seq increments on every transition so a profile fetch that finishes
	// after a newer Login, Logout or Expire is dropped.
	seq uint64
}

// New returns an Initializing session.
func New(store TokenStore, fetch ProfileFunc) *Session {
	return &Session{
		store:   store,
		fetch:   fetch,
		now:     time.Now,
		loading: true,
	}
}

// User returns the current profile, or nil.
func (s *Session) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Loading reports whether a profile fetch that gates the UI is running.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// State derives the session state from user and loading.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.loading:
		return StateInitializing
	case s.user != nil:
		return StateAuthenticated
	default:
		return StateAnonymous
	}
}

// Role returns the signed-in member's role, or "" when anonymous.
func (s *Session) Role() model.Role {
	if u := s.User(); u != nil {
		return u.Role
	}
	return ""
}

// Start resolves the initial state from the stored credential. Without a
// token, or with a token whose expiry has passed, no request is made.
func (s *Session) Start(ctx context.Context) error {
	creds, err := s.store.Credentials(ctx)
	if err != nil {
		s.settle(s.begin(true), nil)
		return fmt.Errorf("reading credentials: %w", err)
	}
	if creds.Empty() {
		s.settle(s.begin(true), nil)
		return nil
	}
	if tokenExpired(creds.Token, s.now()) {
		slog.InfoContext(ctx, "stored token expired, clearing")
		return s.Expire(ctx)
	}
	return s.load(ctx, s.begin(true), false)
}

// Login stores token and fetches the profile for it.
func (s *Session) Login(ctx context.Context, token string) error {
	return s.LoginWith(ctx, Credentials{Token: token})
}

// LoginWith stores the given credentials and fetches the profile.
func (s *Session) LoginWith(ctx context.Context, creds Credentials) error {
	if creds.Empty() {
		return ErrNoToken
	}
	seq := s.begin(true)
	if err := s.store.SetCredentials(ctx, creds); err != nil {
		s.settle(seq, nil)
		return fmt.Errorf("storing credentials: %w", err)
	}
	return s.load(ctx, seq, true)
}

// Logout clears the credential and becomes Anonymous without a network call.
func (s *Session) Logout(ctx context.Context) error {
	s.settle(s.begin(false), nil)
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing credentials: %w", err)
	}
	return nil
}

// Expire handles a rejected credential: same effect as Logout.
func (s *Session) Expire(ctx context.Context) error {
	return s.Logout(ctx)
}

// Refresh re-fetches the profile. The current user stays visible and
// loading is not raised while the fetch runs.
func (s *Session) Refresh(ctx context.Context) error {
	creds, err := s.store.Credentials(ctx)
	if err != nil {
		return fmt.Errorf("reading credentials: %w", err)
	}
	if creds.Empty() {
		s.settle(s.begin(false), nil)
		return ErrNoToken
	}
	return s.load(ctx, s.begin(false), true)
}

// begin starts a transition and returns its sequence number.
func (s *Session) begin(loading bool) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if loading {
		s.loading = true
	}
	return s.seq
}

// settle applies the outcome of transition seq unless a newer one started.
func (s *Session) settle(seq uint64, user *model.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return false
	}
	s.user = user
	s.loading = false
	return true
}

// load fetches the profile outside the lock; the fetch may itself trigger
// Expire through the unauthorized hook.
func (s *Session) load(ctx context.Context, seq uint64, fresh bool) error {
	user, err := s.fetch(ctx, fresh)
	if err != nil {
		if s.settle(seq, nil) {
			if clearErr := s.store.Clear(ctx); clearErr != nil {
				slog.ErrorContext(ctx, "failed to clear credentials", "error", clearErr)
			}
		}
		return fmt.Errorf("fetching profile: %w", err)
	}
	s.settle(seq, user)
	return nil
}

// tokenExpired reports whether token is a JWT whose exp claim is before now.
// Tokens that do not parse as JWTs are left for the backend to judge.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

type ctxKey struct{}

// NewContext returns a context carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored in ctx, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
