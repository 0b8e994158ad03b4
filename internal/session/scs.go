// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	_ "github.com/mattn/go-sqlite3"

	"github.com/olegiv/recipe-console/internal/model"
)

// Session keys for the browser credential.
const (
	SessionKeyToken = "auth_token"
	SessionKeyEmail = "auth_email"
	SessionKeyRole  = "auth_role"
)

// NewManager creates the console's session manager. With a nil db sessions
// live in memory; otherwise they persist in SQLite.
func NewManager(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()

	if db != nil {
		sm.Store = sqlite3store.New(db)
	} else {
		sm.Store = memstore.New()
	}

	sm.Lifetime = 24 * time.Hour
	sm.Cookie.Name = "recipe_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // Secure cookies in production only

	return sm
}

// OpenDB opens the SQLite session database and creates the table sqlite3store
// expects.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating sessions table: %w", err)
	}
	return db, nil
}

// ScsStore keeps credentials in the browser's scs session. The request
// context must have passed through the manager's LoadAndSave.
type ScsStore struct {
	sm *scs.SessionManager
}

// NewScsStore returns a TokenStore over sm.
func NewScsStore(sm *scs.SessionManager) *ScsStore {
	return &ScsStore{sm: sm}
}

// Credentials implements TokenStore.
func (s *ScsStore) Credentials(ctx context.Context) (Credentials, error) {
	return Credentials{
		Token: s.sm.GetString(ctx, SessionKeyToken),
		Email: s.sm.GetString(ctx, SessionKeyEmail),
		Role:  model.Role(s.sm.GetString(ctx, SessionKeyRole)),
	}, nil
}

// SetCredentials implements TokenStore. The session token is renewed first
// to prevent fixation. Empty fields remove what an earlier login stored.
func (s *ScsStore) SetCredentials(ctx context.Context, c Credentials) error {
	if err := s.sm.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}
	s.sm.Put(ctx, SessionKeyToken, c.Token)
	s.putOrRemove(ctx, SessionKeyEmail, c.Email)
	s.putOrRemove(ctx, SessionKeyRole, string(c.Role))
	return nil
}

func (s *ScsStore) putOrRemove(ctx context.Context, key, value string) {
	if value == "" {
		s.sm.Remove(ctx, key)
		return
	}
	s.sm.Put(ctx, key, value)
}

// Clear implements TokenStore. Other session data such as flash messages is
// kept.
func (s *ScsStore) Clear(ctx context.Context) error {
	s.sm.Remove(ctx, SessionKeyToken)
	s.sm.Remove(ctx, SessionKeyEmail)
	s.sm.Remove(ctx, SessionKeyRole)
	return nil
}

var _ TokenStore = (*ScsStore)(nil)
