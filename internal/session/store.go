// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/olegiv/recipe-console/internal/model"
)

// Credentials is the client-side persisted auth state: the bearer token and,
// after a development login, the email and role the backend reported.
type Credentials struct {
	Token string     `json:"token"`
	Email string     `json:"email,omitempty"`
	Role  model.Role `json:"role,omitempty"`
}

// Empty reports whether no token is held.
func (c Credentials) Empty() bool {
	return c.Token == ""
}

// Scope returns a short stable identifier for the credential, used to keep
// cached query results of different logins apart. It is "" without a token.
func (c Credentials) Scope() string {
	if c.Token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(c.Token))
	return hex.EncodeToString(sum[:8])
}

// TokenStore persists credentials. Implementations must be safe for
// concurrent use; the context selects the browser session where relevant.
type TokenStore interface {
	Credentials(ctx context.Context) (Credentials, error)
	SetCredentials(ctx context.Context, c Credentials) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps credentials in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	creds Credentials
}

// NewMemoryStore returns a store holding creds.
func NewMemoryStore(creds Credentials) *MemoryStore {
	return &MemoryStore{creds: creds}
}

// Credentials implements TokenStore.
func (m *MemoryStore) Credentials(_ context.Context) (Credentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creds, nil
}

// SetCredentials implements TokenStore.
func (m *MemoryStore) SetCredentials(_ context.Context, c Credentials) error {
	m.mu.Lock()
	m.creds = c
	m.mu.Unlock()
	return nil
}

// Clear implements TokenStore.
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	m.creds = Credentials{}
	m.mu.Unlock()
	return nil
}

var _ TokenStore = (*MemoryStore)(nil)
