// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/recipe-console/internal/model"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	fs := NewFileStore(path)

	creds, err := fs.Credentials(ctx)
	if err != nil || !creds.Empty() {
		t.Fatalf("Credentials() on missing file = %+v, %v", creds, err)
	}

	want := Credentials{Token: "tok", Email: "a@b.c", Role: model.RoleService}
	if err := fs.SetCredentials(ctx, want); err != nil {
		t.Fatalf("SetCredentials() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}

	got, err := NewFileStore(path).Credentials(ctx)
	if err != nil || got != want {
		t.Errorf("reloaded = %+v, %v; want %+v", got, err, want)
	}

	if err := fs.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if err := fs.Clear(ctx); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("credential file still exists after Clear")
	}
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path).Credentials(context.Background()); err == nil {
		t.Error("Credentials() on corrupt file succeeded")
	}
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewManager(t *testing.T) {
	tests := []struct {
		name       string
		withDB     bool
		isDev      bool
		wantSecure bool
	}{
		{"memory dev", false, true, false},
		{"sqlite prod", true, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var db *sql.DB
			if tt.withDB {
				db = setupTestDB(t)
			}
			sm := NewManager(db, tt.isDev)
			if sm.Cookie.Secure != tt.wantSecure {
				t.Errorf("Cookie.Secure = %v, want %v", sm.Cookie.Secure, tt.wantSecure)
			}
			if !sm.Cookie.HttpOnly {
				t.Error("Cookie.HttpOnly = false")
			}
			if sm.Cookie.SameSite != http.SameSiteLaxMode {
				t.Errorf("Cookie.SameSite = %v", sm.Cookie.SameSite)
			}
		})
	}
}

// serveWithSession runs fn inside sm.LoadAndSave and returns the recorder.
func serveWithSession(sm *scs.SessionManager, cookies []*http.Cookie, fn func(r *http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fn(r)
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)
	return rec
}

func TestScsStore(t *testing.T) {
	sm := NewManager(setupTestDB(t), true)
	store := NewScsStore(sm)
	want := Credentials{Token: "tok", Email: "p@example.com", Role: model.RoleProducer}

	rec := serveWithSession(sm, nil, func(r *http.Request) {
		if err := store.SetCredentials(r.Context(), want); err != nil {
			t.Errorf("SetCredentials() error = %v", err)
		}
		sm.Put(r.Context(), "flash", "kept")
	})
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie issued")
	}

	serveWithSession(sm, cookies, func(r *http.Request) {
		got, _ := store.Credentials(r.Context())
		if got != want {
			t.Errorf("Credentials() = %+v, want %+v", got, want)
		}
		_ = store.Clear(r.Context())
	})

	serveWithSession(sm, cookies, func(r *http.Request) {
		got, _ := store.Credentials(r.Context())
		if !got.Empty() {
			t.Errorf("Credentials() after Clear = %+v", got)
		}
		if sm.GetString(r.Context(), "flash") != "kept" {
			t.Error("Clear dropped unrelated session data")
		}
	})
}

func TestScsStore_TokenOnlyLoginDropsDevFields(t *testing.T) {
	sm := NewManager(nil, true)
	store := NewScsStore(sm)

	serveWithSession(sm, nil, func(r *http.Request) {
		ctx := r.Context()
		dev := Credentials{Token: "dev-tok", Email: "p@example.com", Role: model.RoleProducer}
		if err := store.SetCredentials(ctx, dev); err != nil {
			t.Fatalf("SetCredentials(dev) error = %v", err)
		}
		if err := store.SetCredentials(ctx, Credentials{Token: "oauth-tok"}); err != nil {
			t.Fatalf("SetCredentials(oauth) error = %v", err)
		}

		got, _ := store.Credentials(ctx)
		if want := (Credentials{Token: "oauth-tok"}); got != want {
			t.Errorf("Credentials() = %+v, want %+v", got, want)
		}
		if sm.Exists(ctx, SessionKeyEmail) || sm.Exists(ctx, SessionKeyRole) {
			t.Error("dev login email/role survived a token-only login")
		}
	})
}
