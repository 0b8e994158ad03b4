// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/recipe-console/internal/apiclient"
	"github.com/olegiv/recipe-console/internal/cache"
	"github.com/olegiv/recipe-console/internal/middleware"
	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/query"
	"github.com/olegiv/recipe-console/internal/render"
	"github.com/olegiv/recipe-console/internal/session"
	"github.com/olegiv/recipe-console/internal/testutil"
)

// console is a running console wired to a fake backend.
type console struct {
	t       *testing.T
	backend *testutil.Backend
	srv     *httptest.Server
	client  *http.Client
}

type consoleOptions struct {
	devLogin bool
}

func newConsole(t *testing.T) *console {
	return newConsoleWith(t, consoleOptions{devLogin: true})
}

func newConsoleWith(t *testing.T, opts consoleOptions) *console {
	t.Helper()
	backend := testutil.NewBackend(t)

	sm := scs.New()
	tokens := session.NewScsStore(sm)
	store := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = store.Close() })

	api := apiclient.New(apiclient.Options{
		BaseURL: backend.BaseURL(),
		Tokens:  tokens,
		OnUnauthorized: func(ctx context.Context) {
			if s := session.FromContext(ctx); s != nil {
				_ = s.Expire(ctx)
			}
		},
	})
	queries := query.NewClient(store, query.Options{
		StaleTime:  time.Minute,
		RetryDelay: time.Millisecond,
		Scope:      query.ScopeFromTokens(tokens),
	})
	renderer := render.New(render.Config{SessionManager: sm})

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Use(middleware.LoadSession(middleware.SessionConfig{Manager: sm, Profile: query.Profile(queries, api)}))
	MountHealth(r, NewHealthHandler(nil, store, cache.Info{Backend: cache.TypeMemory}))
	Mount(r, Routes(Deps{
		Renderer:     renderer,
		API:          api,
		Queries:      queries,
		DevLogin:     opts.devLogin,
		PollInterval: 500 * time.Millisecond,
	}), renderer)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &console{t: t, backend: backend, srv: srv, client: client}
}

// login signs in through the OAuth callback with one of the backend's
// tokens and discards the welcome flash.
func (c *console) login(token string) {
	c.t.Helper()
	resp := c.get("/oauth2/callback?token=" + url.QueryEscape(token))
	require.Equal(c.t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(c.t, "/", resp.Header.Get("Location"))
	c.view(c.get("/"))
}

func (c *console) get(path string) *http.Response {
	c.t.Helper()
	resp, err := c.client.Get(c.srv.URL + path)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (c *console) post(path string, form url.Values) *http.Response {
	c.t.Helper()
	resp, err := c.client.PostForm(c.srv.URL+path, form)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// follow fetches the redirect target of resp and decodes its view.
func (c *console) follow(resp *http.Response) viewBody {
	c.t.Helper()
	require.Equal(c.t, http.StatusSeeOther, resp.StatusCode)
	return c.view(c.get(resp.Header.Get("Location")))
}

type viewBody struct {
	View      string          `json:"view"`
	Title     string          `json:"title"`
	User      *model.User     `json:"user"`
	Flash     string          `json:"flash"`
	FlashType string          `json:"flashType"`
	Data      json.RawMessage `json:"data"`
}

func (c *console) view(resp *http.Response) viewBody {
	c.t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	require.Equal(c.t, http.StatusOK, resp.StatusCode, "body: %s", body)
	var v viewBody
	require.NoError(c.t, json.Unmarshal(body, &v), "body: %s", body)
	return v
}

func decodeData[T any](t *testing.T, v viewBody) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(v.Data, &out), "data: %s", v.Data)
	return out
}

func assertRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, location, resp.Header.Get("Location"))
}

// idFromLocation returns the last path segment of a redirect.
func idFromLocation(t *testing.T, resp *http.Response) string {
	t.Helper()
	loc := resp.Header.Get("Location")
	require.NotEmpty(t, loc)
	return lastSegment(loc)
}

func lastSegment(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}
