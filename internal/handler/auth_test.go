// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/render"
	"github.com/olegiv/recipe-console/internal/testutil"
)

func TestGuardedPageRedirectsAnonymous(t *testing.T) {
	c := newConsole(t)

	for _, path := range []string{"/", "/recipes", "/knowledge", "/ai", "/feedback", "/admin/users"} {
		t.Run(path, func(t *testing.T) {
			assertRedirect(t, c.get(path), "/login")
		})
	}
}

func TestLoginForm(t *testing.T) {
	c := newConsole(t)

	v := c.view(c.get("/login"))
	assert.Equal(t, "login", v.View)
	assert.Nil(t, v.User)
	data := decodeData[loginData](t, v)
	assert.True(t, data.DevLogin)
	assert.NotEmpty(t, data.OAuthURL)
}

func TestLoginForm_AuthenticatedGoesHome(t *testing.T) {
	c := newConsole(t)
	c.login(testutil.TokenChef)

	assertRedirect(t, c.get("/login"), "/")
}

func TestOAuthCallback(t *testing.T) {
	c := newConsole(t)

	resp := c.get("/oauth2/callback?token=" + testutil.TokenChef)
	v := c.follow(resp)

	assert.Equal(t, "dashboard", v.View)
	assert.Equal(t, "Welcome, Chef", v.Flash)
	assert.Equal(t, render.FlashSuccess, v.FlashType)
	require.NotNil(t, v.User)
	assert.Equal(t, model.RoleChef, v.User.Role)
}

func TestOAuthCallback_RejectedToken(t *testing.T) {
	c := newConsole(t)

	resp := c.get("/oauth2/callback?token=" + url.QueryEscape("not-a-token"))
	assertRedirect(t, resp, "/login")

	v := c.view(c.get("/login"))
	assert.Equal(t, "The sign-in was rejected. Please try again.", v.Flash)
	assert.Equal(t, render.FlashError, v.FlashType)

	// The rejected token is not kept.
	assertRedirect(t, c.get("/"), "/login")
}

func TestOAuthCallback_MissingToken(t *testing.T) {
	c := newConsole(t)

	v := c.follow(c.get("/oauth2/callback"))
	assert.Equal(t, "login", v.View)
	assert.Equal(t, "Sign-in did not return a token.", v.Flash)
}

func TestDevLogin(t *testing.T) {
	c := newConsole(t)

	v := c.follow(c.post("/login/dev", nil))
	require.NotNil(t, v.User)
	assert.Equal(t, model.RoleProducer, v.User.Role)
}

func TestDevLogin_Disabled(t *testing.T) {
	c := newConsoleWith(t, consoleOptions{devLogin: false})

	resp := c.post("/login/dev", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 0, c.backend.Hits("/dev/token"))
}

func TestLogout(t *testing.T) {
	c := newConsole(t)
	c.login(testutil.TokenService)

	v := c.follow(c.post("/logout", nil))
	assert.Equal(t, "login", v.View)
	assert.Equal(t, "You have been signed out.", v.Flash)
	assert.Nil(t, v.User)

	assertRedirect(t, c.get("/recipes"), "/login")
}

func TestBackendRejectionSignsOut(t *testing.T) {
	c := newConsole(t)
	c.login(testutil.TokenChef)

	c.backend.Fail(http.MethodGet, "/recipes", http.StatusUnauthorized)
	v := c.follow(c.get("/recipes"))

	assert.Equal(t, "login", v.View)
	assert.Nil(t, v.User)
	assertRedirect(t, c.get("/"), "/login")
}

func TestDashboard_QuickActionsFollowRole(t *testing.T) {
	tests := []struct {
		token   string
		want    []string
		notWant []string
	}{
		{testutil.TokenChef, []string{"/recipes/new", "/feedback/new"}, []string{"/admin/users"}},
		{testutil.TokenPurchaser, []string{"/recipes", "/knowledge"}, []string{"/recipes/new", "/feedback/new", "/admin/users"}},
		{testutil.TokenProducer, []string{"/recipes/new", "/admin/users"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			c := newConsole(t)
			c.login(tt.token)

			data := decodeData[dashboardData](t, c.view(c.get("/")))
			var urls []string
			for _, a := range data.QuickActions {
				urls = append(urls, a.Path)
			}
			for _, u := range tt.want {
				assert.Contains(t, urls, u)
			}
			for _, u := range tt.notWant {
				assert.NotContains(t, urls, u)
			}
		})
	}
}
