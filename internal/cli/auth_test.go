// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/testutil"
)

func TestLogin_Token(t *testing.T) {
	h := newHarness(t)

	res := h.run(t, "", "login", "--token", testutil.TokenChef)
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "[OK] Signed in as Chef (CHEF)")
	assert.Equal(t, testutil.TokenChef, h.credentials(t).Token)

	res = h.run(t, "", "whoami")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Chef")
	assert.Contains(t, res.out, "chef@example.com")
}

func TestLogin_RejectedToken(t *testing.T) {
	h := newHarness(t)

	res := h.run(t, "", "login", "--token", "bogus")
	assert.ErrorContains(t, res.err, "rejected")
	assert.True(t, h.credentials(t).Empty())
}

func TestLogin_Dev(t *testing.T) {
	h := newHarness(t)

	res := h.run(t, "", "login", "--dev")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Producer (PRODUCER)")

	creds := h.credentials(t)
	assert.Equal(t, testutil.TokenProducer, creds.Token)
	assert.Equal(t, model.RoleProducer, creds.Role)
	assert.Equal(t, "producer@example.com", creds.Email)
}

func TestLogin_FlagRules(t *testing.T) {
	h := newHarness(t)

	assert.Error(t, h.run(t, "", "login").err)
	assert.Error(t, h.run(t, "", "login", "--dev", "--token", "x").err)
}

func TestWhoami_NotSignedIn(t *testing.T) {
	h := newHarness(t)
	res := h.run(t, "", "whoami")
	assert.ErrorIs(t, res.err, errNotLoggedIn)
}

func TestWhoami_JSON(t *testing.T) {
	h := newHarness(t)
	h.login(t, testutil.TokenService)

	res := h.run(t, "", "whoami", "--json")
	require.NoError(t, res.err)
	user := decodeJSON[model.User](t, res.out)
	assert.Equal(t, int64(2), user.ID)
	assert.Equal(t, model.RoleService, user.Role)
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.login(t, testutil.TokenChef)

	res := h.run(t, "", "logout")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Signed out")

	_, err := os.Stat(h.cfg.TokenFile)
	assert.True(t, os.IsNotExist(err))
	assert.ErrorIs(t, h.run(t, "", "whoami").err, errNotLoggedIn)
}

func TestExpiredCredentialIsCleared(t *testing.T) {
	h := newHarness(t)
	h.login(t, testutil.TokenChef)

	h.backend.Fail(http.MethodGet, "/users/me", http.StatusUnauthorized)
	res := h.run(t, "", "recipes", "list")
	assert.ErrorIs(t, res.err, errExpired)
	assert.True(t, h.credentials(t).Empty())
}
