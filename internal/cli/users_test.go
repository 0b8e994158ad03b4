// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/recipe-console/internal/apiclient"
	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/testutil"
)

func TestUsersList(t *testing.T) {
	h := newHarness(t)
	h.login(t, testutil.TokenProducer)

	res := h.run(t, "", "users", "list")
	require.NoError(t, res.err)
	for _, name := range []string{"Chef", "Service", "Purchaser", "Producer"} {
		assert.Contains(t, res.out, name)
	}
	assert.Contains(t, res.out, "(you)")

	res = h.run(t, "", "members", "ls", "--json")
	require.NoError(t, res.err)
	assert.Len(t, decodeJSON[[]model.User](t, res.out), 4)
}

func TestUsers_ProducersOnly(t *testing.T) {
	h := newHarness(t)
	h.login(t, testutil.TokenChef)

	res := h.run(t, "", "users", "list")
	assert.ErrorContains(t, res.err, "your role (CHEF) cannot manage members")
	assert.Zero(t, h.backend.Hits("/users"))
}

func TestUsersSetRole(t *testing.T) {
	h := newHarness(t)
	h.login(t, testutil.TokenProducer)

	res := h.run(t, "", "users", "set-role", "1", "service")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Chef is now SERVICE")

	res = h.run(t, "", "users", "set-role", "1", "SERVICE")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Chef is already SERVICE")
}

func TestUsersSetRole_Rejections(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"own role", []string{"4", "CHEF"}, "cannot change your own role"},
		{"unknown member", []string{"99", "CHEF"}, "member 99 not found"},
		{"bad id", []string{"x", "CHEF"}, `invalid member id "x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.login(t, testutil.TokenProducer)

			res := h.run(t, "", append([]string{"users", "set-role"}, tt.args...)...)
			assert.ErrorContains(t, res.err, tt.want)
		})
	}

	t.Run("unknown role", func(t *testing.T) {
		h := newHarness(t)
		h.login(t, testutil.TokenProducer)

		res := h.run(t, "", "users", "set-role", "1", "SOMMELIER")
		assert.ErrorIs(t, res.err, apiclient.ErrValidation)
	})
}
