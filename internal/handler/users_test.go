// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/testutil"
)

func TestUsersList_ProducerOnly(t *testing.T) {
	for _, token := range []string{testutil.TokenChef, testutil.TokenService, testutil.TokenPurchaser} {
		t.Run(token, func(t *testing.T) {
			c := newConsole(t)
			c.login(token)

			assertRedirect(t, c.get("/admin/users"), "/")
			assertRedirect(t, c.post("/admin/users/2/role", url.Values{"role": {"PRODUCER"}}), "/")
			assert.Equal(t, 0, c.backend.Hits("/users"))
		})
	}
}

func TestUsersList_OwnRowNotEditable(t *testing.T) {
	c := newConsole(t)
	c.login(testutil.TokenProducer)

	data := decodeData[userListData](t, c.view(c.get("/admin/users")))
	require.Len(t, data.Users, 4)
	assert.Equal(t, model.AllRoles(), data.Roles)
	for _, row := range data.Users {
		assert.Equal(t, row.ID != 4, row.Editable, "user %d", row.ID)
	}
}

func TestUsersUpdateRole(t *testing.T) {
	c := newConsole(t)
	c.login(testutil.TokenProducer)
	c.view(c.get("/admin/users"))

	v := c.follow(c.post("/admin/users/1/role", url.Values{"role": {"SERVICE"}}))
	assert.Equal(t, "Chef is now SERVICE", v.Flash)

	data := decodeData[userListData](t, v)
	for _, row := range data.Users {
		if row.ID == 1 {
			assert.Equal(t, model.RoleService, row.Role)
		}
	}
}

func TestUsersUpdateRole_Rejected(t *testing.T) {
	tests := []struct {
		name string
		path string
		role string
		want string
	}{
		{"own role", "/admin/users/4/role", "CHEF", "You cannot change your own role."},
		{"unknown role", "/admin/users/1/role", "ADMIN", "role: must be one of CHEF, SERVICE, PURCHASER, PRODUCER"},
		{"bad id", "/admin/users/x/role", "CHEF", "Member not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newConsole(t)
			c.login(testutil.TokenProducer)

			v := c.follow(c.post(tt.path, url.Values{"role": {tt.role}}))
			assert.Equal(t, "admin/users", v.View)
			assert.Equal(t, tt.want, v.Flash)
		})
	}
}
