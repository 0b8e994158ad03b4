// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/olegiv/recipe-console/internal/model"
)

// GetMe fetches the profile of the token's owner.
func (c *Client) GetMe(ctx context.Context) (*model.User, error) {
	return get[*model.User](ctx, c, "/users/me", nil)
}

// ListUsers fetches all members.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	return get[[]model.User](ctx, c, "/users", nil)
}

// UpdateUserRole changes a member's role.
func (c *Client) UpdateUserRole(ctx context.Context, id int64, req model.UpdateRoleRequest) (*model.User, error) {
	return send[*model.User](ctx, c, http.MethodPut, fmt.Sprintf("/users/%d/role", id), req)
}

// DevToken requests a development token. Only available when the backend
// runs with its development profile.
func (c *Client) DevToken(ctx context.Context) (*model.DevTokenResponse, error) {
	return get[*model.DevTokenResponse](ctx, c, "/dev/token", nil)
}
