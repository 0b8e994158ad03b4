// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// User is a member profile.
type User struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	PictureURL *string   `json:"pictureUrl"`
	Role       Role      `json:"role"`
	Enabled    bool      `json:"enabled"`
	CreatedAt  LocalTime `json:"createdAt"`
	UpdatedAt  LocalTime `json:"updatedAt"`
}

// UpdateRoleRequest changes a member's role.
type UpdateRoleRequest struct {
	Role Role `json:"role" validate:"required,oneof=CHEF SERVICE PURCHASER PRODUCER"`
}

// DevTokenResponse is returned by the development login endpoint.
type DevTokenResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
