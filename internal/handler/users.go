// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"

	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/permission"
	"github.com/olegiv/recipe-console/internal/query"
	"github.com/olegiv/recipe-console/internal/render"
)

const usersPath = "/admin/users"

// UsersHandler handles member administration. Its routes are limited to
// producers.
type UsersHandler struct {
	base
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(d Deps) *UsersHandler {
	return &UsersHandler{base: d.base()}
}

type userRow struct {
	model.User
	Editable bool `json:"editable"`
}

type userListData struct {
	Users []userRow    `json:"users"`
	Roles []model.Role `json:"roles"`
}

// List handles GET /admin/users. The signed-in member's own row is not
// editable.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, ok := requireResult(w, r, h.base, query.Users(r.Context(), h.queries, h.api), "/", "Members")
	if !ok {
		return
	}

	me := currentUser(r)
	rows := make([]userRow, 0, len(users))
	for i := range users {
		rows = append(rows, userRow{User: users[i], Editable: permission.CanChangeRole(me, &users[i])})
	}
	h.page(w, r, "admin/users", "Members", userListData{Users: rows, Roles: model.AllRoles()},
		render.Breadcrumb{Label: "Members", Active: true})
}

// UpdateRole handles POST /admin/users/{id}/role.
func (h *UsersHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r, usersPath, "Member")
	if !ok {
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, usersPath) {
		return
	}

	me := currentUser(r)
	if !permission.CanChangeRole(me, &model.User{ID: id}) {
		flashError(w, r, h.renderer, usersPath, "You cannot change your own role.")
		return
	}

	req := model.UpdateRoleRequest{Role: model.Role(r.PostFormValue("role"))}
	if err := h.forms.Validate(req); err != nil {
		h.mutationFailed(w, r, err, usersPath)
		return
	}

	user, err := query.UpdateUserRole(r.Context(), h.queries, h.api, id, req)
	if err != nil {
		h.mutationFailed(w, r, err, usersPath)
		return
	}
	flashSuccess(w, r, h.renderer, usersPath, fmt.Sprintf("%s is now %s", user.Name, user.Role))
}
