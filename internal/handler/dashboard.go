// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/permission"
)

// DashboardHandler serves the landing page.
type DashboardHandler struct {
	base
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(d Deps) *DashboardHandler {
	return &DashboardHandler{base: d.base()}
}

type dashboardData struct {
	Welcome      string                   `json:"welcome"`
	Role         model.Role               `json:"role"`
	QuickActions []permission.QuickAction `json:"quickActions"`
}

// Show handles GET /.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	h.page(w, r, "dashboard", "Dashboard", dashboardData{
		Welcome:      "Welcome, " + user.Name,
		Role:         user.Role,
		QuickActions: permission.QuickActions(user.Role),
	})
}
