// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/recipe-console/internal/middleware"
	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/render"
)

// Route is one console endpoint with its access requirements.
type Route struct {
	Method  string
	Pattern string
	// Auth requires an authenticated session.
	Auth bool
	// Roles, when set, limits the route to members holding one of them.
	Roles      []model.Role
	Middleware []func(http.Handler) http.Handler
	Handler    http.HandlerFunc
}

// Routes returns the console's page routes.
func Routes(d Deps) []Route {
	authH := NewAuthHandler(d)
	dashboardH := NewDashboardHandler(d)
	recipesH := NewRecipesHandler(d)
	knowledgeH := NewKnowledgeHandler(d)
	aiH := NewAIHandler(d)
	feedbackH := NewFeedbackHandler(d)
	usersH := NewUsersHandler(d)

	var loginMW []func(http.Handler) http.Handler
	if d.LoginLimit != nil {
		loginMW = append(loginMW, d.LoginLimit)
	}
	producer := []model.Role{model.RoleProducer}

	return []Route{
		{Method: http.MethodGet, Pattern: "/login", Handler: authH.LoginForm},
		{Method: http.MethodPost, Pattern: "/login/dev", Middleware: loginMW, Handler: authH.DevLogin},
		{Method: http.MethodGet, Pattern: "/oauth2/callback", Middleware: loginMW, Handler: authH.OAuthCallback},
		{Method: http.MethodPost, Pattern: "/logout", Handler: authH.Logout},

		{Method: http.MethodGet, Pattern: "/", Auth: true, Handler: dashboardH.Show},

		{Method: http.MethodGet, Pattern: "/recipes", Auth: true, Handler: recipesH.List},
		{Method: http.MethodGet, Pattern: "/recipes/new", Auth: true, Handler: recipesH.NewForm},
		{Method: http.MethodPost, Pattern: "/recipes", Auth: true, Handler: recipesH.Create},
		{Method: http.MethodGet, Pattern: "/recipes/{id}", Auth: true, Handler: recipesH.Show},
		{Method: http.MethodGet, Pattern: "/recipes/{id}/edit", Auth: true, Handler: recipesH.EditForm},
		{Method: http.MethodPost, Pattern: "/recipes/{id}", Auth: true, Handler: recipesH.Update},
		{Method: http.MethodPost, Pattern: "/recipes/{id}/status", Auth: true, Handler: recipesH.UpdateStatus},
		{Method: http.MethodPost, Pattern: "/recipes/{id}/delete", Auth: true, Handler: recipesH.Delete},
		{Method: http.MethodGet, Pattern: "/recipes/{id}/history", Auth: true, Handler: recipesH.History},
		{Method: http.MethodGet, Pattern: "/recipes/{id}/service-design", Auth: true, Handler: recipesH.ServiceDesignForm},
		{Method: http.MethodPost, Pattern: "/recipes/{id}/service-design", Auth: true, Handler: recipesH.UpdateServiceDesign},
		{Method: http.MethodGet, Pattern: "/recipes/{id}/experience-design", Auth: true, Handler: recipesH.ExperienceDesignForm},
		{Method: http.MethodPost, Pattern: "/recipes/{id}/experience-design", Auth: true, Handler: recipesH.UpdateExperienceDesign},

		{Method: http.MethodGet, Pattern: "/knowledge", Auth: true, Handler: knowledgeH.List},
		{Method: http.MethodGet, Pattern: "/knowledge/search", Auth: true, Handler: knowledgeH.Search},
		{Method: http.MethodGet, Pattern: "/knowledge/new", Auth: true, Handler: knowledgeH.NewForm},
		{Method: http.MethodPost, Pattern: "/knowledge", Auth: true, Handler: knowledgeH.Create},
		{Method: http.MethodGet, Pattern: "/knowledge/{id}", Auth: true, Handler: knowledgeH.Show},
		{Method: http.MethodGet, Pattern: "/knowledge/{id}/edit", Auth: true, Handler: knowledgeH.EditForm},
		{Method: http.MethodPost, Pattern: "/knowledge/{id}", Auth: true, Handler: knowledgeH.Update},
		{Method: http.MethodPost, Pattern: "/knowledge/{id}/delete", Auth: true, Handler: knowledgeH.Delete},

		{Method: http.MethodGet, Pattern: "/ai", Auth: true, Handler: aiH.Threads},
		{Method: http.MethodGet, Pattern: "/ai/new", Auth: true, Handler: aiH.NewForm},
		{Method: http.MethodPost, Pattern: "/ai/threads", Auth: true, Handler: aiH.Create},
		{Method: http.MethodGet, Pattern: "/ai/threads/{id}", Auth: true, Handler: aiH.Show},
		{Method: http.MethodGet, Pattern: "/ai/threads/{id}/messages", Auth: true, Handler: aiH.Messages},
		{Method: http.MethodPost, Pattern: "/ai/threads/{id}/messages", Auth: true, Handler: aiH.Send},

		{Method: http.MethodGet, Pattern: "/feedback", Auth: true, Handler: feedbackH.List},
		{Method: http.MethodGet, Pattern: "/feedback/new", Auth: true, Handler: feedbackH.NewForm},
		{Method: http.MethodPost, Pattern: "/feedback", Auth: true, Handler: feedbackH.Create},
		{Method: http.MethodPost, Pattern: "/feedback/{id}/delete", Auth: true, Handler: feedbackH.Delete},
		{Method: http.MethodGet, Pattern: "/feedback/summaries", Auth: true, Handler: feedbackH.Summaries},
		{Method: http.MethodPost, Pattern: "/feedback/summaries", Auth: true, Handler: feedbackH.Generate},
		{Method: http.MethodGet, Pattern: "/feedback/summaries/{id}", Auth: true, Handler: feedbackH.ShowSummary},
		{Method: http.MethodGet, Pattern: "/feedback/trend", Auth: true, Handler: feedbackH.Trend},

		{Method: http.MethodGet, Pattern: "/admin/users", Auth: true, Roles: producer, Handler: usersH.List},
		{Method: http.MethodPost, Pattern: "/admin/users/{id}/role", Auth: true, Roles: producer, Handler: usersH.UpdateRole},
	}
}

// Mount registers routes on r. A route's own middleware runs first, then
// the session guard, then the role guard.
func Mount(r chi.Router, routes []Route, renderer *render.Renderer) {
	requireSession := middleware.RequireSession(renderer)
	for _, rt := range routes {
		chain := append([]func(http.Handler) http.Handler{}, rt.Middleware...)
		if rt.Auth {
			chain = append(chain, requireSession)
		}
		if len(rt.Roles) > 0 {
			chain = append(chain, middleware.RequireRoles(rt.Roles...))
		}
		r.With(chain...).Method(rt.Method, rt.Pattern, rt.Handler)
	}
}

// MountHealth registers the health endpoints.
func MountHealth(r chi.Router, h *HealthHandler) {
	r.Get("/health", h.Health)
	r.Get("/health/live", h.Liveness)
	r.Get("/health/ready", h.Readiness)
}
