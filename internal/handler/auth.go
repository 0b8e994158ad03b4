// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/recipe-console/internal/apiclient"
	"github.com/olegiv/recipe-console/internal/middleware"
	"github.com/olegiv/recipe-console/internal/render"
	"github.com/olegiv/recipe-console/internal/session"
)

// AuthHandler handles sign-in and sign-out.
type AuthHandler struct {
	base
	devLogin bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(d Deps) *AuthHandler {
	return &AuthHandler{base: d.base(), devLogin: d.DevLogin}
}

type loginData struct {
	DevLogin bool   `json:"devLogin"`
	OAuthURL string `json:"oauthUrl"`
}

// LoginForm handles GET /login. Members who are already signed in go to
// the dashboard.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if s := middleware.GetSession(r); s != nil && s.State() == session.StateAuthenticated {
		http.Redirect(w, r, middleware.HomePath, http.StatusSeeOther)
		return
	}
	h.view(w, r, http.StatusOK, render.View{
		Name:  "login",
		Title: "Sign in",
		Data: loginData{
			DevLogin: h.devLogin,
			OAuthURL: "/oauth2/authorization/google",
		},
	})
}

// DevLogin handles POST /login/dev.
func (h *AuthHandler) DevLogin(w http.ResponseWriter, r *http.Request) {
	if !h.devLogin {
		http.NotFound(w, r)
		return
	}

	dev, err := h.api.DevToken(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "dev token request failed", "error", err)
		flashError(w, r, h.renderer, middleware.LoginPath, apiclient.Message(err))
		return
	}

	h.signIn(w, r, session.Credentials{Token: dev.Token, Email: dev.Email, Role: dev.Role})
}

// OAuthCallback handles GET /oauth2/callback?token=.
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		flashError(w, r, h.renderer, middleware.LoginPath, "Sign-in did not return a token.")
		return
	}
	h.signIn(w, r, session.Credentials{Token: token})
}

func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request, creds session.Credentials) {
	s := middleware.GetSession(r)
	if s == nil {
		logAndInternalError(w, r, "sign-in without session middleware")
		return
	}
	if err := s.LoginWith(r.Context(), creds); err != nil {
		slog.WarnContext(r.Context(), "sign-in failed", "error", err)
		msg := apiclient.Message(err)
		if errors.Is(err, apiclient.ErrUnauthorized) {
			msg = "The sign-in was rejected. Please try again."
		}
		flashError(w, r, h.renderer, middleware.LoginPath, msg)
		return
	}

	user := s.User()
	if user == nil {
		flashError(w, r, h.renderer, middleware.LoginPath, "Sign-in did not complete. Please try again.")
		return
	}
	slog.InfoContext(r.Context(), "member signed in", "user_id", user.ID, "role", user.Role)
	flashSuccess(w, r, h.renderer, middleware.HomePath, "Welcome, "+user.Name)
}

// Logout handles POST /logout. No backend call is made.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if s := middleware.GetSession(r); s != nil {
		if err := s.Logout(r.Context()); err != nil {
			slog.ErrorContext(r.Context(), "logout failed", "error", err)
		}
	}
	flashSuccess(w, r, h.renderer, middleware.LoginPath, "You have been signed out.")
}
