// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/recipe-console/internal/apiclient"
	"github.com/olegiv/recipe-console/internal/form"
	"github.com/olegiv/recipe-console/internal/middleware"
	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/query"
	"github.com/olegiv/recipe-console/internal/render"
)

// flashAndRedirect sets a flash message and redirects with 303.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, render.FlashError)
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, render.FlashSuccess)
}

// parseFormOrRedirect parses the request form and redirects with an error
// message on failure.
func parseFormOrRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, redirectURL string) bool {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, renderer, redirectURL, "Invalid form data")
		return false
	}
	return true
}

// logAndInternalError logs an error and writes a 500 JSON response.
func logAndInternalError(w http.ResponseWriter, r *http.Request, logMsg string, args ...any) {
	slog.ErrorContext(r.Context(), logMsg, args...)
	render.JSONError(w, http.StatusInternalServerError, "Internal Server Error")
}

// writeJSON writes v as the whole response, bypassing the view envelope.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// base holds what every page handler needs.
type base struct {
	renderer *render.Renderer
	api      *apiclient.Client
	queries  *query.Client
	forms    *form.Validator
}

// validate reports unparsable fields first, then the constraints of req.
func (b base) validate(f *formReader, req any) error {
	if err := f.err(); err != nil {
		return err
	}
	return b.forms.Validate(req)
}

// page renders a 200 view for the signed-in member.
func (b base) page(w http.ResponseWriter, r *http.Request, name, title string, data any, crumbs ...render.Breadcrumb) {
	b.view(w, r, http.StatusOK, render.View{Name: name, Title: title, Data: data, Breadcrumbs: crumbs})
}

func (b base) view(w http.ResponseWriter, r *http.Request, status int, v render.View) {
	if v.User == nil {
		v.User = middleware.GetUser(r)
	}
	if err := b.renderer.Render(w, r, status, v); err != nil {
		logAndInternalError(w, r, "render failed", "view", v.Name, "error", err)
	}
}

// mutationFailed redirects after a failed mutation or a form that did not
// pass its constraints. Rejected credentials go to the sign-in page; every
// other failure returns to back with the message to show.
func (b base) mutationFailed(w http.ResponseWriter, r *http.Request, err error, back string) {
	switch {
	case errors.Is(err, apiclient.ErrUnauthorized):
		flashError(w, r, b.renderer, middleware.LoginPath, apiclient.MessageSessionExpired)
		return
	case errors.Is(err, apiclient.ErrValidation), apiclient.StatusOf(err) >= 400 && apiclient.StatusOf(err) < 500:
		slog.InfoContext(r.Context(), "request rejected", "error", err)
	default:
		slog.ErrorContext(r.Context(), "mutation failed", "error", err)
	}
	flashError(w, r, b.renderer, back, apiclient.Message(err))
}

// requireResult unwraps a query result. On failure it redirects and returns
// false: to the sign-in page for rejected credentials, otherwise to parent
// with a flash. A stale cached value is served when the refetch failed.
func requireResult[T any](w http.ResponseWriter, r *http.Request, b base, res query.Result[T], parent, entityName string) (T, bool) {
	var zero T
	if res.Loading {
		// The request was cancelled; nobody is waiting for a response.
		return zero, false
	}
	if res.Err == nil {
		return res.Data, true
	}

	switch {
	case errors.Is(res.Err, apiclient.ErrUnauthorized):
		flashError(w, r, b.renderer, middleware.LoginPath, apiclient.MessageSessionExpired)
	case errors.Is(res.Err, apiclient.ErrNotFound):
		flashError(w, r, b.renderer, parent, entityName+" not found")
	case res.FromCache:
		slog.WarnContext(r.Context(), "serving stale "+entityName, "error", res.Err)
		return res.Data, true
	default:
		slog.ErrorContext(r.Context(), "failed to load "+entityName, "error", res.Err)
		flashError(w, r, b.renderer, parent, apiclient.Message(res.Err))
	}
	return zero, false
}

// requireID parses the {id} URL parameter, redirecting to parent when it is
// not a positive integer.
func (b base) requireID(w http.ResponseWriter, r *http.Request, parent, entityName string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		flashError(w, r, b.renderer, parent, entityName+" not found")
		return 0, false
	}
	return id, true
}

// denied redirects a member whose role does not allow the action.
func (b base) denied(w http.ResponseWriter, r *http.Request, back string) {
	slog.WarnContext(r.Context(), "action not permitted", "role", currentRole(r))
	flashError(w, r, b.renderer, back, "You do not have permission to do that.")
}

// currentUser returns the signed-in member. Guarded routes always have one.
func currentUser(r *http.Request) *model.User {
	if u := middleware.GetUser(r); u != nil {
		return u
	}
	return &model.User{}
}

func currentRole(r *http.Request) model.Role {
	return currentUser(r).Role
}

// confirmData is the confirmation step shown before a destructive action.
type confirmData struct {
	Message string            `json:"message"`
	Action  string            `json:"action"`
	Fields  map[string]string `json:"fields,omitempty"`
	Cancel  string            `json:"cancel"`
}

// confirmed reports whether the form carries confirm=yes. Without it the
// confirmation view is rendered and the caller must stop.
func (b base) confirmed(w http.ResponseWriter, r *http.Request, c confirmData) bool {
	if r.PostFormValue("confirm") == "yes" {
		return true
	}
	if c.Fields == nil {
		c.Fields = map[string]string{}
	}
	c.Fields["confirm"] = "yes"
	b.page(w, r, "confirm", "Please confirm", c)
	return false
}
