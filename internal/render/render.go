// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render writes console page view models as JSON and carries flash
// messages across redirects in the scs session.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/recipe-console/internal/model"
)

// Flash types.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Session keys for the flash message.
const (
	sessionKeyFlash     = "flash"
	sessionKeyFlashType = "flash_type"
)

// Renderer writes views.
type Renderer struct {
	sessionManager *scs.SessionManager
	isDev          bool
}

// Config holds renderer configuration.
type Config struct {
	SessionManager *scs.SessionManager
	IsDev          bool
}

// New creates a Renderer. A nil SessionManager disables flash messages.
func New(cfg Config) *Renderer {
	return &Renderer{
		sessionManager: cfg.SessionManager,
		isDev:          cfg.IsDev,
	}
}

// Breadcrumb is one step of the navigation trail.
type Breadcrumb struct {
	Label  string `json:"label"`
	URL    string `json:"url,omitempty"`
	Active bool   `json:"active,omitempty"`
}

// View is the page view model sent to the browser.
type View struct {
	Name        string       `json:"view"`
	Title       string       `json:"title"`
	User        *model.User  `json:"user,omitempty"`
	Flash       string       `json:"flash,omitempty"`
	FlashType   string       `json:"flashType,omitempty"`
	Breadcrumbs []Breadcrumb `json:"breadcrumbs,omitempty"`
	Data        any          `json:"data,omitempty"`
}

// Render writes v with the given status. A pending flash message is popped
// from the session into the view.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, v View) error {
	if r.sessionManager != nil && v.Flash == "" {
		if flash := r.sessionManager.PopString(req.Context(), sessionKeyFlash); flash != "" {
			v.Flash = flash
			v.FlashType = r.sessionManager.PopString(req.Context(), sessionKeyFlashType)
			if v.FlashType == "" {
				v.FlashType = FlashInfo
			}
		}
	}

	// Encode to a buffer first so a failure can still produce a clean 500.
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	if r.isDev {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding view %s: %w", v.Name, err)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

// SetFlash stores a flash message for the next rendered view.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager != nil {
		r.sessionManager.Put(req.Context(), sessionKeyFlash, message)
		r.sessionManager.Put(req.Context(), sessionKeyFlashType, flashType)
	}
}

// ErrorBody is the JSON body of non-view error responses.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSONError writes a bare JSON error body.
func JSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorBody{Error: message})
}
