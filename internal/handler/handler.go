// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the recipe console's page handlers. Each page
// composes the query cache, the permission predicates and the backend
// resource functions, and renders a JSON view model.
package handler

import (
	"net/http"
	"time"

	"github.com/olegiv/recipe-console/internal/apiclient"
	"github.com/olegiv/recipe-console/internal/form"
	"github.com/olegiv/recipe-console/internal/query"
	"github.com/olegiv/recipe-console/internal/render"
)

// Deps carries the shared services the handlers are built from.
type Deps struct {
	Renderer *render.Renderer
	API      *apiclient.Client
	Queries  *query.Client
	Forms    *form.Validator

	// DevLogin enables the development sign-in through the backend's
	// /dev/token endpoint.
	DevLogin bool
	// PollInterval is how often the thread view refetches messages.
	PollInterval time.Duration
	// LoginLimit, when set, wraps the sign-in endpoints.
	LoginLimit func(http.Handler) http.Handler
}

func (d Deps) base() base {
	forms := d.Forms
	if forms == nil {
		forms = form.New()
	}
	return base{renderer: d.Renderer, api: d.API, queries: d.Queries, forms: forms}
}
