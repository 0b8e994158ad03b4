// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/recipe-console/internal/apiclient"
	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/query"
	"github.com/olegiv/recipe-console/internal/render"
)

const aiPath = "/ai"

func threadPath(id int64) string {
	return fmt.Sprintf("%s/threads/%d", aiPath, id)
}

var aiCrumb = render.Breadcrumb{Label: "AI consultation", URL: aiPath}

// AIHandler handles the AI consultation pages.
type AIHandler struct {
	base
	pollInterval time.Duration
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(d Deps) *AIHandler {
	interval := d.PollInterval
	if interval <= 0 {
		interval = query.DefaultPollInterval
	}
	return &AIHandler{base: d.base(), pollInterval: interval}
}

type threadListData struct {
	Threads    []model.AiThread `json:"threads"`
	Pagination Pagination       `json:"pagination"`
}

// Threads handles GET /ai.
func (h *AIHandler) Threads(w http.ResponseWriter, r *http.Request) {
	page, ok := requireResult(w, r, h.base, query.Threads(r.Context(), h.queries, h.api, pageParams(r)), "/", "Threads")
	if !ok {
		return
	}
	h.page(w, r, "ai/threads", "AI consultation", threadListData{
		Threads:    page.Content,
		Pagination: BuildPagination(page, aiPath, r.URL.Query()),
	}, aiCrumb)
}

type newThreadData struct {
	RecipeID       int64 `json:"recipeId,omitempty"`
	MaxThemeLength int   `json:"maxThemeLength"`
}

// NewForm handles GET /ai/new. ?recipeId links the thread to a recipe.
func (h *AIHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "ai/new", "New consultation", newThreadData{
		RecipeID:       queryInt64(r, "recipeId"),
		MaxThemeLength: model.MaxThreadThemeLength,
	}, aiCrumb, render.Breadcrumb{Label: "New", Active: true})
}

// Create handles POST /ai/threads.
func (h *AIHandler) Create(w http.ResponseWriter, r *http.Request) {
	back := aiPath + "/new"
	if !parseFormOrRedirect(w, r, h.renderer, back) {
		return
	}

	f := newFormReader(r)
	req := model.CreateAiThreadRequest{
		Theme:          f.str("theme"),
		RecipeID:       f.optID("recipeId"),
		InitialMessage: f.raw("initialMessage"),
	}
	if err := h.validate(f, req); err != nil {
		h.mutationFailed(w, r, err, back)
		return
	}

	thread, err := query.CreateThread(r.Context(), h.queries, h.api, req)
	if err != nil {
		h.mutationFailed(w, r, err, back)
		return
	}
	http.Redirect(w, r, threadPath(thread.ID), http.StatusSeeOther)
}

type threadData struct {
	Thread         *model.AiThread   `json:"thread"`
	Messages       []model.AiMessage `json:"messages"`
	PollURL        string            `json:"pollUrl"`
	PollIntervalMS int64             `json:"pollIntervalMs"`
}

// Show handles GET /ai/threads/{id}.
func (h *AIHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r, aiPath, "Thread")
	if !ok {
		return
	}
	ctx := r.Context()
	thread, ok := requireResult(w, r, h.base, query.Thread(ctx, h.queries, h.api, id), aiPath, "Thread")
	if !ok {
		return
	}
	messages, ok := requireResult(w, r, h.base, query.Messages(ctx, h.queries, h.api, id), aiPath, "Thread")
	if !ok {
		return
	}
	if messages == nil {
		messages = []model.AiMessage{}
	}

	title := "Consultation"
	if thread != nil {
		title = thread.Theme
	}
	h.page(w, r, "ai/thread", title, threadData{
		Thread:         thread,
		Messages:       messages,
		PollURL:        threadPath(id) + "/messages",
		PollIntervalMS: h.pollInterval.Milliseconds(),
	}, aiCrumb, render.Breadcrumb{Label: title, Active: true})
}

type messagesData struct {
	ThreadID int64             `json:"threadId"`
	Messages []model.AiMessage `json:"messages"`
}

// Messages handles GET /ai/threads/{id}/messages, the poll endpoint. It
// always refetches and answers with JSON errors rather than redirects.
func (h *AIHandler) Messages(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r, aiPath, "Thread")
	if !ok {
		return
	}

	res := query.RefetchMessages(r.Context(), h.queries, h.api, id)
	switch {
	case res.Loading:
		return
	case res.Err != nil && errors.Is(res.Err, apiclient.ErrUnauthorized):
		render.JSONError(w, http.StatusUnauthorized, apiclient.MessageSessionExpired)
		return
	case res.Err != nil && errors.Is(res.Err, apiclient.ErrNotFound):
		render.JSONError(w, http.StatusNotFound, "Thread not found")
		return
	case res.Err != nil && !res.FromCache:
		slog.WarnContext(r.Context(), "message poll failed", "thread_id", id, "error", res.Err)
		render.JSONError(w, http.StatusBadGateway, apiclient.Message(res.Err))
		return
	}

	messages := res.Data
	if messages == nil {
		messages = []model.AiMessage{}
	}
	// Written directly so a poll never consumes a pending flash message.
	writeJSON(w, http.StatusOK, messagesData{ThreadID: id, Messages: messages})
}

// Send handles POST /ai/threads/{id}/messages.
func (h *AIHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r, aiPath, "Thread")
	if !ok {
		return
	}
	back := threadPath(id)
	if !parseFormOrRedirect(w, r, h.renderer, back) {
		return
	}

	req := model.SendAiMessageRequest{Message: r.PostFormValue("message")}
	if err := h.forms.Validate(req); err != nil {
		h.mutationFailed(w, r, err, back)
		return
	}

	if _, err := query.SendMessage(r.Context(), h.queries, h.api, id, req); err != nil {
		h.mutationFailed(w, r, err, back)
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}
