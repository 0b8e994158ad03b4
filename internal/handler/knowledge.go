// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/recipe-console/internal/apiclient"
	"github.com/olegiv/recipe-console/internal/markup"
	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/permission"
	"github.com/olegiv/recipe-console/internal/query"
	"github.com/olegiv/recipe-console/internal/render"
)

const knowledgePath = "/knowledge"

func articlePath(id int64) string {
	return fmt.Sprintf("%s/%d", knowledgePath, id)
}

var knowledgeCrumb = render.Breadcrumb{Label: "Knowledge base", URL: knowledgePath}

// KnowledgeHandler handles the knowledge base pages.
type KnowledgeHandler struct {
	base
}

// NewKnowledgeHandler creates a new KnowledgeHandler.
func NewKnowledgeHandler(d Deps) *KnowledgeHandler {
	return &KnowledgeHandler{base: d.base()}
}

type articleListData struct {
	Articles   []model.KnowledgeArticle  `json:"articles"`
	Categories []model.KnowledgeCategory `json:"categories"`
	CategoryID int64                     `json:"categoryId,omitempty"`
	Pagination Pagination                `json:"pagination"`
}

// List handles GET /knowledge.
func (h *KnowledgeHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	categories, ok := requireResult(w, r, h.base, query.Categories(ctx, h.queries, h.api), "/", "Categories")
	if !ok {
		return
	}

	params := apiclient.ListArticlesParams{CategoryID: queryInt64(r, "categoryId"), PageParams: pageParams(r)}
	page, ok := requireResult(w, r, h.base, query.Articles(ctx, h.queries, h.api, params), "/", "Articles")
	if !ok {
		return
	}

	h.page(w, r, "knowledge/list", "Knowledge base", articleListData{
		Articles:   page.Content,
		Categories: categories,
		CategoryID: params.CategoryID,
		Pagination: BuildPagination(page, knowledgePath, r.URL.Query()),
	}, knowledgeCrumb)
}

type searchData struct {
	Keyword string                   `json:"keyword"`
	Results []model.KnowledgeArticle `json:"results"`
}

// Search handles GET /knowledge/search?q=. A blank keyword makes no request.
func (h *KnowledgeHandler) Search(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.URL.Query().Get("q"))
	results, ok := requireResult(w, r, h.base, query.SearchArticles(r.Context(), h.queries, h.api, keyword), knowledgePath, "Search results")
	if !ok {
		return
	}
	if results == nil {
		results = []model.KnowledgeArticle{}
	}
	h.page(w, r, "knowledge/search", "Search", searchData{Keyword: keyword, Results: results},
		knowledgeCrumb, render.Breadcrumb{Label: "Search", Active: true})
}

type articleFormData struct {
	Article    *model.KnowledgeArticle   `json:"article,omitempty"`
	Categories []model.KnowledgeCategory `json:"categories"`
}

// NewForm handles GET /knowledge/new.
func (h *KnowledgeHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	categories, ok := requireResult(w, r, h.base, query.Categories(r.Context(), h.queries, h.api), knowledgePath, "Categories")
	if !ok {
		return
	}
	h.page(w, r, "knowledge/new", "New article", articleFormData{Categories: categories},
		knowledgeCrumb, render.Breadcrumb{Label: "New", Active: true})
}

// Create handles POST /knowledge.
func (h *KnowledgeHandler) Create(w http.ResponseWriter, r *http.Request) {
	back := knowledgePath + "/new"
	if !parseFormOrRedirect(w, r, h.renderer, back) {
		return
	}

	f := newFormReader(r)
	req := model.CreateKnowledgeArticleRequest{
		Title:            f.str("title"),
		Content:          f.raw("content"),
		CategoryID:       f.id("categoryId"),
		Tags:             f.str("tags"),
		RelatedRecipeIDs: f.ids("relatedRecipeIds"),
	}
	if err := h.validate(f, req); err != nil {
		h.mutationFailed(w, r, err, back)
		return
	}

	article, err := query.CreateArticle(r.Context(), h.queries, h.api, req)
	if err != nil {
		h.mutationFailed(w, r, err, back)
		return
	}
	flashSuccess(w, r, h.renderer, articlePath(article.ID), "Article published")
}

type articleDetailData struct {
	Article     *model.KnowledgeArticle `json:"article"`
	ContentHTML string                  `json:"contentHtml"`
	CanEdit     bool                    `json:"canEdit"`
}

// Show handles GET /knowledge/{id}. The Markdown body is rendered to
// sanitized HTML.
func (h *KnowledgeHandler) Show(w http.ResponseWriter, r *http.Request) {
	article, ok := h.requireArticle(w, r)
	if !ok {
		return
	}

	html, err := markup.Render(article.Content)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to render article", "article_id", article.ID, "error", err)
	}

	h.page(w, r, "knowledge/show", article.Title, articleDetailData{
		Article:     article,
		ContentHTML: html,
		CanEdit:     permission.CanEditArticle(currentUser(r), article),
	}, knowledgeCrumb, render.Breadcrumb{Label: article.Title, Active: true})
}

func (h *KnowledgeHandler) requireArticle(w http.ResponseWriter, r *http.Request) (*model.KnowledgeArticle, bool) {
	id, ok := h.requireID(w, r, knowledgePath, "Article")
	if !ok {
		return nil, false
	}
	article, ok := requireResult(w, r, h.base, query.Article(r.Context(), h.queries, h.api, id), knowledgePath, "Article")
	if !ok || article == nil {
		if ok {
			flashError(w, r, h.renderer, knowledgePath, "Article not found")
		}
		return nil, false
	}
	return article, true
}

// EditForm handles GET /knowledge/{id}/edit. Only the author or a producer
// may edit.
func (h *KnowledgeHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	article, ok := h.requireArticle(w, r)
	if !ok {
		return
	}
	if !permission.CanEditArticle(currentUser(r), article) {
		h.denied(w, r, articlePath(article.ID))
		return
	}
	categories, ok := requireResult(w, r, h.base, query.Categories(r.Context(), h.queries, h.api), articlePath(article.ID), "Categories")
	if !ok {
		return
	}
	h.page(w, r, "knowledge/edit", "Edit "+article.Title, articleFormData{Article: article, Categories: categories},
		knowledgeCrumb, render.Breadcrumb{Label: article.Title, URL: articlePath(article.ID)}, render.Breadcrumb{Label: "Edit", Active: true})
}

// Update handles POST /knowledge/{id}.
func (h *KnowledgeHandler) Update(w http.ResponseWriter, r *http.Request) {
	article, ok := h.requireArticle(w, r)
	if !ok {
		return
	}
	detail := articlePath(article.ID)
	back := detail + "/edit"
	if !permission.CanEditArticle(currentUser(r), article) {
		h.denied(w, r, detail)
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, back) {
		return
	}

	f := newFormReader(r)
	req := model.UpdateKnowledgeArticleRequest{
		Title:            f.str("title"),
		Content:          f.raw("content"),
		CategoryID:       f.id("categoryId"),
		Tags:             f.str("tags"),
		RelatedRecipeIDs: f.ids("relatedRecipeIds"),
	}
	if err := h.validate(f, req); err != nil {
		h.mutationFailed(w, r, err, back)
		return
	}

	if _, err := query.UpdateArticle(r.Context(), h.queries, h.api, article.ID, req); err != nil {
		h.mutationFailed(w, r, err, back)
		return
	}
	flashSuccess(w, r, h.renderer, detail, "Article updated")
}

// Delete handles POST /knowledge/{id}/delete. The deletion is confirmed
// first.
func (h *KnowledgeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	article, ok := h.requireArticle(w, r)
	if !ok {
		return
	}
	detail := articlePath(article.ID)
	if !permission.CanEditArticle(currentUser(r), article) {
		h.denied(w, r, detail)
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, detail) {
		return
	}
	if !h.confirmed(w, r, confirmData{
		Message: fmt.Sprintf("Delete %q?", article.Title),
		Action:  detail + "/delete",
		Cancel:  detail,
	}) {
		return
	}

	if err := query.DeleteArticle(r.Context(), h.queries, h.api, article.ID); err != nil {
		h.mutationFailed(w, r, err, detail)
		return
	}
	flashSuccess(w, r, h.renderer, knowledgePath, "Article deleted")
}
