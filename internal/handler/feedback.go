// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/olegiv/recipe-console/internal/apiclient"
	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/permission"
	"github.com/olegiv/recipe-console/internal/query"
	"github.com/olegiv/recipe-console/internal/render"
)

const (
	feedbackPath  = "/feedback"
	summariesPath = "/feedback/summaries"
)

func summaryPath(id int64) string {
	return fmt.Sprintf("%s/%d", summariesPath, id)
}

func summariesFor(recipeID int64) string {
	return summariesPath + "?" + url.Values{"recipeId": {strconv.FormatInt(recipeID, 10)}}.Encode()
}

var feedbackCrumb = render.Breadcrumb{Label: "Feedback", URL: feedbackPath}

// FeedbackHandler handles customer feedback and summary pages.
type FeedbackHandler struct {
	base
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(d Deps) *FeedbackHandler {
	return &FeedbackHandler{base: d.base()}
}

type feedbackListData struct {
	Feedbacks  []model.ProductFeedback `json:"feedbacks"`
	RecipeID   int64                   `json:"recipeId,omitempty"`
	Pagination Pagination              `json:"pagination"`
	CanCreate  bool                    `json:"canCreate"`
	CanDelete  bool                    `json:"canDelete"`
}

// List handles GET /feedback.
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	params := apiclient.ListFeedbacksParams{
		RecipeID:   queryInt64(r, "recipeId"),
		StoreID:    queryInt64(r, "storeId"),
		PageParams: pageParams(r),
	}
	page, ok := requireResult(w, r, h.base, query.Feedbacks(r.Context(), h.queries, h.api, params), "/", "Feedback")
	if !ok {
		return
	}

	role := currentRole(r)
	h.page(w, r, "feedback/list", "Feedback", feedbackListData{
		Feedbacks:  page.Content,
		RecipeID:   params.RecipeID,
		Pagination: BuildPagination(page, feedbackPath, r.URL.Query()),
		CanCreate:  permission.CanCreateFeedback(role),
		CanDelete:  permission.CanCreateFeedback(role),
	}, feedbackCrumb)
}

type feedbackFormData struct {
	RecipeID          int64                    `json:"recipeId,omitempty"`
	Recipes           []model.RecipeListItem   `json:"recipes"`
	CollectionMethods []model.CollectionMethod `json:"collectionMethods"`
	ScoreMin          int                      `json:"scoreMin"`
	ScoreMax          int                      `json:"scoreMax"`
}

// NewForm handles GET /feedback/new. The recipe picker lists the first page
// of recipes.
func (h *FeedbackHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	if !permission.CanCreateFeedback(currentRole(r)) {
		h.denied(w, r, feedbackPath)
		return
	}
	params := apiclient.ListRecipesParams{PageParams: apiclient.PageParams{Size: model.MaxPageSize}}
	recipes, ok := requireResult(w, r, h.base, query.Recipes(r.Context(), h.queries, h.api, params), feedbackPath, "Recipes")
	if !ok {
		return
	}
	h.page(w, r, "feedback/new", "Register feedback", feedbackFormData{
		RecipeID:          queryInt64(r, "recipeId"),
		Recipes:           recipes.Content,
		CollectionMethods: model.AllCollectionMethods(),
		ScoreMin:          model.ScoreMin,
		ScoreMax:          model.ScoreMax,
	}, feedbackCrumb, render.Breadcrumb{Label: "New", Active: true})
}

// Create handles POST /feedback.
func (h *FeedbackHandler) Create(w http.ResponseWriter, r *http.Request) {
	back := feedbackPath + "/new"
	if !permission.CanCreateFeedback(currentRole(r)) {
		h.denied(w, r, feedbackPath)
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, back) {
		return
	}

	f := newFormReader(r)
	req := model.CreateProductFeedbackRequest{
		RecipeID:          f.id("recipeId"),
		StoreID:           f.optID("storeId"),
		PeriodStart:       f.str("periodStart"),
		PeriodEnd:         f.str("periodEnd"),
		SatisfactionScore: f.integer("satisfactionScore"),
		EmotionScore:      f.optInteger("emotionScore"),
		Comment:           f.str("comment"),
		CollectionMethod:  model.CollectionMethod(f.str("collectionMethod")),
	}
	if err := h.validate(f, req); err != nil {
		h.mutationFailed(w, r, err, back)
		return
	}

	if _, err := query.CreateFeedback(r.Context(), h.queries, h.api, req); err != nil {
		h.mutationFailed(w, r, err, back)
		return
	}
	flashSuccess(w, r, h.renderer, feedbackPath, "Feedback registered")
}

// Delete handles POST /feedback/{id}/delete. The deletion is confirmed
// first.
func (h *FeedbackHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r, feedbackPath, "Feedback")
	if !ok {
		return
	}
	if !permission.CanCreateFeedback(currentRole(r)) {
		h.denied(w, r, feedbackPath)
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, feedbackPath) {
		return
	}
	if !h.confirmed(w, r, confirmData{
		Message: "Delete this feedback record?",
		Action:  fmt.Sprintf("%s/%d/delete", feedbackPath, id),
		Cancel:  feedbackPath,
	}) {
		return
	}

	if err := query.DeleteFeedback(r.Context(), h.queries, h.api, id); err != nil {
		h.mutationFailed(w, r, err, feedbackPath)
		return
	}
	flashSuccess(w, r, h.renderer, feedbackPath, "Feedback deleted")
}

type summaryListData struct {
	RecipeID   int64                   `json:"recipeId,omitempty"`
	Summaries  []model.FeedbackSummary `json:"summaries"`
	Pagination *Pagination             `json:"pagination,omitempty"`
}

// Summaries handles GET /feedback/summaries?recipeId=. Without a recipe the
// page only offers the picker.
func (h *FeedbackHandler) Summaries(w http.ResponseWriter, r *http.Request) {
	params := apiclient.ListSummariesParams{RecipeID: queryInt64(r, "recipeId"), PageParams: pageParams(r)}
	page, ok := requireResult(w, r, h.base, query.Summaries(r.Context(), h.queries, h.api, params), feedbackPath, "Summaries")
	if !ok {
		return
	}

	data := summaryListData{RecipeID: params.RecipeID, Summaries: page.Content}
	if data.Summaries == nil {
		data.Summaries = []model.FeedbackSummary{}
	}
	if params.RecipeID > 0 {
		pg := BuildPagination(page, summariesPath, r.URL.Query())
		data.Pagination = &pg
	}
	h.page(w, r, "feedback/summaries", "Feedback summaries", data,
		feedbackCrumb, render.Breadcrumb{Label: "Summaries", Active: true})
}

// Generate handles POST /feedback/summaries.
func (h *FeedbackHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, summariesPath) {
		return
	}

	f := newFormReader(r)
	req := model.GenerateFeedbackSummaryRequest{
		RecipeID:    f.id("recipeId"),
		PeriodStart: f.str("periodStart"),
		PeriodEnd:   f.str("periodEnd"),
	}
	back := summariesPath
	if req.RecipeID > 0 {
		back = summariesFor(req.RecipeID)
	}
	if err := h.validate(f, req); err != nil {
		h.mutationFailed(w, r, err, back)
		return
	}

	summary, err := query.GenerateSummary(r.Context(), h.queries, h.api, req)
	if err != nil {
		h.mutationFailed(w, r, err, back)
		return
	}
	flashSuccess(w, r, h.renderer, summaryPath(summary.ID), "Summary generated")
}

// ShowSummary handles GET /feedback/summaries/{id}.
func (h *FeedbackHandler) ShowSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r, summariesPath, "Summary")
	if !ok {
		return
	}
	summary, ok := requireResult(w, r, h.base, query.Summary(r.Context(), h.queries, h.api, id), summariesPath, "Summary")
	if !ok {
		return
	}
	if summary == nil {
		flashError(w, r, h.renderer, summariesPath, "Summary not found")
		return
	}
	h.page(w, r, "feedback/summary", summary.RecipeTitle, summary,
		feedbackCrumb, render.Breadcrumb{Label: "Summaries", URL: summariesFor(summary.RecipeID)},
		render.Breadcrumb{Label: summary.PeriodStart + " to " + summary.PeriodEnd, Active: true})
}

// TrendPoint is one period of the satisfaction trend chart.
type TrendPoint struct {
	PeriodStart     string   `json:"periodStart"`
	PeriodEnd       string   `json:"periodEnd"`
	AvgSatisfaction float64  `json:"avgSatisfaction"`
	AvgEmotion      *float64 `json:"avgEmotion,omitempty"`
	FeedbackCount   int      `json:"feedbackCount"`
}

type trendData struct {
	RecipeID int64        `json:"recipeId,omitempty"`
	Points   []TrendPoint `json:"points"`
}

// Trend handles GET /feedback/trend?recipeId=.
func (h *FeedbackHandler) Trend(w http.ResponseWriter, r *http.Request) {
	recipeID := queryInt64(r, "recipeId")
	summaries, ok := requireResult(w, r, h.base, query.Trend(r.Context(), h.queries, h.api, recipeID), feedbackPath, "Trend")
	if !ok {
		return
	}
	h.page(w, r, "feedback/trend", "Satisfaction trend", trendData{RecipeID: recipeID, Points: trendPoints(summaries)},
		feedbackCrumb, render.Breadcrumb{Label: "Trend", Active: true})
}

func trendPoints(summaries []model.FeedbackSummary) []TrendPoint {
	points := make([]TrendPoint, 0, len(summaries))
	for _, s := range summaries {
		p := TrendPoint{
			PeriodStart:     s.PeriodStart,
			PeriodEnd:       s.PeriodEnd,
			AvgSatisfaction: s.AvgSatisfaction.Float(),
			FeedbackCount:   s.FeedbackCount,
		}
		if s.AvgEmotion != nil && *s.AvgEmotion != "" {
			e := s.AvgEmotion.Float()
			p.AvgEmotion = &e
		}
		points = append(points, p)
	}
	return points
}
