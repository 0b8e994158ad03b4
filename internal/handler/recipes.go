// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/olegiv/recipe-console/internal/apiclient"
	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/permission"
	"github.com/olegiv/recipe-console/internal/query"
	"github.com/olegiv/recipe-console/internal/render"
)

const recipesPath = "/recipes"

func recipePath(id int64) string {
	return fmt.Sprintf("%s/%d", recipesPath, id)
}

var recipesCrumb = render.Breadcrumb{Label: "Recipes", URL: recipesPath}

// RecipesHandler handles the recipe pages.
type RecipesHandler struct {
	base
}

// NewRecipesHandler creates a new RecipesHandler.
func NewRecipesHandler(d Deps) *RecipesHandler {
	return &RecipesHandler{base: d.base()}
}

type recipeFilters struct {
	Category string             `json:"category,omitempty"`
	Status   model.RecipeStatus `json:"status,omitempty"`
}

type recipeListData struct {
	Recipes    []model.RecipeListItem `json:"recipes"`
	Pagination Pagination             `json:"pagination"`
	Filters    recipeFilters          `json:"filters"`
	Statuses   []model.RecipeStatus   `json:"statuses"`
	CanCreate  bool                   `json:"canCreate"`
}

// List handles GET /recipes.
func (h *RecipesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := recipeFilters{Category: q.Get("category"), Status: model.RecipeStatus(q.Get("status"))}
	if !filters.Status.Valid() {
		filters.Status = ""
	}

	params := apiclient.ListRecipesParams{Category: filters.Category, Status: filters.Status, PageParams: pageParams(r)}
	page, ok := requireResult(w, r, h.base, query.Recipes(r.Context(), h.queries, h.api, params), "/", "Recipes")
	if !ok {
		return
	}

	h.page(w, r, "recipes/list", "Recipes", recipeListData{
		Recipes:    page.Content,
		Pagination: BuildPagination(page, recipesPath, q),
		Filters:    filters,
		Statuses:   []model.RecipeStatus{model.StatusDraft, model.StatusPublished, model.StatusArchived},
		CanCreate:  permission.CanCreateRecipe(currentRole(r)),
	}, recipesCrumb)
}

// NewForm handles GET /recipes/new.
func (h *RecipesHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	if !permission.CanCreateRecipe(currentRole(r)) {
		h.denied(w, r, recipesPath)
		return
	}
	h.page(w, r, "recipes/new", "New recipe", map[string]any{
		"maxTitleLength":       model.MaxRecipeTitleLength,
		"maxDescriptionLength": model.MaxRecipeDescriptionLength,
	}, recipesCrumb, render.Breadcrumb{Label: "New", Active: true})
}

// Create handles POST /recipes.
func (h *RecipesHandler) Create(w http.ResponseWriter, r *http.Request) {
	back := recipesPath + "/new"
	if !permission.CanCreateRecipe(currentRole(r)) {
		h.denied(w, r, recipesPath)
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, back) {
		return
	}

	f := newFormReader(r)
	req := model.CreateRecipeRequest{
		Title:        f.str("title"),
		Description:  f.str("description"),
		Category:     f.str("category"),
		Servings:     f.optInteger("servings"),
		Concept:      f.str("concept"),
		Story:        f.str("story"),
		CookingSteps: readSteps(f),
		Ingredients:  readIngredients(f),
	}
	if err := h.validate(f, req); err != nil {
		h.mutationFailed(w, r, err, back)
		return
	}

	recipe, err := query.CreateRecipe(r.Context(), h.queries, h.api, req)
	if err != nil {
		h.mutationFailed(w, r, err, back)
		return
	}
	flashSuccess(w, r, h.renderer, recipePath(recipe.ID), "Recipe created")
}

// readSteps reads the repeated step fields. Blank descriptions are skipped
// and the remaining steps are numbered in order.
func readSteps(f *formReader) []model.CookingStepInput {
	var steps []model.CookingStepInput
	for i := range f.r.PostForm["stepDescription"] {
		desc := f.at("stepDescription", i)
		if desc == "" {
			continue
		}
		step := model.CookingStepInput{
			StepNumber:  len(steps) + 1,
			Description: desc,
			Temperature: f.at("stepTemperature", i),
			Tips:        f.at("stepTips", i),
		}
		if v := f.at("stepDuration", i); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				f.fail(fmt.Sprintf("cookingSteps[%d].durationMinutes", len(steps)), "must be a whole number")
			}
			step.DurationMinutes = &n
		}
		steps = append(steps, step)
	}
	return steps
}

// readIngredients reads the repeated ingredient fields. Rows without an
// ingredient are skipped.
func readIngredients(f *formReader) []model.IngredientInput {
	var out []model.IngredientInput
	for i := range f.r.PostForm["ingredientId"] {
		idStr := f.at("ingredientId", i)
		if idStr == "" {
			continue
		}
		field := fmt.Sprintf("ingredients[%d]", len(out))
		in := model.IngredientInput{
			Unit:            f.at("unit", i),
			PreparationNote: f.at("preparationNote", i),
			Substitutes:     f.at("substitutes", i),
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			f.fail(field+".ingredientId", "must be a whole number")
		}
		in.IngredientID = id
		if v := f.at("quantity", i); v != "" {
			q, err := strconv.ParseFloat(v, 64)
			if err != nil {
				f.fail(field+".quantity", "must be a number")
			}
			in.Quantity = &q
		}
		out = append(out, in)
	}
	return out
}

type recipeActions struct {
	Edit             bool `json:"edit"`
	ServiceDesign    bool `json:"serviceDesign"`
	ExperienceDesign bool `json:"experienceDesign"`
	ChangeStatus     bool `json:"changeStatus"`
	Delete           bool `json:"delete"`
}

type recipeDetailData struct {
	Recipe      *model.Recipe        `json:"recipe"`
	Actions     recipeActions        `json:"actions"`
	Transitions []model.RecipeStatus `json:"transitions"`
}

// Show handles GET /recipes/{id}.
func (h *RecipesHandler) Show(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.requireRecipe(w, r)
	if !ok {
		return
	}

	role := currentRole(r)
	h.page(w, r, "recipes/show", recipe.Title, recipeDetailData{
		Recipe: recipe,
		Actions: recipeActions{
			Edit:             permission.CanEditRecipe(role),
			ServiceDesign:    permission.CanEditServiceDesign(role),
			ExperienceDesign: permission.CanEditExperienceDesign(role),
			ChangeStatus:     permission.CanChangeRecipeStatus(role),
			Delete:           permission.CanDeleteRecipe(role),
		},
		Transitions: permission.StatusTransitions(role, recipe.Status),
	}, recipesCrumb, render.Breadcrumb{Label: recipe.Title, Active: true})
}

// requireRecipe loads the recipe named by {id}. A missing recipe sends the
// member back to the list.
func (h *RecipesHandler) requireRecipe(w http.ResponseWriter, r *http.Request) (*model.Recipe, bool) {
	id, ok := h.requireID(w, r, recipesPath, "Recipe")
	if !ok {
		return nil, false
	}
	recipe, ok := requireResult(w, r, h.base, query.Recipe(r.Context(), h.queries, h.api, id), recipesPath, "Recipe")
	if !ok || recipe == nil {
		if ok {
			flashError(w, r, h.renderer, recipesPath, "Recipe not found")
		}
		return nil, false
	}
	return recipe, true
}

// EditForm handles GET /recipes/{id}/edit.
func (h *RecipesHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.requireRecipe(w, r)
	if !ok {
		return
	}
	if !permission.CanEditRecipe(currentRole(r)) {
		h.denied(w, r, recipePath(recipe.ID))
		return
	}
	h.page(w, r, "recipes/edit", "Edit "+recipe.Title, recipe,
		recipesCrumb, render.Breadcrumb{Label: recipe.Title, URL: recipePath(recipe.ID)}, render.Breadcrumb{Label: "Edit", Active: true})
}

// Update handles POST /recipes/{id}.
func (h *RecipesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r, recipesPath, "Recipe")
	if !ok {
		return
	}
	back := recipePath(id) + "/edit"
	if !permission.CanEditRecipe(currentRole(r)) {
		h.denied(w, r, recipePath(id))
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, back) {
		return
	}

	f := newFormReader(r)
	req := model.UpdateRecipeRequest{
		Title:       f.str("title"),
		Description: f.str("description"),
		Category:    f.str("category"),
		Servings:    f.optInteger("servings"),
		Concept:     f.str("concept"),
		Story:       f.str("story"),
	}
	if err := h.validate(f, req); err != nil {
		h.mutationFailed(w, r, err, back)
		return
	}

	if _, err := query.UpdateRecipe(r.Context(), h.queries, h.api, id, req); err != nil {
		h.mutationFailed(w, r, err, back)
		return
	}
	flashSuccess(w, r, h.renderer, recipePath(id), "Recipe updated")
}

// UpdateStatus handles POST /recipes/{id}/status. The change is confirmed
// first.
func (h *RecipesHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.requireRecipe(w, r)
	if !ok {
		return
	}
	detail := recipePath(recipe.ID)
	if !parseFormOrRedirect(w, r, h.renderer, detail) {
		return
	}

	to := model.RecipeStatus(r.PostFormValue("status"))
	if !permission.CanTransition(currentRole(r), recipe.Status, to) {
		h.denied(w, r, detail)
		return
	}
	req := model.UpdateStatusRequest{Status: to}
	if err := h.forms.Validate(req); err != nil {
		h.mutationFailed(w, r, err, detail)
		return
	}

	if !h.confirmed(w, r, confirmData{
		Message: fmt.Sprintf("Change the status of %q from %s to %s?", recipe.Title, recipe.Status, to),
		Action:  detail + "/status",
		Fields:  map[string]string{"status": string(to)},
		Cancel:  detail,
	}) {
		return
	}

	if _, err := query.UpdateRecipeStatus(r.Context(), h.queries, h.api, recipe.ID, req); err != nil {
		h.mutationFailed(w, r, err, detail)
		return
	}
	flashSuccess(w, r, h.renderer, detail, "Status changed to "+string(to))
}

// Delete handles POST /recipes/{id}/delete. The deletion is confirmed first.
func (h *RecipesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r, recipesPath, "Recipe")
	if !ok {
		return
	}
	detail := recipePath(id)
	if !permission.CanDeleteRecipe(currentRole(r)) {
		h.denied(w, r, detail)
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, detail) {
		return
	}
	if !h.confirmed(w, r, confirmData{
		Message: "Delete this recipe? This cannot be undone.",
		Action:  detail + "/delete",
		Cancel:  detail,
	}) {
		return
	}

	if err := query.DeleteRecipe(r.Context(), h.queries, h.api, id); err != nil {
		h.mutationFailed(w, r, err, detail)
		return
	}
	flashSuccess(w, r, h.renderer, recipesPath, "Recipe deleted")
}

type recipeHistoryData struct {
	RecipeID int64                 `json:"recipeId"`
	Entries  []model.RecipeHistory `json:"entries"`
}

// History handles GET /recipes/{id}/history.
func (h *RecipesHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r, recipesPath, "Recipe")
	if !ok {
		return
	}
	entries, ok := requireResult(w, r, h.base, query.RecipeHistory(r.Context(), h.queries, h.api, id), recipesPath, "Recipe")
	if !ok {
		return
	}
	h.page(w, r, "recipes/history", "Change history", recipeHistoryData{RecipeID: id, Entries: entries},
		recipesCrumb, render.Breadcrumb{Label: "Recipe", URL: recipePath(id)}, render.Breadcrumb{Label: "History", Active: true})
}

// ServiceDesignForm handles GET /recipes/{id}/service-design.
func (h *RecipesHandler) ServiceDesignForm(w http.ResponseWriter, r *http.Request) {
	h.designForm(w, r, "recipes/service-design", "Service design", permission.CanEditServiceDesign)
}

// ExperienceDesignForm handles GET /recipes/{id}/experience-design.
func (h *RecipesHandler) ExperienceDesignForm(w http.ResponseWriter, r *http.Request) {
	h.designForm(w, r, "recipes/experience-design", "Experience design", permission.CanEditExperienceDesign)
}

func (h *RecipesHandler) designForm(w http.ResponseWriter, r *http.Request, view, title string, allowed func(model.Role) bool) {
	recipe, ok := h.requireRecipe(w, r)
	if !ok {
		return
	}
	if !allowed(currentRole(r)) {
		h.denied(w, r, recipePath(recipe.ID))
		return
	}
	h.page(w, r, view, title, recipe,
		recipesCrumb, render.Breadcrumb{Label: recipe.Title, URL: recipePath(recipe.ID)}, render.Breadcrumb{Label: title, Active: true})
}

// UpdateServiceDesign handles POST /recipes/{id}/service-design.
func (h *RecipesHandler) UpdateServiceDesign(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r, recipesPath, "Recipe")
	if !ok {
		return
	}
	back := recipePath(id) + "/service-design"
	if !permission.CanEditServiceDesign(currentRole(r)) {
		h.denied(w, r, recipePath(id))
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, back) {
		return
	}

	f := newFormReader(r)
	req := model.UpdateServiceDesignRequest{
		PlatingInstructions: f.str("platingInstructions"),
		ServiceMethod:       f.str("serviceMethod"),
		CustomerScript:      f.str("customerScript"),
		StagingMethod:       f.str("stagingMethod"),
		Timing:              f.str("timing"),
		Storytelling:        f.str("storytelling"),
	}
	if _, err := query.UpdateServiceDesign(r.Context(), h.queries, h.api, id, req); err != nil {
		h.mutationFailed(w, r, err, back)
		return
	}
	flashSuccess(w, r, h.renderer, recipePath(id), "Service design saved")
}

// UpdateExperienceDesign handles POST /recipes/{id}/experience-design.
func (h *RecipesHandler) UpdateExperienceDesign(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r, recipesPath, "Recipe")
	if !ok {
		return
	}
	back := recipePath(id) + "/experience-design"
	if !permission.CanEditExperienceDesign(currentRole(r)) {
		h.denied(w, r, recipePath(id))
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, back) {
		return
	}

	f := newFormReader(r)
	req := model.UpdateExperienceDesignRequest{
		TargetScene:            f.str("targetScene"),
		EmotionalKeyPoints:     f.str("emotionalKeyPoints"),
		SpecialOccasionSupport: f.str("specialOccasionSupport"),
		SeasonalPresentation:   f.str("seasonalPresentation"),
		SensoryAppeal:          f.str("sensoryAppeal"),
	}
	if _, err := query.UpdateExperienceDesign(r.Context(), h.queries, h.api, id, req); err != nil {
		h.mutationFailed(w, r, err, back)
		return
	}
	flashSuccess(w, r, h.renderer, recipePath(id), "Experience design saved")
}
