// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package permission holds the role predicates that decide which actions the
// console offers. The backend enforces the same rules; these only shape the
// interface.
package permission

import (
	"slices"

	"github.com/olegiv/recipe-console/internal/model"
)

var (
	recipeEditors = []model.Role{model.RoleChef, model.RoleProducer}
	designEditors = []model.Role{model.RoleChef, model.RoleService, model.RoleProducer}
)

func oneOf(role model.Role, roles []model.Role) bool {
	return slices.Contains(roles, role)
}

// CanCreateRecipe reports whether role may create recipes.
func CanCreateRecipe(role model.Role) bool { return oneOf(role, recipeEditors) }

// CanEditRecipe reports whether role may edit a recipe's basic fields.
func CanEditRecipe(role model.Role) bool { return oneOf(role, recipeEditors) }

// CanEditServiceDesign reports whether role may edit a service design.
func CanEditServiceDesign(role model.Role) bool { return oneOf(role, designEditors) }

// CanEditExperienceDesign reports whether role may edit an experience design.
func CanEditExperienceDesign(role model.Role) bool { return oneOf(role, designEditors) }

// CanChangeRecipeStatus reports whether role may publish or archive recipes.
func CanChangeRecipeStatus(role model.Role) bool { return oneOf(role, recipeEditors) }

// CanDeleteRecipe reports whether role may delete recipes.
func CanDeleteRecipe(role model.Role) bool { return oneOf(role, recipeEditors) }

// CanCreateFeedback reports whether role may register customer feedback.
func CanCreateFeedback(role model.Role) bool { return oneOf(role, designEditors) }

// CanManageUsers reports whether role may list members and change roles.
func CanManageUsers(role model.Role) bool { return role == model.RoleProducer }

// CanEditArticle reports whether user may edit or delete article: its author
// or any producer.
func CanEditArticle(user *model.User, article *model.KnowledgeArticle) bool {
	if user == nil || article == nil {
		return false
	}
	return user.Role == model.RoleProducer || user.ID == article.AuthorID
}

// CanChangeRole reports whether actor may change target's role. Nobody
// changes their own.
func CanChangeRole(actor, target *model.User) bool {
	if actor == nil || target == nil || actor.ID == target.ID {
		return false
	}
	return CanManageUsers(actor.Role)
}

var transitions = map[model.RecipeStatus][]model.RecipeStatus{
	model.StatusDraft:     {model.StatusPublished},
	model.StatusPublished: {model.StatusArchived},
	model.StatusArchived:  {model.StatusPublished},
}

// StatusTransitions returns the statuses role may move a recipe to from
// status.
func StatusTransitions(role model.Role, status model.RecipeStatus) []model.RecipeStatus {
	if !CanChangeRecipeStatus(role) {
		return nil
	}
	return slices.Clone(transitions[status])
}

// CanTransition reports whether role may move a recipe from one status to
// another.
func CanTransition(role model.Role, from, to model.RecipeStatus) bool {
	return slices.Contains(StatusTransitions(role, from), to)
}

// QuickAction is a dashboard shortcut.
type QuickAction struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

var quickActions = []struct {
	action  QuickAction
	allowed func(model.Role) bool
}{
	{QuickAction{"New recipe", "/recipes/new"}, CanCreateRecipe},
	{QuickAction{"Recipes", "/recipes"}, nil},
	{QuickAction{"Knowledge base", "/knowledge"}, nil},
	{QuickAction{"Ask the AI", "/ai/new"}, nil},
	{QuickAction{"Register feedback", "/feedback/new"}, CanCreateFeedback},
	{QuickAction{"Feedback summaries", "/feedback/summaries"}, nil},
	{QuickAction{"Members", "/admin/users"}, CanManageUsers},
}

// QuickActions returns the dashboard shortcuts available to role.
func QuickActions(role model.Role) []QuickAction {
	out := make([]QuickAction, 0, len(quickActions))
	for _, qa := range quickActions {
		if qa.allowed == nil || qa.allowed(role) {
			out = append(out, qa.action)
		}
	}
	return out
}
