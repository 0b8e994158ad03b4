// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/olegiv/recipe-console/internal/model"
)

func recipePath(id int64) string {
	return fmt.Sprintf("/recipes/%d", id)
}

// ListRecipes fetches a page of recipes.
func (c *Client) ListRecipes(ctx context.Context, p ListRecipesParams) (model.Page[model.RecipeListItem], error) {
	return get[model.Page[model.RecipeListItem]](ctx, c, "/recipes", p.Values())
}

// GetRecipe fetches one recipe with its steps, ingredients and designs.
func (c *Client) GetRecipe(ctx context.Context, id int64) (*model.Recipe, error) {
	return get[*model.Recipe](ctx, c, recipePath(id), nil)
}

// CreateRecipe creates a recipe; the backend starts it as DRAFT.
func (c *Client) CreateRecipe(ctx context.Context, req model.CreateRecipeRequest) (*model.Recipe, error) {
	return send[*model.Recipe](ctx, c, http.MethodPost, "/recipes", req)
}

// UpdateRecipe updates the basic recipe fields.
func (c *Client) UpdateRecipe(ctx context.Context, id int64, req model.UpdateRecipeRequest) (*model.Recipe, error) {
	return send[*model.Recipe](ctx, c, http.MethodPut, recipePath(id), req)
}

// UpdateServiceDesign replaces the recipe's service design.
func (c *Client) UpdateServiceDesign(ctx context.Context, id int64, req model.UpdateServiceDesignRequest) (*model.Recipe, error) {
	return send[*model.Recipe](ctx, c, http.MethodPut, recipePath(id)+"/service-design", req)
}

// UpdateExperienceDesign replaces the recipe's experience design.
func (c *Client) UpdateExperienceDesign(ctx context.Context, id int64, req model.UpdateExperienceDesignRequest) (*model.Recipe, error) {
	return send[*model.Recipe](ctx, c, http.MethodPut, recipePath(id)+"/experience-design", req)
}

// UpdateRecipeStatus moves the recipe to another lifecycle status.
func (c *Client) UpdateRecipeStatus(ctx context.Context, id int64, req model.UpdateStatusRequest) (*model.Recipe, error) {
	return send[*model.Recipe](ctx, c, http.MethodPut, recipePath(id)+"/status", req)
}

// DeleteRecipe deletes a recipe.
func (c *Client) DeleteRecipe(ctx context.Context, id int64) error {
	return c.Send(ctx, http.MethodDelete, recipePath(id), nil, nil, nil)
}

// GetRecipeHistory fetches the recipe's change log.
func (c *Client) GetRecipeHistory(ctx context.Context, id int64) ([]model.RecipeHistory, error) {
	return get[[]model.RecipeHistory](ctx, c, recipePath(id)+"/history", nil)
}
