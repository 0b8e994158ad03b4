// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/testutil"
)

func TestRecipesList(t *testing.T) {
	h := newHarness(t)
	h.backend.SeedRecipes(25)
	h.login(t, testutil.TokenChef)

	res := h.run(t, "", "recipes", "list")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Recipe 1")
	assert.Contains(t, res.out, "[DRAFT]")
	assert.Contains(t, res.out, "page 1 of 2 (25 total)")

	res = h.run(t, "", "recipes", "list", "--page", "2", "--json")
	require.NoError(t, res.err)
	page := decodeJSON[model.Page[model.RecipeListItem]](t, res.out)
	assert.Equal(t, 1, page.Number)
	assert.Len(t, page.Content, 5)
}

func TestRecipesList_Empty(t *testing.T) {
	h := newHarness(t)
	h.login(t, testutil.TokenChef)

	res := h.run(t, "", "recipes", "ls")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "No recipes found.")
}

func TestRecipesList_UnknownStatus(t *testing.T) {
	h := newHarness(t)
	h.login(t, testutil.TokenChef)

	res := h.run(t, "", "recipes", "list", "--status", "cooking")
	assert.ErrorContains(t, res.err, `unknown status "cooking"`)
}

func TestRecipesList_RequiresLogin(t *testing.T) {
	h := newHarness(t)
	res := h.run(t, "", "recipes", "list")
	assert.ErrorIs(t, res.err, errNotLoggedIn)
	assert.Zero(t, h.backend.Hits("/recipes"))
}

func TestRecipesGet(t *testing.T) {
	h := newHarness(t)
	id := h.backend.SeedRecipes(1)[0]
	h.login(t, testutil.TokenChef)

	res := h.run(t, "", "recipes", "get", fmt.Sprint(id))
	require.NoError(t, res.err)
	assert.Contains(t, res.out, fmt.Sprintf("#%d Recipe 1", id))
	assert.Contains(t, res.out, "Can move to: PUBLISHED")
	assert.Zero(t, h.backend.Hits(fmt.Sprintf("/recipes/%d/history", id)))
}

func TestRecipesGet_ServiceSeesNoTransitions(t *testing.T) {
	h := newHarness(t)
	id := h.backend.SeedRecipes(1)[0]
	h.login(t, testutil.TokenService)

	res := h.run(t, "", "recipes", "get", fmt.Sprint(id))
	require.NoError(t, res.err)
	assert.NotContains(t, res.out, "Can move to")
}

func TestRecipesGet_NotFound(t *testing.T) {
	h := newHarness(t)
	h.login(t, testutil.TokenChef)

	res := h.run(t, "", "recipes", "get", "999")
	assert.ErrorContains(t, res.err, "loading recipe")
}

func TestRecipesStatus_Confirmation(t *testing.T) {
	h := newHarness(t)
	id := h.backend.SeedRecipes(1)[0]
	h.login(t, testutil.TokenChef)

	res := h.run(t, "n\n", "recipes", "status", fmt.Sprint(id), "published")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Cancelled.")
	rec, _ := h.backend.Recipe(id)
	assert.Equal(t, model.StatusDraft, rec.Status)

	res = h.run(t, "y\n", "recipes", "status", fmt.Sprint(id), "PUBLISHED")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Recipe 1 is now PUBLISHED")
	rec, _ = h.backend.Recipe(id)
	assert.Equal(t, model.StatusPublished, rec.Status)

	res = h.run(t, "", "recipes", "get", fmt.Sprint(id), "--history")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "STATUS_CHANGE")
}

func TestRecipesStatus_IllegalTransition(t *testing.T) {
	h := newHarness(t)
	id := h.backend.SeedRecipes(1)[0]
	h.login(t, testutil.TokenChef)

	res := h.run(t, "", "recipes", "status", fmt.Sprint(id), "ARCHIVED", "--yes")
	assert.ErrorContains(t, res.err, "cannot move recipe from DRAFT to ARCHIVED")
}

func TestRecipesStatus_NotPermitted(t *testing.T) {
	h := newHarness(t)
	id := h.backend.SeedRecipes(1)[0]
	h.login(t, testutil.TokenPurchaser)

	res := h.run(t, "", "recipes", "status", fmt.Sprint(id), "PUBLISHED", "--yes")
	assert.ErrorContains(t, res.err, "your role (PURCHASER) cannot change recipe status")
}

func TestRecipesDelete(t *testing.T) {
	h := newHarness(t)
	id := h.backend.SeedRecipes(1)[0]
	h.login(t, testutil.TokenChef)

	res := h.run(t, "", "recipes", "delete", fmt.Sprint(id), "--yes")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, `Deleted recipe "Recipe 1"`)

	rec, _ := h.backend.Recipe(id)
	assert.Equal(t, model.StatusDeleted, rec.Status)
}

func TestRecipesDelete_Declined(t *testing.T) {
	h := newHarness(t)
	id := h.backend.SeedRecipes(1)[0]
	h.login(t, testutil.TokenProducer)

	res := h.run(t, "", "recipes", "rm", fmt.Sprint(id))
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Cancelled.")

	rec, _ := h.backend.Recipe(id)
	assert.Equal(t, model.StatusDraft, rec.Status)
}

func TestRecipesDelete_NotPermitted(t *testing.T) {
	h := newHarness(t)
	id := h.backend.SeedRecipes(1)[0]
	h.login(t, testutil.TokenService)

	res := h.run(t, "", "recipes", "delete", fmt.Sprint(id), "--yes")
	assert.ErrorContains(t, res.err, "cannot delete recipes")
}
