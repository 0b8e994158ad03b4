// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/testutil"
)

func TestRecipeLifecycle(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestClient(t, testutil.TokenChef)

	created, err := c.CreateRecipe(ctx, model.CreateRecipeRequest{
		Title: "Miso cod",
		CookingSteps: []model.CookingStepInput{
			{StepNumber: 1, Description: "Marinate"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, created.Status)
	require.Len(t, created.CookingSteps, 1)

	updated, err := c.UpdateRecipe(ctx, created.ID, model.UpdateRecipeRequest{Concept: "umami"})
	require.NoError(t, err)
	require.NotNil(t, updated.Concept)
	assert.Equal(t, "umami", *updated.Concept)

	published, err := c.UpdateRecipeStatus(ctx, created.ID, model.UpdateStatusRequest{Status: model.StatusPublished})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPublished, published.Status)

	_, err = c.UpdateRecipeStatus(ctx, created.ID, model.UpdateStatusRequest{Status: model.StatusDraft})
	require.Error(t, err)
	assert.Equal(t, "cannot change status from PUBLISHED to DRAFT", Message(err))

	withDesign, err := c.UpdateServiceDesign(ctx, created.ID, model.UpdateServiceDesignRequest{Timing: "warm"})
	require.NoError(t, err)
	require.NotNil(t, withDesign.ServiceDesign)
	assert.Equal(t, "warm", *withDesign.ServiceDesign.Timing)

	withExp, err := c.UpdateExperienceDesign(ctx, created.ID, model.UpdateExperienceDesignRequest{TargetScene: "date"})
	require.NoError(t, err)
	require.NotNil(t, withExp.ExperienceDesign)

	history, err := c.GetRecipeHistory(ctx, created.ID)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Equal(t, "EXPERIENCE_DESIGN", history[0].ChangeType, "newest entry first")

	require.NoError(t, c.DeleteRecipe(ctx, created.ID))
	_, err = c.GetRecipe(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	page, err := c.ListRecipes(ctx, ListRecipesParams{})
	require.NoError(t, err)
	assert.Zero(t, page.TotalElements)
}

func TestListRecipesPagination(t *testing.T) {
	ctx := context.Background()
	c, backend, _ := newTestClient(t, testutil.TokenChef)
	backend.SeedRecipes(5)

	var seen int
	params := ListRecipesParams{PageParams: PageParams{Size: 2}}
	for pages := 0; ; pages++ {
		require.Less(t, pages, 5, "pagination did not terminate")
		page, err := c.ListRecipes(ctx, params)
		require.NoError(t, err)
		require.NoError(t, page.Valid())
		assert.LessOrEqual(t, len(page.Content), page.Size)
		seen += len(page.Content)
		if page.Last {
			assert.False(t, page.HasNext())
			break
		}
		params.Page++
	}
	assert.Equal(t, 5, seen)
}

func TestKnowledgeResources(t *testing.T) {
	ctx := context.Background()
	c, backend, _ := newTestClient(t, testutil.TokenService)
	backend.SeedArticle(1, "Knife skills", "Keep the blade sharp")

	cats, err := c.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 2)

	a, err := c.CreateArticle(ctx, model.CreateKnowledgeArticleRequest{Title: "Salt", Content: "Season early", CategoryID: 2})
	require.NoError(t, err)
	assert.Equal(t, "Ingredients", a.CategoryName)

	found, err := c.SearchArticles(ctx, "SEASON")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, a.ID, found[0].ID)

	page, err := c.ListArticles(ctx, ListArticlesParams{CategoryID: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalElements)

	got, err := c.GetArticle(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Season early", got.Content)

	_, err = c.UpdateArticle(ctx, a.ID, model.UpdateKnowledgeArticleRequest{Tags: "basics"})
	require.NoError(t, err)
	require.NoError(t, c.DeleteArticle(ctx, a.ID))

	_, err = c.GetArticle(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAIResources(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestClient(t, testutil.TokenChef)

	th, err := c.CreateThread(ctx, model.CreateAiThreadRequest{Theme: "Sauces", InitialMessage: "How to emulsify?"})
	require.NoError(t, err)

	msgs, err := c.ListMessages(ctx, th.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.SenderUser, msgs[0].SenderType)
	assert.Equal(t, model.SenderAI, msgs[1].SenderType)

	reply, err := c.SendMessage(ctx, th.ID, model.SendAiMessageRequest{Message: "And butter?"})
	require.NoError(t, err)
	assert.Equal(t, model.SenderAI, reply.SenderType)

	msgs, err = c.ListMessages(ctx, th.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 4)

	threads, err := c.ListThreads(ctx, PageParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), threads.TotalElements)

	got, err := c.GetThread(ctx, th.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sauces", got.Theme)
}

func TestFeedbackResources(t *testing.T) {
	ctx := context.Background()
	c, backend, _ := newTestClient(t, testutil.TokenService)
	recipeID := backend.SeedRecipes(1)[0]

	for _, score := range []int{4, 5} {
		_, err := c.CreateFeedback(ctx, model.CreateProductFeedbackRequest{
			RecipeID: recipeID, PeriodStart: "2026-01-01", PeriodEnd: "2026-01-31",
			SatisfactionScore: score, CollectionMethod: model.CollectionSurvey,
		})
		require.NoError(t, err)
	}

	list, err := c.ListFeedbacks(ctx, ListFeedbacksParams{RecipeID: recipeID})
	require.NoError(t, err)
	require.Len(t, list.Content, 2)

	fb, err := c.GetFeedback(ctx, list.Content[0].ID)
	require.NoError(t, err)
	assert.Equal(t, recipeID, fb.RecipeID)

	summary, err := c.GenerateSummary(ctx, model.GenerateFeedbackSummaryRequest{
		RecipeID: recipeID, PeriodStart: "2026-01-01", PeriodEnd: "2026-01-31",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.FeedbackCount)
	assert.InDelta(t, 4.5, summary.AvgSatisfaction.Float(), 0.001)

	summaries, err := c.ListSummaries(ctx, ListSummariesParams{RecipeID: recipeID})
	require.NoError(t, err)
	assert.Len(t, summaries.Content, 1)

	got, err := c.GetSummary(ctx, summary.ID)
	require.NoError(t, err)
	assert.Equal(t, summary.ID, got.ID)

	trend, err := c.GetTrend(ctx, recipeID)
	require.NoError(t, err)
	assert.Len(t, trend, 1)

	require.NoError(t, c.DeleteFeedback(ctx, fb.ID))
	_, err = c.GetFeedback(ctx, fb.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserResources(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestClient(t, testutil.TokenProducer)

	me, err := c.GetMe(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.RoleProducer, me.Role)

	users, err := c.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 4)

	updated, err := c.UpdateUserRole(ctx, users[0].ID, model.UpdateRoleRequest{Role: model.RolePurchaser})
	require.NoError(t, err)
	assert.Equal(t, model.RolePurchaser, updated.Role)

	dev, err := c.DevToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, testutil.TokenProducer, dev.Token)
}
