// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package query

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/recipe-console/internal/apiclient"
	"github.com/olegiv/recipe-console/internal/cache"
	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/session"
	"github.com/olegiv/recipe-console/internal/testutil"
)

type harness struct {
	backend *testutil.Backend
	api     *apiclient.Client
	q       *Client
	tokens  *session.MemoryStore
}

func newHarness(t *testing.T, token string) *harness {
	t.Helper()
	backend := testutil.NewBackend(t)
	tokens := session.NewMemoryStore(session.Credentials{Token: token})
	store := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = store.Close() })
	return &harness{
		backend: backend,
		api:     apiclient.New(apiclient.Options{BaseURL: backend.BaseURL(), Tokens: tokens}),
		q:       NewClient(store, Options{StaleTime: time.Minute, RetryDelay: time.Millisecond, Scope: ScopeFromTokens(tokens)}),
		tokens:  tokens,
	}
}

func TestStatusChangeRefetchesRecipesButNotKnowledge(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, testutil.TokenChef)
	id := h.backend.SeedRecipes(1)[0]
	params := apiclient.ListRecipesParams{}

	require.NoError(t, Recipes(ctx, h.q, h.api, params).Err)
	require.NoError(t, Categories(ctx, h.q, h.api).Err)
	require.NoError(t, Recipes(ctx, h.q, h.api, params).Err)
	require.NoError(t, Categories(ctx, h.q, h.api).Err)
	assert.Equal(t, 1, h.backend.Hits("/recipes"))
	assert.Equal(t, 1, h.backend.Hits("/knowledge/categories"))

	_, err := UpdateRecipeStatus(ctx, h.q, h.api, id, model.UpdateStatusRequest{Status: model.StatusPublished})
	require.NoError(t, err)

	list := Recipes(ctx, h.q, h.api, params)
	require.NoError(t, list.Err)
	assert.False(t, list.FromCache)
	assert.Equal(t, model.StatusPublished, list.Data.Content[0].Status)
	assert.Equal(t, 2, h.backend.Hits("/recipes"))

	cats := Categories(ctx, h.q, h.api)
	assert.True(t, cats.FromCache)
	assert.Equal(t, 1, h.backend.Hits("/knowledge/categories"))
}

func TestDesignUpdateInvalidatesOnlyThatRecipe(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, testutil.TokenService)
	ids := h.backend.SeedRecipes(2)

	Recipe(ctx, h.q, h.api, ids[0])
	Recipe(ctx, h.q, h.api, ids[1])
	RecipeHistory(ctx, h.q, h.api, ids[0])

	_, err := UpdateServiceDesign(ctx, h.q, h.api, ids[0], model.UpdateServiceDesignRequest{Timing: "hot"})
	require.NoError(t, err)

	assert.False(t, Recipe(ctx, h.q, h.api, ids[0]).FromCache)
	assert.False(t, RecipeHistory(ctx, h.q, h.api, ids[0]).FromCache)
	assert.True(t, Recipe(ctx, h.q, h.api, ids[1]).FromCache)
}

func TestEnabledGuards(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, testutil.TokenChef)

	assert.Equal(t, Result[*model.Recipe]{}, Recipe(ctx, h.q, h.api, 0))
	assert.Equal(t, Result[*model.AiThread]{}, Thread(ctx, h.q, h.api, 0))
	assert.Equal(t, Result[[]model.KnowledgeArticle]{}, SearchArticles(ctx, h.q, h.api, ""))
	assert.Nil(t, Summaries(ctx, h.q, h.api, apiclient.ListSummariesParams{}).Data.Content)
	assert.Nil(t, Trend(ctx, h.q, h.api, 0).Data)
	assert.Zero(t, h.backend.Hits("/recipes/0"))
	assert.Zero(t, h.backend.Hits("/feedbacks/summaries"))
}

func TestUnauthorizedQueryClearsCredential(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "expired-token")

	res := Recipes(ctx, h.q, h.api, apiclient.ListRecipesParams{})
	assert.ErrorIs(t, res.Err, apiclient.ErrUnauthorized)

	creds, err := h.tokens.Credentials(ctx)
	require.NoError(t, err)
	assert.True(t, creds.Empty())
}

func TestRecipeLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, testutil.TokenChef)

	created, err := CreateRecipe(ctx, h.q, h.api, model.CreateRecipeRequest{Title: "Yuzu tart"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, created.Status)

	list := Recipes(ctx, h.q, h.api, apiclient.ListRecipesParams{})
	require.NoError(t, list.Err)
	require.Len(t, list.Data.Content, 1)

	_, err = UpdateRecipe(ctx, h.q, h.api, created.ID, model.UpdateRecipeRequest{Story: "A winter dessert"})
	require.NoError(t, err)
	detail := Recipe(ctx, h.q, h.api, created.ID)
	require.NoError(t, detail.Err)
	require.NotNil(t, detail.Data.Story)
	assert.Equal(t, "A winter dessert", *detail.Data.Story)

	for _, next := range []model.RecipeStatus{model.StatusPublished, model.StatusArchived, model.StatusPublished} {
		_, err = UpdateRecipeStatus(ctx, h.q, h.api, created.ID, model.UpdateStatusRequest{Status: next})
		require.NoError(t, err, "transition to %s", next)
	}

	_, err = UpdateExperienceDesign(ctx, h.q, h.api, created.ID, model.UpdateExperienceDesignRequest{SensoryAppeal: "citrus"})
	require.NoError(t, err)

	history := RecipeHistory(ctx, h.q, h.api, created.ID)
	require.NoError(t, history.Err)
	assert.Len(t, history.Data, 6)

	require.NoError(t, DeleteRecipe(ctx, h.q, h.api, created.ID))
	gone := Recipe(ctx, h.q, h.api, created.ID)
	assert.ErrorIs(t, gone.Err, apiclient.ErrNotFound)
	assert.Empty(t, Recipes(ctx, h.q, h.api, apiclient.ListRecipesParams{}).Data.Content)
}

func TestFeedbackSummaryScenario(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, testutil.TokenProducer)
	recipeID := h.backend.SeedRecipes(1)[0]
	summaries := apiclient.ListSummariesParams{RecipeID: recipeID}

	assert.Empty(t, Summaries(ctx, h.q, h.api, summaries).Data.Content)

	for _, score := range []int{3, 4, 5} {
		_, err := CreateFeedback(ctx, h.q, h.api, model.CreateProductFeedbackRequest{
			RecipeID: recipeID, PeriodStart: "2026-03-01", PeriodEnd: "2026-03-31",
			SatisfactionScore: score, CollectionMethod: model.CollectionInterview,
		})
		require.NoError(t, err)
	}
	feedbacks := Feedbacks(ctx, h.q, h.api, apiclient.ListFeedbacksParams{RecipeID: recipeID})
	require.NoError(t, feedbacks.Err)
	assert.Len(t, feedbacks.Data.Content, 3)

	summary, err := GenerateSummary(ctx, h.q, h.api, model.GenerateFeedbackSummaryRequest{
		RecipeID: recipeID, PeriodStart: "2026-03-01", PeriodEnd: "2026-03-31",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.FeedbackCount)
	assert.InDelta(t, 4.0, summary.AvgSatisfaction.Float(), 0.001)

	list := Summaries(ctx, h.q, h.api, summaries)
	require.NoError(t, list.Err)
	assert.False(t, list.FromCache)
	require.Len(t, list.Data.Content, 1)

	trend := Trend(ctx, h.q, h.api, recipeID)
	require.NoError(t, trend.Err)
	assert.Len(t, trend.Data, 1)

	one := Summary(ctx, h.q, h.api, summary.ID)
	require.NoError(t, one.Err)
	assert.Equal(t, summary.ID, one.Data.ID)
}

func TestAIThreadScenario(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, testutil.TokenService)

	thread, err := CreateThread(ctx, h.q, h.api, model.CreateAiThreadRequest{
		Theme: "Wine pairing", InitialMessage: "What goes with duck?",
	})
	require.NoError(t, err)

	threads := Threads(ctx, h.q, h.api, apiclient.PageParams{})
	require.NoError(t, threads.Err)
	require.Len(t, threads.Data.Content, 1)

	msgs := Messages(ctx, h.q, h.api, thread.ID)
	require.NoError(t, msgs.Err)
	require.Len(t, msgs.Data, 2)

	reply, err := SendMessage(ctx, h.q, h.api, thread.ID, model.SendAiMessageRequest{Message: "And for dessert?"})
	require.NoError(t, err)
	assert.Equal(t, model.SenderAI, reply.SenderType)

	msgs = Messages(ctx, h.q, h.api, thread.ID)
	require.NoError(t, msgs.Err)
	assert.False(t, msgs.FromCache)
	assert.Len(t, msgs.Data, 4)

	path := "/ai/threads/" + strconv.FormatInt(thread.ID, 10) + "/messages"
	before := h.backend.Hits(path)
	polled := RefetchMessages(ctx, h.q, h.api, thread.ID)
	require.NoError(t, polled.Err)
	assert.Equal(t, before+1, h.backend.Hits(path), "poll ignores freshness")

	got := Thread(ctx, h.q, h.api, thread.ID)
	require.NoError(t, got.Err)
	assert.Equal(t, "Wine pairing", got.Data.Theme)
}

func TestKnowledgeHooks(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, testutil.TokenPurchaser)

	a, err := CreateArticle(ctx, h.q, h.api, model.CreateKnowledgeArticleRequest{Title: "Dashi", Content: "Kombu and katsuobushi", CategoryID: 2})
	require.NoError(t, err)

	found := SearchArticles(ctx, h.q, h.api, "kombu")
	require.NoError(t, found.Err)
	assert.Len(t, found.Data, 1)

	_, err = UpdateArticle(ctx, h.q, h.api, a.ID, model.UpdateKnowledgeArticleRequest{Title: "Dashi stock"})
	require.NoError(t, err)
	assert.Equal(t, "Dashi stock", Article(ctx, h.q, h.api, a.ID).Data.Title)

	page := Articles(ctx, h.q, h.api, apiclient.ListArticlesParams{})
	require.NoError(t, page.Err)
	assert.Len(t, page.Data.Content, 1)

	require.NoError(t, DeleteArticle(ctx, h.q, h.api, a.ID))
	assert.Empty(t, Articles(ctx, h.q, h.api, apiclient.ListArticlesParams{}).Data.Content)
}

func TestUserHooks(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, testutil.TokenProducer)

	me := Me(ctx, h.q, h.api)
	require.NoError(t, me.Err)
	assert.Equal(t, model.RoleProducer, me.Data.Role)

	users := Users(ctx, h.q, h.api)
	require.NoError(t, users.Err)
	require.Len(t, users.Data, 4)

	_, err := UpdateUserRole(ctx, h.q, h.api, users.Data[1].ID, model.UpdateRoleRequest{Role: model.RoleChef})
	require.NoError(t, err)

	after := Users(ctx, h.q, h.api)
	assert.False(t, after.FromCache)
	assert.Equal(t, model.RoleChef, after.Data[1].Role)
	assert.True(t, Me(ctx, h.q, h.api).FromCache, "a role change leaves the caller's profile cached")
	assert.Equal(t, 1, h.backend.Hits("/users/me"))
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, testutil.TokenProducer)

	user, err := Profile(h.q, h.api)(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, model.RoleProducer, user.Role)

	_, err = Profile(h.q, h.api)(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, h.backend.Hits("/users/me"), "profile is served from the query cache")

	_, err = Profile(h.q, h.api)(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, h.backend.Hits("/users/me"), "a fresh profile goes to the backend")
}

func TestSessionRefreshReachesBackend(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, testutil.TokenChef)
	s := session.New(h.tokens, Profile(h.q, h.api))

	require.NoError(t, s.Start(ctx))
	require.Equal(t, 1, h.backend.Hits("/users/me"))

	require.NoError(t, s.Refresh(ctx))
	assert.Equal(t, 2, h.backend.Hits("/users/me"))
	assert.Equal(t, session.StateAuthenticated, s.State())

	// A second Start within the stale time reuses the profile Refresh stored.
	require.NoError(t, session.New(h.tokens, Profile(h.q, h.api)).Start(ctx))
	assert.Equal(t, 2, h.backend.Hits("/users/me"))

	require.NoError(t, s.Login(ctx, testutil.TokenChef))
	assert.Equal(t, 3, h.backend.Hits("/users/me"), "login always fetches the profile")
}

func TestProfile_Unauthorized(t *testing.T) {
	h := newHarness(t, "bogus")

	user, err := Profile(h.q, h.api)(context.Background(), false)
	assert.Nil(t, user)
	assert.ErrorIs(t, err, apiclient.ErrUnauthorized)
}
