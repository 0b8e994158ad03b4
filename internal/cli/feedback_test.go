// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/recipe-console/internal/apiclient"
	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/session"
	"github.com/olegiv/recipe-console/internal/testutil"
)

// seedFeedback registers feedback for recipeID through the backend API.
func seedFeedback(t *testing.T, h *harness, recipeID int64, scores ...int) {
	t.Helper()
	api := apiclient.New(apiclient.Options{
		BaseURL: h.backend.BaseURL(),
		Tokens:  session.NewMemoryStore(session.Credentials{Token: testutil.TokenService}),
	})
	for _, s := range scores {
		_, err := api.CreateFeedback(context.Background(), model.CreateProductFeedbackRequest{
			RecipeID:          recipeID,
			PeriodStart:       "2026-01-05",
			PeriodEnd:         "2026-01-20",
			SatisfactionScore: s,
			CollectionMethod:  model.CollectionSurvey,
		})
		require.NoError(t, err)
	}
}

func TestFeedbackList(t *testing.T) {
	h := newHarness(t)
	id := h.backend.SeedRecipes(1)[0]
	seedFeedback(t, h, id, 4, 5)
	h.login(t, testutil.TokenPurchaser)

	res := h.run(t, "", "feedback", "list", "--recipe", fmt.Sprint(id))
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Recipe 1")
	assert.Contains(t, res.out, "SURVEY")
	assert.Contains(t, res.out, "page 1 of 1 (2 total)")
}

func TestFeedbackGenerateSummariesAndTrend(t *testing.T) {
	h := newHarness(t)
	id := h.backend.SeedRecipes(1)[0]
	seedFeedback(t, h, id, 4, 5)
	h.login(t, testutil.TokenChef)

	res := h.run(t, "", "feedback", "generate", "--recipe", fmt.Sprint(id), "--from", "2026-01-01", "--to", "2026-01-31")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Summary #")
	assert.Contains(t, res.out, "4.50")

	res = h.run(t, "", "feedback", "summaries", "--recipe", fmt.Sprint(id))
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "2026-01-01 – 2026-01-31")

	res = h.run(t, "", "feedback", "trend", fmt.Sprint(id))
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "4.50")
	assert.Contains(t, res.out, scoreBar(4.5))

	res = h.run(t, "", "feedback", "trend", fmt.Sprint(id), "--json")
	require.NoError(t, res.err)
	trend := decodeJSON[[]model.FeedbackSummary](t, res.out)
	require.Len(t, trend, 1)
	assert.Equal(t, 2, trend[0].FeedbackCount)
}

func TestFeedbackGenerate_PeriodOrder(t *testing.T) {
	h := newHarness(t)
	h.login(t, testutil.TokenChef)

	res := h.run(t, "", "feedback", "generate", "--recipe", "1", "--from", "2026-03-01", "--to", "2026-01-01")
	assert.ErrorIs(t, res.err, apiclient.ErrValidation)
	assert.ErrorContains(t, res.err, "periodEnd")
}

func TestFeedbackSummaries_RequireRecipe(t *testing.T) {
	h := newHarness(t)
	h.login(t, testutil.TokenChef)

	res := h.run(t, "", "feedback", "summaries")
	assert.Error(t, res.err)
	assert.Zero(t, h.backend.Hits("/feedbacks/summaries"))
}

func TestFeedbackTrend_Empty(t *testing.T) {
	h := newHarness(t)
	id := h.backend.SeedRecipes(1)[0]
	h.login(t, testutil.TokenChef)

	res := h.run(t, "", "feedback", "trend", fmt.Sprint(id))
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "No summaries for this recipe yet.")
}

func TestScoreBar(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0, ""},
		{1, "█"},
		{2.5, "██▌"},
		{4.74, "████▌"},
		{4.76, "█████"},
		{9, "█████"},
		{-1, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scoreBar(tt.score), "score %v", tt.score)
	}
}
