// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package form

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/recipe-console/internal/apiclient"
	"github.com/olegiv/recipe-console/internal/model"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var vErr *apiclient.ValidationError
	require.True(t, errors.As(err, &vErr), "want *apiclient.ValidationError, got %v", err)
	out := map[string]string{}
	for _, f := range vErr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestValidateRecipe(t *testing.T) {
	v := New()

	require.NoError(t, v.Validate(model.CreateRecipeRequest{Title: "Ramen"}))

	err := v.Validate(model.CreateRecipeRequest{
		Title:       strings.Repeat("あ", model.MaxRecipeTitleLength+1),
		Description: strings.Repeat("x", model.MaxRecipeDescriptionLength+1),
		CookingSteps: []model.CookingStepInput{
			{StepNumber: 1},
		},
	})
	assert.ErrorIs(t, err, apiclient.ErrValidation)
	fields := fieldErrors(t, err)
	assert.Equal(t, "must be at most 200 characters", fields["title"])
	assert.Equal(t, "must be at most 2000 characters", fields["description"])
	assert.Equal(t, "is required", fields["cookingSteps[0].description"])
}

func TestValidateTitleCountsCharacters(t *testing.T) {
	v := New()
	title := strings.Repeat("鮨", model.MaxRecipeTitleLength)
	assert.NoError(t, v.Validate(model.CreateRecipeRequest{Title: title}))
}

func TestValidateFeedback(t *testing.T) {
	v := New()
	valid := model.CreateProductFeedbackRequest{
		RecipeID:          1,
		PeriodStart:       "2026-01-01",
		PeriodEnd:         "2026-01-31",
		SatisfactionScore: 5,
		CollectionMethod:  model.CollectionSurvey,
	}
	require.NoError(t, v.Validate(valid))

	sameDay := valid
	sameDay.PeriodEnd = sameDay.PeriodStart
	assert.NoError(t, v.Validate(sameDay))

	tests := []struct {
		name   string
		mutate func(*model.CreateProductFeedbackRequest)
		field  string
		msg    string
	}{
		{"score too high", func(r *model.CreateProductFeedbackRequest) { r.SatisfactionScore = 6 }, "satisfactionScore", "must be at most 5"},
		{"score missing", func(r *model.CreateProductFeedbackRequest) { r.SatisfactionScore = 0 }, "satisfactionScore", "is required"},
		{"emotion too low", func(r *model.CreateProductFeedbackRequest) { e := 0; r.EmotionScore = &e }, "emotionScore", "must be at least 1"},
		{"end before start", func(r *model.CreateProductFeedbackRequest) { r.PeriodEnd = "2025-12-31" }, "periodEnd", "must not be before periodStart"},
		{"bad date", func(r *model.CreateProductFeedbackRequest) { r.PeriodStart = "01/01/2026" }, "periodStart", "must be a date (YYYY-MM-DD)"},
		{"bad method", func(r *model.CreateProductFeedbackRequest) { r.CollectionMethod = "PHONE" }, "collectionMethod", "must be one of SURVEY, INTERVIEW, SNS, DIRECT, OTHER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			fields := fieldErrors(t, v.Validate(req))
			assert.Equal(t, tt.msg, fields[tt.field])
		})
	}
}

func TestValidateSummaryPeriod(t *testing.T) {
	v := New()
	err := v.Validate(model.GenerateFeedbackSummaryRequest{RecipeID: 1, PeriodStart: "2026-02-01", PeriodEnd: "2026-01-01"})
	assert.Equal(t, "must not be before periodStart", fieldErrors(t, err)["periodEnd"])
}

func TestValidateMessages(t *testing.T) {
	v := New()

	fields := fieldErrors(t, v.Validate(model.SendAiMessageRequest{Message: "   \n"}))
	assert.Equal(t, "must not be blank", fields["message"])

	fields = fieldErrors(t, v.Validate(model.CreateAiThreadRequest{
		Theme:          strings.Repeat("t", model.MaxThreadThemeLength+1),
		InitialMessage: "hello",
	}))
	assert.Equal(t, "must be at most 200 characters", fields["theme"])

	assert.NoError(t, v.Validate(model.CreateAiThreadRequest{Theme: "Sauce", InitialMessage: "hi"}))
}

func TestValidateRole(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(model.UpdateRoleRequest{Role: model.RoleChef}))
	fields := fieldErrors(t, v.Validate(model.UpdateRoleRequest{Role: "ADMIN"}))
	assert.Contains(t, fields["role"], "must be one of")
}

func TestMessageText(t *testing.T) {
	err := New().Validate(model.CreateKnowledgeArticleRequest{})
	assert.Equal(t, "title: is required; content: is required; categoryId: is required", apiclient.Message(err))
}
