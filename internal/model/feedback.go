// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// ProductFeedback is one customer feedback record for a recipe.
type ProductFeedback struct {
	ID                int64            `json:"id"`
	RecipeID          int64            `json:"recipeId"`
	RecipeTitle       string           `json:"recipeTitle"`
	StoreID           *int64           `json:"storeId"`
	StoreName         *string          `json:"storeName"`
	PeriodStart       string           `json:"periodStart"`
	PeriodEnd         string           `json:"periodEnd"`
	SatisfactionScore int              `json:"satisfactionScore"`
	EmotionScore      *int             `json:"emotionScore"`
	Comment           *string          `json:"comment"`
	CollectionMethod  CollectionMethod `json:"collectionMethod"`
	RegisteredByName  string           `json:"registeredByName"`
	CreatedAt         LocalTime        `json:"createdAt"`
}

// FeedbackSummary aggregates feedback for a recipe over a period. The
// averages are decimal strings as sent by the backend.
type FeedbackSummary struct {
	ID               int64     `json:"id"`
	RecipeID         int64     `json:"recipeId"`
	RecipeTitle      string    `json:"recipeTitle"`
	PeriodStart      string    `json:"periodStart"`
	PeriodEnd        string    `json:"periodEnd"`
	AvgSatisfaction  Decimal   `json:"avgSatisfaction"`
	AvgEmotion       *Decimal  `json:"avgEmotion"`
	FeedbackCount    int       `json:"feedbackCount"`
	MainCommentTrend *string   `json:"mainCommentTrend"`
	CreatedAt        LocalTime `json:"createdAt"`
	UpdatedAt        LocalTime `json:"updatedAt"`
}

// CreateProductFeedbackRequest is the body of POST /feedbacks. Dates are
// YYYY-MM-DD.
type CreateProductFeedbackRequest struct {
	RecipeID          int64            `json:"recipeId" validate:"required,gt=0"`
	StoreID           *int64           `json:"storeId,omitempty" validate:"omitempty,gt=0"`
	PeriodStart       string           `json:"periodStart" validate:"required,datetime=2006-01-02"`
	PeriodEnd         string           `json:"periodEnd" validate:"required,datetime=2006-01-02"`
	SatisfactionScore int              `json:"satisfactionScore" validate:"required,min=1,max=5"`
	EmotionScore      *int             `json:"emotionScore,omitempty" validate:"omitempty,min=1,max=5"`
	Comment           string           `json:"comment,omitempty"`
	CollectionMethod  CollectionMethod `json:"collectionMethod" validate:"required,oneof=SURVEY INTERVIEW SNS DIRECT OTHER"`
}

// GenerateFeedbackSummaryRequest is the body of POST /feedbacks/summaries/generate.
type GenerateFeedbackSummaryRequest struct {
	RecipeID    int64  `json:"recipeId" validate:"required,gt=0"`
	PeriodStart string `json:"periodStart" validate:"required,datetime=2006-01-02"`
	PeriodEnd   string `json:"periodEnd" validate:"required,datetime=2006-01-02"`
}
