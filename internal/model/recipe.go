// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// CookingStep is one ordered step of a recipe.
type CookingStep struct {
	ID              int64   `json:"id"`
	StepNumber      int     `json:"stepNumber"`
	Description     string  `json:"description"`
	DurationMinutes *int    `json:"durationMinutes"`
	Temperature     *string `json:"temperature"`
	Tips            *string `json:"tips"`
}

// RecipeIngredient links an ingredient to a recipe with a quantity.
type RecipeIngredient struct {
	ID              int64    `json:"id"`
	IngredientID    int64    `json:"ingredientId"`
	IngredientName  string   `json:"ingredientName"`
	Quantity        *float64 `json:"quantity"`
	Unit            *string  `json:"unit"`
	PreparationNote *string  `json:"preparationNote"`
	Substitutes     *string  `json:"substitutes"`
}

// ServiceDesign describes how a dish is plated and served.
type ServiceDesign struct {
	ID                  int64   `json:"id"`
	PlatingInstructions *string `json:"platingInstructions"`
	ServiceMethod       *string `json:"serviceMethod"`
	CustomerScript      *string `json:"customerScript"`
	StagingMethod       *string `json:"stagingMethod"`
	Timing              *string `json:"timing"`
	Storytelling        *string `json:"storytelling"`
}

// ExperienceDesign describes the guest experience a dish targets.
type ExperienceDesign struct {
	ID                     int64   `json:"id"`
	TargetScene            *string `json:"targetScene"`
	EmotionalKeyPoints     *string `json:"emotionalKeyPoints"`
	SpecialOccasionSupport *string `json:"specialOccasionSupport"`
	SeasonalPresentation   *string `json:"seasonalPresentation"`
	SensoryAppeal          *string `json:"sensoryAppeal"`
}

// CreatedBy is the recipe author summary.
type CreatedBy struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Recipe is the full recipe record.
type Recipe struct {
	ID               int64              `json:"id"`
	Title            string             `json:"title"`
	Description      *string            `json:"description"`
	Category         *string            `json:"category"`
	Servings         *int               `json:"servings"`
	Status           RecipeStatus       `json:"status"`
	Concept          *string            `json:"concept"`
	Story            *string            `json:"story"`
	CreatedBy        CreatedBy          `json:"createdBy"`
	CookingSteps     []CookingStep      `json:"cookingSteps"`
	Ingredients      []RecipeIngredient `json:"ingredients"`
	ServiceDesign    *ServiceDesign     `json:"serviceDesign"`
	ExperienceDesign *ExperienceDesign  `json:"experienceDesign"`
	CreatedAt        LocalTime          `json:"createdAt"`
	UpdatedAt        LocalTime          `json:"updatedAt"`
}

// RecipeListItem is the compact row returned by the recipe list.
type RecipeListItem struct {
	ID            int64        `json:"id"`
	Title         string       `json:"title"`
	Description   *string      `json:"description"`
	Category      *string      `json:"category"`
	Servings      *int         `json:"servings"`
	Status        RecipeStatus `json:"status"`
	CreatedByName string       `json:"createdByName"`
	CreatedAt     LocalTime    `json:"createdAt"`
	UpdatedAt     LocalTime    `json:"updatedAt"`
}

// RecipeHistory is one entry of a recipe's change log.
type RecipeHistory struct {
	ID            int64     `json:"id"`
	ChangeType    string    `json:"changeType"`
	ChangedFields *string   `json:"changedFields"`
	ChangedByName string    `json:"changedByName"`
	ChangedAt     LocalTime `json:"changedAt"`
}

// CookingStepInput is a step submitted with a new recipe.
type CookingStepInput struct {
	StepNumber      int    `json:"stepNumber" validate:"min=1"`
	Description     string `json:"description" validate:"required"`
	DurationMinutes *int   `json:"durationMinutes,omitempty" validate:"omitempty,min=0"`
	Temperature     string `json:"temperature,omitempty"`
	Tips            string `json:"tips,omitempty"`
}

// IngredientInput is an ingredient line submitted with a new recipe.
type IngredientInput struct {
	IngredientID    int64    `json:"ingredientId" validate:"required,gt=0"`
	Quantity        *float64 `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Unit            string   `json:"unit,omitempty"`
	PreparationNote string   `json:"preparationNote,omitempty"`
	Substitutes     string   `json:"substitutes,omitempty"`
}

// CreateRecipeRequest is the body of POST /recipes.
type CreateRecipeRequest struct {
	Title        string             `json:"title" validate:"required,max=200"`
	Description  string             `json:"description,omitempty" validate:"max=2000"`
	Category     string             `json:"category,omitempty"`
	Servings     *int               `json:"servings,omitempty" validate:"omitempty,min=1"`
	Concept      string             `json:"concept,omitempty"`
	Story        string             `json:"story,omitempty"`
	CookingSteps []CookingStepInput `json:"cookingSteps,omitempty" validate:"dive"`
	Ingredients  []IngredientInput  `json:"ingredients,omitempty" validate:"dive"`
}

// UpdateRecipeRequest is the body of PUT /recipes/{id}. Empty fields are
// left unchanged by the backend.
type UpdateRecipeRequest struct {
	Title       string `json:"title,omitempty" validate:"max=200"`
	Description string `json:"description,omitempty" validate:"max=2000"`
	Category    string `json:"category,omitempty"`
	Servings    *int   `json:"servings,omitempty" validate:"omitempty,min=1"`
	Concept     string `json:"concept,omitempty"`
	Story       string `json:"story,omitempty"`
}

// UpdateServiceDesignRequest is the body of PUT /recipes/{id}/service-design.
type UpdateServiceDesignRequest struct {
	PlatingInstructions string `json:"platingInstructions,omitempty"`
	ServiceMethod       string `json:"serviceMethod,omitempty"`
	CustomerScript      string `json:"customerScript,omitempty"`
	StagingMethod       string `json:"stagingMethod,omitempty"`
	Timing              string `json:"timing,omitempty"`
	Storytelling        string `json:"storytelling,omitempty"`
}

// UpdateExperienceDesignRequest is the body of PUT /recipes/{id}/experience-design.
type UpdateExperienceDesignRequest struct {
	TargetScene            string `json:"targetScene,omitempty"`
	EmotionalKeyPoints     string `json:"emotionalKeyPoints,omitempty"`
	SpecialOccasionSupport string `json:"specialOccasionSupport,omitempty"`
	SeasonalPresentation   string `json:"seasonalPresentation,omitempty"`
	SensoryAppeal          string `json:"sensoryAppeal,omitempty"`
}

// UpdateStatusRequest is the body of PUT /recipes/{id}/status.
type UpdateStatusRequest struct {
	Status RecipeStatus `json:"status" validate:"required,oneof=DRAFT PUBLISHED ARCHIVED DELETED"`
}
