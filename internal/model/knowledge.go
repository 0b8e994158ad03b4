// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// KnowledgeCategory groups knowledge articles.
type KnowledgeCategory struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	SortOrder   int     `json:"sortOrder"`
}

// RelatedRecipe is a recipe reference attached to an article.
type RelatedRecipe struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// KnowledgeArticle is a knowledge base entry. Content is Markdown.
type KnowledgeArticle struct {
	ID             int64           `json:"id"`
	Title          string          `json:"title"`
	Content        string          `json:"content"`
	CategoryName   string          `json:"categoryName"`
	CategoryID     int64           `json:"categoryId"`
	Tags           *string         `json:"tags"`
	AuthorName     string          `json:"authorName"`
	AuthorID       int64           `json:"authorId"`
	RelatedRecipes []RelatedRecipe `json:"relatedRecipes"`
	CreatedAt      LocalTime       `json:"createdAt"`
	UpdatedAt      LocalTime       `json:"updatedAt"`
}

// CreateKnowledgeArticleRequest is the body of POST /knowledge/articles.
type CreateKnowledgeArticleRequest struct {
	Title            string  `json:"title" validate:"required,max=200"`
	Content          string  `json:"content" validate:"required"`
	CategoryID       int64   `json:"categoryId" validate:"required,gt=0"`
	Tags             string  `json:"tags,omitempty"`
	RelatedRecipeIDs []int64 `json:"relatedRecipeIds,omitempty"`
}

// UpdateKnowledgeArticleRequest is the body of PUT /knowledge/articles/{id}.
type UpdateKnowledgeArticleRequest struct {
	Title            string  `json:"title,omitempty" validate:"max=200"`
	Content          string  `json:"content,omitempty"`
	CategoryID       int64   `json:"categoryId,omitempty" validate:"omitempty,gt=0"`
	Tags             string  `json:"tags,omitempty"`
	RelatedRecipeIDs []int64 `json:"relatedRecipeIds,omitempty"`
}
