// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// AiThread is an AI consultation conversation.
type AiThread struct {
	ID         int64     `json:"id"`
	Theme      string    `json:"theme"`
	RecipeID   *int64    `json:"recipeId"`
	RecipeName *string   `json:"recipeName"`
	UserName   string    `json:"userName"`
	CreatedAt  LocalTime `json:"createdAt"`
	UpdatedAt  LocalTime `json:"updatedAt"`
}

// ReferencedArticle is a knowledge article cited by an AI reply.
type ReferencedArticle struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// AiMessage is one message in a thread.
type AiMessage struct {
	ID                 int64               `json:"id"`
	SenderType         SenderType          `json:"senderType"`
	Content            string              `json:"content"`
	ReferencedArticles []ReferencedArticle `json:"referencedArticles"`
	CreatedAt          LocalTime           `json:"createdAt"`
}

// CreateAiThreadRequest is the body of POST /ai/threads.
type CreateAiThreadRequest struct {
	Theme          string `json:"theme" validate:"required,max=200"`
	RecipeID       *int64 `json:"recipeId,omitempty" validate:"omitempty,gt=0"`
	InitialMessage string `json:"initialMessage" validate:"required,notblank"`
}

// SendAiMessageRequest is the body of POST /ai/threads/{id}/messages.
type SendAiMessageRequest struct {
	Message string `json:"message" validate:"required,notblank"`
}
