// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/olegiv/recipe-console/internal/model"
)

func threadPath(id int64) string {
	return fmt.Sprintf("/ai/threads/%d", id)
}

// ListThreads fetches a page of the member's consultation threads.
func (c *Client) ListThreads(ctx context.Context, p PageParams) (model.Page[model.AiThread], error) {
	return get[model.Page[model.AiThread]](ctx, c, "/ai/threads", p.Values())
}

// GetThread fetches one thread.
func (c *Client) GetThread(ctx context.Context, id int64) (*model.AiThread, error) {
	return get[*model.AiThread](ctx, c, threadPath(id), nil)
}

// CreateThread opens a thread with its first user message.
func (c *Client) CreateThread(ctx context.Context, req model.CreateAiThreadRequest) (*model.AiThread, error) {
	return send[*model.AiThread](ctx, c, http.MethodPost, "/ai/threads", req)
}

// ListMessages fetches all messages of a thread in order.
func (c *Client) ListMessages(ctx context.Context, threadID int64) ([]model.AiMessage, error) {
	return get[[]model.AiMessage](ctx, c, threadPath(threadID)+"/messages", nil)
}

// SendMessage posts a user message and returns the stored reply.
func (c *Client) SendMessage(ctx context.Context, threadID int64, req model.SendAiMessageRequest) (*model.AiMessage, error) {
	return send[*model.AiMessage](ctx, c, http.MethodPost, threadPath(threadID)+"/messages", req)
}
