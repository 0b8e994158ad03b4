// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/olegiv/recipe-console/internal/model"
)

// ListFeedbacks fetches a page of feedback records.
func (c *Client) ListFeedbacks(ctx context.Context, p ListFeedbacksParams) (model.Page[model.ProductFeedback], error) {
	return get[model.Page[model.ProductFeedback]](ctx, c, "/feedbacks", p.Values())
}

// GetFeedback fetches one feedback record.
func (c *Client) GetFeedback(ctx context.Context, id int64) (*model.ProductFeedback, error) {
	return get[*model.ProductFeedback](ctx, c, fmt.Sprintf("/feedbacks/%d", id), nil)
}

// CreateFeedback registers customer feedback.
func (c *Client) CreateFeedback(ctx context.Context, req model.CreateProductFeedbackRequest) (*model.ProductFeedback, error) {
	return send[*model.ProductFeedback](ctx, c, http.MethodPost, "/feedbacks", req)
}

// DeleteFeedback deletes a feedback record.
func (c *Client) DeleteFeedback(ctx context.Context, id int64) error {
	return c.Send(ctx, http.MethodDelete, fmt.Sprintf("/feedbacks/%d", id), nil, nil, nil)
}

// GenerateSummary aggregates a recipe's feedback over a period.
func (c *Client) GenerateSummary(ctx context.Context, req model.GenerateFeedbackSummaryRequest) (*model.FeedbackSummary, error) {
	return send[*model.FeedbackSummary](ctx, c, http.MethodPost, "/feedbacks/summaries/generate", req)
}

// ListSummaries fetches a page of a recipe's summaries.
func (c *Client) ListSummaries(ctx context.Context, p ListSummariesParams) (model.Page[model.FeedbackSummary], error) {
	return get[model.Page[model.FeedbackSummary]](ctx, c, "/feedbacks/summaries", p.Values())
}

// GetSummary fetches one summary.
func (c *Client) GetSummary(ctx context.Context, id int64) (*model.FeedbackSummary, error) {
	return get[*model.FeedbackSummary](ctx, c, fmt.Sprintf("/feedbacks/summaries/%d", id), nil)
}

// GetTrend fetches a recipe's summaries in period order.
func (c *Client) GetTrend(ctx context.Context, recipeID int64) ([]model.FeedbackSummary, error) {
	params := url.Values{"recipeId": {strconv.FormatInt(recipeID, 10)}}
	return get[[]model.FeedbackSummary](ctx, c, "/feedbacks/summaries/trend", params)
}
