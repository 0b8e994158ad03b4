// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/olegiv/recipe-console/internal/model"
)

func articlePath(id int64) string {
	return fmt.Sprintf("/knowledge/articles/%d", id)
}

// ListCategories fetches all knowledge categories.
func (c *Client) ListCategories(ctx context.Context) ([]model.KnowledgeCategory, error) {
	return get[[]model.KnowledgeCategory](ctx, c, "/knowledge/categories", nil)
}

// ListArticles fetches a page of articles, optionally within one category.
func (c *Client) ListArticles(ctx context.Context, p ListArticlesParams) (model.Page[model.KnowledgeArticle], error) {
	return get[model.Page[model.KnowledgeArticle]](ctx, c, "/knowledge/articles", p.Values())
}

// GetArticle fetches one article.
func (c *Client) GetArticle(ctx context.Context, id int64) (*model.KnowledgeArticle, error) {
	return get[*model.KnowledgeArticle](ctx, c, articlePath(id), nil)
}

// SearchArticles runs a keyword search over titles and content.
func (c *Client) SearchArticles(ctx context.Context, keyword string) ([]model.KnowledgeArticle, error) {
	return get[[]model.KnowledgeArticle](ctx, c, "/knowledge/articles/search", url.Values{"keyword": {keyword}})
}

// CreateArticle creates an article authored by the current member.
func (c *Client) CreateArticle(ctx context.Context, req model.CreateKnowledgeArticleRequest) (*model.KnowledgeArticle, error) {
	return send[*model.KnowledgeArticle](ctx, c, http.MethodPost, "/knowledge/articles", req)
}

// UpdateArticle updates an article.
func (c *Client) UpdateArticle(ctx context.Context, id int64, req model.UpdateKnowledgeArticleRequest) (*model.KnowledgeArticle, error) {
	return send[*model.KnowledgeArticle](ctx, c, http.MethodPut, articlePath(id), req)
}

// DeleteArticle deletes an article.
func (c *Client) DeleteArticle(ctx context.Context, id int64) error {
	return c.Send(ctx, http.MethodDelete, articlePath(id), nil, nil, nil)
}
