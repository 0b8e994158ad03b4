// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"net/url"
	"strconv"

	"github.com/olegiv/recipe-console/internal/model"
)

// PageParams selects a zero-based page. Zero values are omitted so the
// backend applies its defaults.
type PageParams struct {
	Page int
	Size int
}

// Values encodes the non-zero fields.
func (p PageParams) Values() url.Values {
	v := url.Values{}
	p.addTo(v)
	return v
}

func (p PageParams) addTo(v url.Values) {
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Size > 0 {
		size := p.Size
		if size > model.MaxPageSize {
			size = model.MaxPageSize
		}
		v.Set("size", strconv.Itoa(size))
	}
}

func setID(v url.Values, key string, id int64) {
	if id > 0 {
		v.Set(key, strconv.FormatInt(id, 10))
	}
}

// ListRecipesParams filters GET /recipes.
type ListRecipesParams struct {
	Category string
	Status   model.RecipeStatus
	PageParams
}

// Values encodes the non-zero fields.
func (p ListRecipesParams) Values() url.Values {
	v := url.Values{}
	if p.Category != "" {
		v.Set("category", p.Category)
	}
	if p.Status != "" {
		v.Set("status", string(p.Status))
	}
	p.addTo(v)
	return v
}

// ListArticlesParams filters GET /knowledge/articles.
type ListArticlesParams struct {
	CategoryID int64
	PageParams
}

// Values encodes the non-zero fields.
func (p ListArticlesParams) Values() url.Values {
	v := url.Values{}
	setID(v, "categoryId", p.CategoryID)
	p.addTo(v)
	return v
}

// ListFeedbacksParams filters GET /feedbacks.
type ListFeedbacksParams struct {
	RecipeID int64
	StoreID  int64
	PageParams
}

// Values encodes the non-zero fields.
func (p ListFeedbacksParams) Values() url.Values {
	v := url.Values{}
	setID(v, "recipeId", p.RecipeID)
	setID(v, "storeId", p.StoreID)
	p.addTo(v)
	return v
}

// ListSummariesParams filters GET /feedbacks/summaries. RecipeID is required
// by the backend.
type ListSummariesParams struct {
	RecipeID int64
	PageParams
}

// Values encodes the non-zero fields.
func (p ListSummariesParams) Values() url.Values {
	v := url.Values{}
	setID(v, "recipeId", p.RecipeID)
	p.addTo(v)
	return v
}
