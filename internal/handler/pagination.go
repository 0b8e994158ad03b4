// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/olegiv/recipe-console/internal/apiclient"
	"github.com/olegiv/recipe-console/internal/model"
)

// Pagination is the page navigation in list views. Page numbers are
// one-based here; the backend counts from zero.
type Pagination struct {
	CurrentPage int              `json:"currentPage"`
	TotalPages  int              `json:"totalPages"`
	TotalItems  int64            `json:"totalItems"`
	PerPage     int              `json:"perPage"`
	HasPrev     bool             `json:"hasPrev"`
	HasNext     bool             `json:"hasNext"`
	PrevURL     string           `json:"prevUrl,omitempty"`
	NextURL     string           `json:"nextUrl,omitempty"`
	Pages       []PaginationPage `json:"pages"`
}

// PaginationPage represents a single page link.
type PaginationPage struct {
	Number     int    `json:"number,omitempty"`
	URL        string `json:"url,omitempty"`
	IsCurrent  bool   `json:"isCurrent,omitempty"`
	IsEllipsis bool   `json:"isEllipsis,omitempty"`
}

// pageParams reads ?page (one-based) and ?size into backend paging.
func pageParams(r *http.Request) apiclient.PageParams {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(q.Get("size"))
	if err != nil || size < 1 {
		size = model.DefaultPageSize
	}
	if size > model.MaxPageSize {
		size = model.MaxPageSize
	}
	return apiclient.PageParams{Page: page - 1, Size: size}
}

// BuildPagination creates page navigation for p. queryParams are the
// current filters to preserve; any page parameter in them is replaced.
func BuildPagination[T any](p model.Page[T], baseURL string, queryParams url.Values) Pagination {
	totalPages := max(p.TotalPages, 1)
	current := p.Number + 1

	params := make(url.Values)
	for k, v := range queryParams {
		if k != "page" && len(v) > 0 && v[0] != "" {
			params[k] = v
		}
	}
	queryString := params.Encode()
	buildURL := func(page int) string {
		if queryString != "" {
			return fmt.Sprintf("%s?%s&page=%d", baseURL, queryString, page)
		}
		return fmt.Sprintf("%s?page=%d", baseURL, page)
	}

	pg := Pagination{
		CurrentPage: current,
		TotalPages:  totalPages,
		TotalItems:  p.TotalElements,
		PerPage:     p.Size,
		HasPrev:     p.HasPrev(),
		HasNext:     p.HasNext(),
	}
	if pg.HasPrev {
		pg.PrevURL = buildURL(current - 1)
	}
	if pg.HasNext {
		pg.NextURL = buildURL(current + 1)
	}

	// Show at most 5 pages around the current one.
	start := current - 2
	end := current + 2
	if start < 1 {
		start = 1
		end = 5
	}
	if end > totalPages {
		end = totalPages
		start = max(end-4, 1)
	}

	if start > 1 {
		pg.Pages = append(pg.Pages, PaginationPage{Number: 1, URL: buildURL(1)})
		if start > 2 {
			pg.Pages = append(pg.Pages, PaginationPage{IsEllipsis: true})
		}
	}
	for i := start; i <= end; i++ {
		pg.Pages = append(pg.Pages, PaginationPage{Number: i, URL: buildURL(i), IsCurrent: i == current})
	}
	if end < totalPages {
		if end < totalPages-1 {
			pg.Pages = append(pg.Pages, PaginationPage{IsEllipsis: true})
		}
		pg.Pages = append(pg.Pages, PaginationPage{Number: totalPages, URL: buildURL(totalPages)})
	}

	return pg
}
