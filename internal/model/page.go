// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "fmt"

// Page is the paginated envelope returned by list endpoints. Number is
// zero-based.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
	Empty         bool  `json:"empty"`
}

// Valid checks the envelope invariants.
func (p Page[T]) Valid() error {
	if p.Size > 0 && len(p.Content) > p.Size {
		return fmt.Errorf("page holds %d items, size is %d", len(p.Content), p.Size)
	}
	if p.TotalPages > 0 && (p.Number < 0 || p.Number >= p.TotalPages) {
		return fmt.Errorf("page number %d outside [0,%d)", p.Number, p.TotalPages)
	}
	return nil
}

// HasNext reports whether another page follows.
func (p Page[T]) HasNext() bool {
	return !p.Last && p.Number+1 < p.TotalPages
}

// HasPrev reports whether a page precedes this one.
func (p Page[T]) HasPrev() bool {
	return !p.First && p.Number > 0
}
