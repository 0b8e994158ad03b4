// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/olegiv/recipe-console/internal/apiclient"
	"github.com/olegiv/recipe-console/internal/model"
)

// formReader reads typed values from a parsed form and collects the fields
// that do not parse.
type formReader struct {
	r    *http.Request
	errs []model.FieldError
}

func newFormReader(r *http.Request) *formReader {
	return &formReader{r: r}
}

func (f *formReader) fail(field, msg string) {
	f.errs = append(f.errs, model.FieldError{Field: field, Message: msg})
}

// str returns the trimmed value of key.
func (f *formReader) str(key string) string {
	return strings.TrimSpace(f.r.PostFormValue(key))
}

// raw returns the value of key untrimmed. Markdown bodies keep their
// leading indentation.
func (f *formReader) raw(key string) string {
	return f.r.PostFormValue(key)
}

func (f *formReader) integer(key string) int {
	v := f.str(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f.fail(key, "must be a whole number")
	}
	return n
}

func (f *formReader) optInteger(key string) *int {
	if f.str(key) == "" {
		return nil
	}
	n := f.integer(key)
	return &n
}

func (f *formReader) id(key string) int64 {
	return parseInt64(f, key, f.str(key))
}

func (f *formReader) optID(key string) *int64 {
	if f.str(key) == "" {
		return nil
	}
	n := f.id(key)
	return &n
}

// ids reads every non-blank value of a repeated field.
func (f *formReader) ids(key string) []int64 {
	var out []int64
	for _, v := range f.r.PostForm[key] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, parseInt64(f, key, v))
		}
	}
	return out
}

// at returns the i-th value of a repeated field, or "".
func (f *formReader) at(key string, i int) string {
	vals := f.r.PostForm[key]
	if i < len(vals) {
		return strings.TrimSpace(vals[i])
	}
	return ""
}

func parseInt64(f *formReader, key, v string) int64 {
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		f.fail(key, "must be a whole number")
	}
	return n
}

// err returns the collected parse failures as a validation error, or nil.
func (f *formReader) err() error {
	if len(f.errs) == 0 {
		return nil
	}
	return &apiclient.ValidationError{Fields: f.errs}
}

// queryInt64 reads a positive integer query parameter, or 0.
func queryInt64(r *http.Request, key string) int64 {
	n, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
