// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package query is the data-synchronization layer: a keyed cache of backend
// reads with freshness, de-duplication, retry and prefix invalidation.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Key identifies a cached query. Segments are ordered from general to
// specific so that a shorter key is a prefix of every key below it.
type Key []string

// NewKey builds a key. Strings are path-escaped, integers formatted in base
// 10, and url.Values encoded sorted with a leading "?" so that parameter sets
// never collide with ids.
func NewKey(segments ...any) Key {
	k := make(Key, 0, len(segments))
	for _, s := range segments {
		switch v := s.(type) {
		case string:
			k = append(k, url.PathEscape(v))
		case int:
			k = append(k, strconv.Itoa(v))
		case int64:
			k = append(k, strconv.FormatInt(v, 10))
		case url.Values:
			k = append(k, "?"+v.Encode())
		case fmt.Stringer:
			k = append(k, url.PathEscape(v.String()))
		default:
			k = append(k, url.PathEscape(fmt.Sprint(v)))
		}
	}
	return k
}

// String joins the segments with "/" and terminates with "/", so prefix
// matching on the string form is whole-segment.
func (k Key) String() string {
	if len(k) == 0 {
		return ""
	}
	return strings.Join(k, "/") + "/"
}

// HasPrefix reports whether prefix matches k segment by segment.
func (k Key) HasPrefix(prefix Key) bool {
	return strings.HasPrefix(k.String(), prefix.String())
}
