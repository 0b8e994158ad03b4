// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestResource(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/recipes/7/history", "recipes"},
		{"recipes/7/", "recipes"},
		{"/knowledge/articles/search?keyword=x", "knowledge"},
		{"/users", "users"},
		{"", "root"},
		{"/", "root"},
	}
	for _, tt := range tests {
		if got := Resource(tt.in); got != tt.want {
			t.Errorf("Resource(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestObserveBackend(t *testing.T) {
	before := testutil.ToFloat64(BackendRequestsTotal.WithLabelValues("GET", "feedbacks", "200"))
	ObserveBackend("GET", "/feedbacks/3", 200, 15*time.Millisecond)
	after := testutil.ToFloat64(BackendRequestsTotal.WithLabelValues("GET", "feedbacks", "200"))
	if after-before != 1 {
		t.Errorf("counter delta = %v, want 1", after-before)
	}

	beforeErr := testutil.ToFloat64(BackendRequestsTotal.WithLabelValues("POST", "recipes", "error"))
	ObserveBackend("POST", "/recipes", 0, time.Millisecond)
	if got := testutil.ToFloat64(BackendRequestsTotal.WithLabelValues("POST", "recipes", "error")) - beforeErr; got != 1 {
		t.Errorf("transport error delta = %v, want 1", got)
	}
}
