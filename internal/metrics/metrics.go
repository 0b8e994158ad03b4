// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics provides Prometheus metrics for the recipe console.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "recipe_console"

var (
	// BackendRequestsTotal counts backend API calls.
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Total number of backend API requests",
		},
		[]string{"method", "resource", "status"},
	)

	// BackendRequestDuration measures backend API call latency.
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Duration of backend API requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "resource"},
	)

	// QueryCacheTotal counts query cache lookups by outcome.
	QueryCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_total",
			Help:      "Query cache lookups by resource and outcome",
		},
		[]string{"resource", "outcome"},
	)

	// InvalidationsTotal counts prefix invalidations.
	InvalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_invalidations_total",
			Help:      "Query cache prefix invalidations by mutation kind",
		},
		[]string{"kind"},
	)

	// PollErrorsTotal counts failed poll ticks.
	PollErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_errors_total",
			Help:      "Total number of failed poll refetches",
		},
	)
)

// Cache lookup outcomes.
const (
	OutcomeHit   = "hit"
	OutcomeMiss  = "miss"
	OutcomeStale = "stale"
)

// ObserveBackend records one backend call. status is 0 for transport failures.
func ObserveBackend(method, path string, status int, d time.Duration) {
	resource := Resource(path)
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	BackendRequestsTotal.WithLabelValues(method, resource, label).Inc()
	BackendRequestDuration.WithLabelValues(method, resource).Observe(d.Seconds())
}

// RecordCache records a query cache lookup for the given key.
func RecordCache(key, outcome string) {
	QueryCacheTotal.WithLabelValues(Resource(key), outcome).Inc()
}

// RecordInvalidation records a mutation's invalidation pass.
func RecordInvalidation(kind string) {
	InvalidationsTotal.WithLabelValues(kind).Inc()
}

// RecordPollError records a failed poll tick.
func RecordPollError() {
	PollErrorsTotal.Inc()
}

// Resource reduces a path or key to its first segment to bound label
// cardinality: "/recipes/7/history" and "recipes/7/" both map to "recipes".
func Resource(path string) string {
	path = strings.TrimLeft(path, "/")
	if i := strings.IndexAny(path, "/?"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "root"
	}
	return path
}
