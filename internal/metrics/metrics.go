// SPDX-License-Identifier: MIT

// Package metrics provides Prometheus metrics for the ytwall daemon.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequestsTotal counts query API requests by endpoint and outcome.
	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytwall_upstream_requests_total",
		Help: "Total number of query API requests, by endpoint and status code.",
	}, []string{"endpoint", "code"})

	// RefreshTotal counts live-status refresh cycles by result.
	RefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytwall_refresh_total",
		Help: "Total number of live-status refresh cycles, by result (ok/error).",
	}, []string{"result"})

	// RebuildTotal counts full catalog rebuilds by trigger.
	RebuildTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytwall_rebuild_total",
		Help: "Total number of full catalog rebuilds, by trigger (stale/miss/forced).",
	}, []string{"trigger"})

	// CacheHitsTotal counts catalog cache loads by outcome.
	CacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytwall_cache_loads_total",
		Help: "Total number of catalog cache loads, by outcome (fresh/stale/miss/error).",
	}, []string{"outcome"})

	// CatalogSize tracks the current number of catalog entries.
	CatalogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ytwall_catalog_entries",
		Help: "Current number of catalog entries.",
	})

	// LiveVideos tracks the current number of live entries.
	LiveVideos = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ytwall_live_videos",
		Help: "Current number of catalog entries that are live.",
	})

	// NewlyLiveTotal counts entries reported as newly live by refresh cycles.
	NewlyLiveTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ytwall_newly_live_total",
		Help: "Total number of not-live to live transitions observed.",
	})
)
