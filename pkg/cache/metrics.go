package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cacheHits tracks cache hits by collection.
	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tfmkt_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"collection"},
	)

	// cacheMisses tracks cache misses by collection.
	cacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tfmkt_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"collection"},
	)

	// cacheWrites tracks upserts by collection and outcome (insert, update).
	cacheWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tfmkt_cache_writes_total",
			Help: "Total number of cache writes",
		},
		[]string{"collection", "outcome"},
	)

	// cacheErrors tracks store failures by operation.
	cacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tfmkt_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "list", "count", "set"
	)
)
