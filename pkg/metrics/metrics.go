// Package metrics provides the centralized Prometheus metrics registry.
// All metrics are defined in their respective packages (cache, provider,
// refresh) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the service.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - tfmkt_cache_hits_total{collection} (Counter): Cache hits by collection
//   - tfmkt_cache_misses_total{collection} (Counter): Cache misses by collection
//   - tfmkt_cache_writes_total{collection, outcome} (Counter): Upserts by outcome (insert, update)
//   - tfmkt_cache_errors_total{operation} (Counter): Store failures by operation
//
// Provider Metrics (pkg/provider):
//   - tfmkt_provider_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - tfmkt_provider_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - tfmkt_provider_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//   - tfmkt_provider_retries_total{error_class} (Counter): Retry attempts by error class
//   - tfmkt_provider_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Refresh Metrics (pkg/refresh):
//   - tfmkt_refresh_cycles_total{outcome} (Counter): Cycles by outcome (ok, error)
//   - tfmkt_refresh_cycle_duration_seconds (Histogram): Wall time per cycle
//   - tfmkt_refresh_players_refreshed_total (Counter): Player profiles republished
//   - tfmkt_refresh_clubs_seeded_total (Counter): Clubs discovered from seed leagues
//   - tfmkt_refresh_item_failures_total{kind} (Counter): Skipped items by kind (league, club, player)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(tfmkt_cache_hits_total[5m])) /
//   (sum(rate(tfmkt_cache_hits_total[5m])) + sum(rate(tfmkt_cache_misses_total[5m])))
//
//   # Provider Error Rate
//   rate(tfmkt_provider_errors_total[5m])
//
//   # P95 Cycle Duration
//   histogram_quantile(0.95, rate(tfmkt_refresh_cycle_duration_seconds_bucket[5m]))
//
//   # Refresh Skip Rate
//   rate(tfmkt_refresh_item_failures_total[5m])
