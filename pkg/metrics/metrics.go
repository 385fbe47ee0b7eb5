// Package metrics provides the centralized Prometheus metrics registry
// for the MPDS client. Metrics are defined in their respective packages
// (client, cache, ratelimit) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available
// metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the MPDS client.
// All metrics are automatically registered via promauto in their
// respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - mpds_requests_total{status} (Counter): Facet requests by HTTP status or "network_error"
//   - mpds_request_duration_seconds (Histogram): Facet request duration
//   - mpds_errors_total{kind} (Counter): Errors by kind (transport, decode,
//     upstream, empty, ceiling, consistency, protocol, config)
//   - mpds_pages_fetched_total (Counter): Result pages fetched
//   - mpds_records_collected_total (Counter): Records collected
//
// Pacing Metrics (pkg/ratelimit):
//   - mpds_pacer_pauses_total (Counter): Courtesy pauses between page requests
//   - mpds_pacer_paused_seconds_total (Counter): Total time spent pausing
//
// Cache Metrics (pkg/cache):
//   - mpds_cache_hits_total{layer="redis"} (Counter): Page cache hits by layer
//   - mpds_cache_misses_total (Counter): Page cache misses
//   - mpds_cache_size_bytes{layer="redis"} (Gauge): Page cache size in bytes
//   - mpds_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(mpds_cache_hits_total[5m])) /
//   (sum(rate(mpds_cache_hits_total[5m])) + sum(rate(mpds_cache_misses_total[5m])))
//
//   # Error Rate by Kind
//   rate(mpds_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(mpds_request_duration_seconds_bucket[5m]))
//
//   # Share of Wall Time Spent Pacing
//   rate(mpds_pacer_paused_seconds_total[5m])
