// Package metrics provides the centralized Prometheus metrics registry for
// the StackCoin client. All metrics are defined in their respective packages
// (client, pagination) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the StackCoin client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - stackcoin_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - stackcoin_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - stackcoin_errors_total{kind} (Counter): Errors by taxonomy kind
//     (authentication, session_closed, not_found, invalid_argument,
//     invalid_state, insufficient_funds, transport)
//
// Pagination Metrics (pkg/pagination):
//   - stackcoin_pages_fetched_total{entity} (Counter): Pages fetched by entity
//   - stackcoin_stream_items_total{entity} (Counter): Items yielded by streams
//
// Example Prometheus Queries:
//
//   # Request Error Rate
//   rate(stackcoin_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(stackcoin_request_duration_seconds_bucket[5m]))
//
//   # Average items per fetched page
//   rate(stackcoin_stream_items_total[5m]) / rate(stackcoin_pages_fetched_total[5m])
