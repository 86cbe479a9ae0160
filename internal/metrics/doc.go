// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry via promauto and are
served at /metrics by the HTTP server:

	curl http://localhost:3000/metrics

# Available Metrics

Database Metrics:
  - duckdb_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - duckdb_query_errors_total: Failed queries (counter)
    Labels: operation, table, error_type

API Metrics:
  - api_requests_total: Total requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
  - api_active_requests: In-flight requests (gauge)
  - api_rate_limit_hits_total: Rate limited requests (counter)

TMDB Metrics:
  - tmdb_requests_total, tmdb_request_duration_seconds
  - cache_hits_total / cache_misses_total with cache_type="tmdb"
  - circuit_breaker_* with name="tmdb"

Auth Metrics:
  - auth_login_attempts_total: Labels provider, result
  - auth_registrations_total: Labels provider
  - authz_decisions_total: Labels result
  - mail_messages_total: Labels kind, result

Catalog Metrics:
  - reviews_submitted_total: Labels action
  - movies_imported_total

# Usage

Database code wraps each query:

	start := time.Now()
	rows, err := db.QueryContext(ctx, query)
	metrics.RecordDBQuery("select", "movies", time.Since(start), err)

HTTP handlers are instrumented by middleware.PrometheusMetrics, which uses
the chi route pattern as the endpoint label.
*/
package metrics
