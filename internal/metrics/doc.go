// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered with the default registry through promauto. Wayfinder
runs as a batch job and serves no endpoint, so metrics are written to a file
for the node-exporter textfile collector:

	if err := metrics.WriteTextfile("/var/lib/node_exporter/wayfinder.prom"); err != nil {
	    logging.Warn().Err(err).Msg("failed to write metrics")
	}

# Available Metrics

Fit Metrics:
  - wayfinder_fit_duration_seconds: Fit duration (histogram)
    Labels: algorithm
  - wayfinder_fit_total: Fits by outcome (counter)
    Labels: algorithm, status (ready, unfit)
  - wayfinder_fit_failures_total: Unfit outcomes by cause (counter)
    Labels: algorithm, reason
  - wayfinder_similarity_nonzero: Stored similarity entries (gauge)
    Labels: algorithm
  - wayfinder_matrix_dimensions: Interaction matrix shape (gauge)
    Labels: algorithm, axis (users, items)

Recommend Metrics:
  - wayfinder_recommend_total: Requests by outcome (counter)
    Labels: algorithm, status
  - wayfinder_recommend_duration_seconds: Request latency (histogram)
    Labels: algorithm
  - wayfinder_recommend_empty_total: Empty answers by cause (counter)
    Labels: algorithm, reason

Source Metrics:
  - wayfinder_source_fetch_total: Snapshot fetches (counter)
    Labels: source, status (success, failure)
  - wayfinder_source_fetch_duration_seconds: Fetch latency (histogram)
  - wayfinder_source_records: Records in the last snapshot (gauge)

Circuit Breaker Metrics:
  - wayfinder_circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
  - wayfinder_circuit_breaker_requests_total: Labels name, result (counter)
  - wayfinder_circuit_breaker_consecutive_failures (gauge)
  - wayfinder_circuit_breaker_state_transitions_total: Labels name, from_state, to_state

Reason labels come from a fixed set (empty_input, empty_matrix, ambiguous_pivot,
invalid_interaction, not_fitted, unknown_user, unknown_algorithm, canceled,
other, none) so label cardinality stays bounded.

# Engine Integration

Observer implements recommend.Observer:

	engine.SetObserver(metrics.NewObserver())
*/
package metrics
