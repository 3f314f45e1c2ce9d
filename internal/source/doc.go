// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

// Package source provides the interaction snapshot sources used by the engine.
//
// Two kinds of source are available:
//
//   - duckdb: raw events in a DuckDB table, aggregated per (user, item, type)
//   - file: a pre-aggregated snapshot as a JSON array or newline-delimited JSON
//
// Open builds the configured source and, when enabled, wraps it in a Breaker
// so a failing backend is not hammered on every fit.
//
// # Snapshot File Format
//
// Each record carries the pre-aggregated fields:
//
//	{"user": "U1", "item": "I1", "type": "Trip", "name": "Alpine Loop", "avg": 4.5}
//
// A file whose first non-space byte is '[' is read as a JSON array; anything
// else is read as one record per line.
package source
