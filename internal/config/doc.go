// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

/*
Package config provides centralized configuration management for Wayfinder.

Configuration is loaded with Koanf v2 from three layers, later layers winning:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: CONFIG_PATH, then config.yaml, config.yml,
    /etc/wayfinder/config.yaml and /etc/wayfinder/config.yml
 3. Environment variables, through an explicit mapping table

Unmapped environment variables are ignored. Slice fields (RECOMMEND_ALGORITHMS,
REPORT_USERS, REPORT_ITEM_TYPES) accept comma-separated values.

# Configuration Structure

  - RecommendConfig: kNN parameters, top-N limits, duplicate policy, algorithms
  - SourceConfig: DuckDB or file snapshot source, with BreakerConfig
  - ReportConfig: users, item types, output target and format for the CLI
  - LoggingConfig: zerolog level, format and caller
  - MetricsConfig: Prometheus textfile output

# Example config.yaml

	recommend:
	  algorithms: [itemcf, usercf]
	  k_neighbors: 5
	  min_sim: 0.1
	  min_overlap: 0
	  top_n: 5
	source:
	  kind: duckdb
	  path: /data/wayfinder.duckdb
	report:
	  users: [U1, U2]
	  item_types: [Trip, Event]

# Validation

Validate runs the validator struct tags (see internal/validation) and then
cross-field checks. LoadWithKoanf returns an error for any invalid value.
*/
package config
