// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package config

import (
	"time"

	"github.com/tomtom215/wayfinder/internal/logging"
	"github.com/tomtom215/wayfinder/internal/recommend"
)

// Source kinds.
const (
	SourceDuckDB = "duckdb"
	SourceFile   = "file"
)

// Report formats.
const (
	FormatJSON   = "json"
	FormatNDJSON = "ndjson"
)

// Config holds all application configuration.
type Config struct {
	Recommend RecommendConfig `koanf:"recommend"`
	Source    SourceConfig    `koanf:"source"`
	Report    ReportConfig    `koanf:"report"`
	Logging   LoggingConfig   `koanf:"logging"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

// RecommendConfig holds the collaborative filtering parameters.
//
// Environment Variables:
//   - RECOMMEND_ALGORITHMS: comma-separated list of itemcf, usercf (default: itemcf,usercf)
//   - RECOMMEND_K_NEIGHBORS: neighbors per user for usercf (default: 5)
//   - RECOMMEND_MIN_SIM: similarity floor, exclusive (default: 0.1)
//   - RECOMMEND_MIN_OVERLAP: co-occurrence floor, exclusive (default: 0)
//   - RECOMMEND_TOP_N: recommendations per report (default: 5)
//   - RECOMMEND_MAX_TOP_N: cap on requested recommendations (default: 100)
//   - RECOMMEND_DUPLICATE_POLICY: reject or mean (default: reject)
//   - RECOMMEND_FIT_TIMEOUT: bound on the snapshot fetch (default: 2m)
type RecommendConfig struct {
	Algorithms      []string      `koanf:"algorithms" validate:"min=1,dive,oneof=itemcf usercf"`
	KNeighbors      int           `koanf:"k_neighbors" validate:"min=1"`
	MinSimilarity   float64       `koanf:"min_sim" validate:"gte=-1,lte=1"`
	MinOverlap      int           `koanf:"min_overlap" validate:"min=0"`
	TopN            int           `koanf:"top_n" validate:"min=1"`
	MaxTopN         int           `koanf:"max_top_n" validate:"gtefield=TopN"`
	DuplicatePolicy string        `koanf:"duplicate_policy" validate:"oneof=reject mean"`
	FitTimeout      time.Duration `koanf:"fit_timeout" validate:"gt=0"`
}

// SourceConfig selects where interaction snapshots come from.
//
// Environment Variables:
//   - SOURCE_KIND: duckdb or file (default: duckdb)
//   - DUCKDB_PATH / SOURCE_PATH: database file or snapshot file (default: /data/wayfinder.duckdb)
//   - SOURCE_TABLE: raw interactions table for duckdb (default: interactions)
//   - SOURCE_TIMEOUT: per-fetch timeout (default: 30s)
//   - SOURCE_LOOKBACK: only read duckdb interactions newer than this, 0 = all (default: 0)
//   - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 1GB)
//   - DUCKDB_THREADS: DuckDB worker threads, 0 = NumCPU (default: 0)
type SourceConfig struct {
	Kind      string        `koanf:"kind" validate:"oneof=duckdb file"`
	Path      string        `koanf:"path" validate:"required"`
	Table     string        `koanf:"table" validate:"sql_identifier"`
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
	Lookback  time.Duration `koanf:"lookback" validate:"min=0"`
	MaxMemory string        `koanf:"max_memory"`
	Threads   int           `koanf:"threads" validate:"min=0"`
	Breaker   BreakerConfig `koanf:"breaker"`
}

// BreakerConfig holds circuit breaker settings for the data source.
//
// Environment Variables:
//   - SOURCE_BREAKER_ENABLED: wrap the source in a circuit breaker (default: true)
//   - SOURCE_BREAKER_MAX_REQUESTS: probes allowed while half-open (default: 1)
//   - SOURCE_BREAKER_INTERVAL: closed-state counter reset period (default: 1m)
//   - SOURCE_BREAKER_TIMEOUT: open-state duration (default: 30s)
//   - SOURCE_BREAKER_FAILURE_THRESHOLD: consecutive failures before opening (default: 3)
type BreakerConfig struct {
	Enabled          bool          `koanf:"enabled"`
	MaxRequests      uint32        `koanf:"max_requests" validate:"min=1"`
	Interval         time.Duration `koanf:"interval" validate:"min=0"`
	Timeout          time.Duration `koanf:"timeout" validate:"gt=0"`
	FailureThreshold uint32        `koanf:"failure_threshold" validate:"min=1"`
}

// ReportConfig controls which reports the CLI emits.
//
// Environment Variables:
//   - REPORT_USERS: comma-separated user IDs
//   - REPORT_ITEM_TYPES: comma-separated item types; empty means one untyped pass
//   - REPORT_OUTPUT: output file, empty or "-" for stdout
//   - REPORT_FORMAT: json or ndjson (default: json)
type ReportConfig struct {
	Users     []string `koanf:"users"`
	ItemTypes []string `koanf:"item_types"`
	Output    string   `koanf:"output"`
	Format    string   `koanf:"format" validate:"oneof=json ndjson"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// MetricsConfig controls the Prometheus textfile written after each run.
//
// Environment Variables:
//   - METRICS_ENABLED: write metrics after the run (default: false)
//   - METRICS_TEXTFILE_PATH: node-exporter textfile collector target
type MetricsConfig struct {
	Enabled      bool   `koanf:"enabled"`
	TextfilePath string `koanf:"textfile_path" validate:"required_if=Enabled true"`
}

// ToEngineConfig converts the recommend section into the engine's configuration.
func (c *Config) ToEngineConfig() *recommend.Config {
	return &recommend.Config{
		KNN: recommend.KNNConfig{
			KNeighbors:    c.Recommend.KNeighbors,
			MinSimilarity: c.Recommend.MinSimilarity,
			MinOverlap:    c.Recommend.MinOverlap,
		},
		Limits: recommend.LimitsConfig{
			DefaultTopN: c.Recommend.TopN,
			MaxTopN:     c.Recommend.MaxTopN,
		},
		DuplicatePolicy: recommend.DuplicatePolicy(c.Recommend.DuplicatePolicy),
		FitTimeout:      c.Recommend.FitTimeout,
	}
}

// ToLoggingConfig converts the logging section into a logging.Config.
func (c *Config) ToLoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	return cfg
}

// Load reads configuration from multiple sources with the following precedence
// (highest to lowest):
//  1. Environment variables
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Built-in defaults
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
