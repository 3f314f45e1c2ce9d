// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/tomtom215/wayfinder/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/wayfinder/config.yaml",
	"/etc/wayfinder/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	engine := recommend.DefaultConfig()

	return &Config{
		Recommend: RecommendConfig{
			Algorithms:      []string{recommend.AlgorithmItemCF, recommend.AlgorithmUserCF},
			KNeighbors:      engine.KNN.KNeighbors,
			MinSimilarity:   engine.KNN.MinSimilarity,
			MinOverlap:      engine.KNN.MinOverlap,
			TopN:            engine.Limits.DefaultTopN,
			MaxTopN:         engine.Limits.MaxTopN,
			DuplicatePolicy: string(engine.DuplicatePolicy),
			FitTimeout:      engine.FitTimeout,
		},
		Source: SourceConfig{
			Kind:      SourceDuckDB,
			Path:      "/data/wayfinder.duckdb",
			Table:     "interactions",
			Timeout:   30 * time.Second,
			Lookback:  0, // 0 = full history
			MaxMemory: "1GB",
			Threads:   0, // 0 = use runtime.NumCPU()
			Breaker: BreakerConfig{
				Enabled:          true,
				MaxRequests:      1,
				Interval:         time.Minute,
				Timeout:          30 * time.Second,
				FailureThreshold: 3,
			},
		},
		Report: ReportConfig{
			Users:     []string{},
			ItemTypes: []string{},
			Output:    "",
			Format:    FormatJSON,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Metrics: MetricsConfig{
			Enabled:      false,
			TextfilePath: "",
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	return load(findConfigFile())
}

// LoadFromPath loads configuration like LoadWithKoanf but reads the given
// config file instead of searching for one. The file must exist.
func LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return load(path)
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// RECOMMEND_K_NEIGHBORS -> recommend.k_neighbors
	// DUCKDB_PATH -> source.path
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"recommend.algorithms",
	"report.users",
	"report.item_types",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok {
			continue
		}

		trimmed := splitList(strVal)
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Recommendation engine
	"recommend_algorithms":       "recommend.algorithms",
	"recommend_k_neighbors":      "recommend.k_neighbors",
	"recommend_min_sim":          "recommend.min_sim",
	"recommend_min_overlap":      "recommend.min_overlap",
	"recommend_top_n":            "recommend.top_n",
	"recommend_max_top_n":        "recommend.max_top_n",
	"recommend_duplicate_policy": "recommend.duplicate_policy",
	"recommend_fit_timeout":      "recommend.fit_timeout",

	// Data source
	"source_kind":       "source.kind",
	"source_path":       "source.path",
	"duckdb_path":       "source.path",
	"source_table":      "source.table",
	"source_timeout":    "source.timeout",
	"source_lookback":   "source.lookback",
	"duckdb_max_memory": "source.max_memory",
	"duckdb_threads":    "source.threads",

	// Circuit breaker
	"source_breaker_enabled":           "source.breaker.enabled",
	"source_breaker_max_requests":      "source.breaker.max_requests",
	"source_breaker_interval":          "source.breaker.interval",
	"source_breaker_timeout":           "source.breaker.timeout",
	"source_breaker_failure_threshold": "source.breaker.failure_threshold",

	// Report
	"report_users":      "report.users",
	"report_item_types": "report.item_types",
	"report_output":     "report.output",
	"report_format":     "report.format",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Metrics
	"metrics_enabled":       "metrics.enabled",
	"metrics_textfile_path": "metrics.textfile_path",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - RECOMMEND_TOP_N -> recommend.top_n
//   - DUCKDB_PATH -> source.path
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
