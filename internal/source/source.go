// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package source

import (
	"fmt"
	"io"

	"github.com/tomtom215/wayfinder/internal/config"
	"github.com/tomtom215/wayfinder/internal/database"
	"github.com/tomtom215/wayfinder/internal/logging"
	"github.com/tomtom215/wayfinder/internal/recommend"
)

// Provider is a data source that holds resources until closed.
type Provider interface {
	recommend.DataProvider
	io.Closer
}

// Open builds the source selected by cfg.Kind, wrapped in a Breaker when
// cfg.Breaker.Enabled is set.
func Open(cfg *config.SourceConfig) (Provider, error) {
	var (
		p    Provider
		name string
	)

	switch cfg.Kind {
	case config.SourceDuckDB:
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("open duckdb source: %w", err)
		}
		p, name = db, database.SourceName
	case config.SourceFile:
		p, name = NewFileSource(cfg.Path), FileSourceName
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}

	logging.Info().
		Str("source", name).
		Str("path", cfg.Path).
		Bool("circuit_breaker", cfg.Breaker.Enabled).
		Msg("data source ready")

	if !cfg.Breaker.Enabled {
		return p, nil
	}

	logging.Debug().
		Str("source", name).
		Uint32("max_requests", cfg.Breaker.MaxRequests).
		Dur("interval", cfg.Breaker.Interval).
		Dur("timeout", cfg.Breaker.Timeout).
		Uint32("failure_threshold", cfg.Breaker.FailureThreshold).
		Msg("circuit breaker settings")
	return NewBreaker(name+"-source", p, cfg.Breaker), nil
}
