// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/tomtom215/wayfinder/internal/config"
	"github.com/tomtom215/wayfinder/internal/logging"
	"github.com/tomtom215/wayfinder/internal/metrics"
	"github.com/tomtom215/wayfinder/internal/recommend"
	"github.com/tomtom215/wayfinder/internal/recommend/algorithms"
	"github.com/tomtom215/wayfinder/internal/source"
)

// run executes one fit-and-report cycle. Errors are infrastructure failures;
// model problems end up as reasons in the report.
func run(ctx context.Context, opts *options, stdout io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(cfg.ToLoggingConfig())
	metrics.RecordAppInfo(version)

	ctx = logging.ContextWithLogger(ctx, logging.WithComponent("recommender"))
	ctx = logging.ContextWithNewCorrelationID(ctx)
	logger := logging.Ctx(ctx)
	logger.Info().
		Str("version", version).
		Strs("algorithms", cfg.Recommend.Algorithms).
		Str("source", cfg.Source.Kind).
		Int("users", len(cfg.Report.Users)).
		Msg("Starting Wayfinder recommender")

	src, err := source.Open(&cfg.Source)
	if err != nil {
		return err
	}
	defer func() {
		if err := src.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing data source")
		}
	}()

	engine, err := newEngine(cfg, src)
	if err != nil {
		return err
	}

	results, err := engine.Fit(ctx)
	if err != nil {
		return fmt.Errorf("fit models: %w", err)
	}
	for _, res := range results {
		logger.Info().
			Str("algorithm", res.Algorithm).
			Str("status", res.Status.String()).
			Str("reason", res.Reason).
			Int("users", res.Users).
			Int("items", res.Items).
			Msg("Model fit result")
	}

	entries := buildReport(ctx, engine, cfg)
	if err := writeReportTo(cfg.Report.Output, cfg.Report.Format, entries, stdout); err != nil {
		return err
	}

	metrics.RecordRunComplete()
	if cfg.Metrics.Enabled {
		if err := metrics.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			return err
		}
	}

	logger.Info().Int("entries", len(entries)).Msg("Recommender run complete")
	return nil
}

// loadConfig loads the layered configuration and applies flag overrides.
func loadConfig(opts *options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFromPath(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if !applyOverrides(cfg, opts) {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyOverrides copies flag values into cfg and reports whether anything changed.
func applyOverrides(cfg *config.Config, opts *options) bool {
	changed := false
	if opts.topN > 0 {
		cfg.Recommend.TopN = opts.topN
		if cfg.Recommend.MaxTopN < opts.topN {
			cfg.Recommend.MaxTopN = opts.topN
		}
		changed = true
	}
	if len(opts.users) > 0 {
		cfg.Report.Users = append([]string(nil), opts.users...)
		changed = true
	}
	return changed
}

// newEngine creates the engine and registers the configured algorithms in order.
func newEngine(cfg *config.Config, dp recommend.DataProvider) (*recommend.Engine, error) {
	engineCfg := cfg.ToEngineConfig()
	logger := logging.WithComponent("recommend")

	engine, err := recommend.NewEngine(engineCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	engine.SetDataProvider(dp)
	engine.SetObserver(metrics.NewObserver())

	for _, name := range cfg.Recommend.Algorithms {
		switch name {
		case recommend.AlgorithmItemCF:
			engine.Register(algorithms.NewItemBasedCF(engineCfg.KNN, engineCfg.DuplicatePolicy, logger))
		case recommend.AlgorithmUserCF:
			engine.Register(algorithms.NewUserBasedCF(engineCfg.KNN, engineCfg.DuplicatePolicy, logger))
		default:
			return nil, fmt.Errorf("%w: %q", recommend.ErrUnknownAlgorithm, name)
		}
	}
	return engine, nil
}
