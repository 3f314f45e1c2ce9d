// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

// Package logging provides centralized zerolog-based structured logging for Wayfinder.
//
// # Overview
//
// The package provides:
//   - Zero-allocation structured logging via zerolog
//   - JSON output for batch runs (machine-parseable)
//   - Console output for local development (human-readable)
//   - Context-aware logging with correlation ID propagation
//
// # Quick Start
//
//	// Initialize at startup
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	// Tag every line of one report run
//	ctx = logging.ContextWithNewCorrelationID(ctx)
//	logging.Ctx(ctx).Info().Str("user", userID).Msg("report generated")
//
//	// Component loggers are handed to the recommenders
//	logger := logging.WithComponent("recommend")
//
// # Configuration
//
// The config package maps these settings from LOG_LEVEL, LOG_FORMAT and
// LOG_CALLER, or from the logging section of the config file.
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
package logging
