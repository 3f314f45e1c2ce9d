// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

// Package main is the entry point for the Wayfinder batch recommender.
//
// One run fits the item-based and user-based collaborative filtering models
// from a single interaction snapshot and writes a JSON report of the top
// recommendations for each configured user.
//
// # Run Sequence
//
//  1. Configuration: defaults, config.yaml, environment variables (Koanf v2)
//  2. Logging: zerolog configured from the logging section
//  3. Source: DuckDB table or snapshot file, optionally behind a circuit breaker
//  4. Fit: one snapshot fetch, every configured algorithm fitted from it
//  5. Report: users x item types x algorithms, written as JSON or NDJSON
//  6. Metrics: Prometheus textfile for the node-exporter textfile collector
//
// # Flags
//
//	-config path   config file, overrides CONFIG_PATH and the default search
//	-top-n n       recommendations per report entry
//	-user id       report user, repeatable; replaces report.users
//
// # Exit Codes
//
// The process exits with 1 only when configuration, the data source or the
// report output fails. An unfit model or an unknown user is not a failure:
// the report entry carries an empty list and the reason.
//
// # Example Usage
//
//	export SOURCE_KIND=file
//	export SOURCE_PATH=/data/snapshot.ndjson
//	./wayfinder -user U1 -user U2 -top-n 3
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/wayfinder/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		logging.Err(err).Msg("Recommender run failed")
		stop()
		os.Exit(1)
	}
}
