// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

// Package database provides the DuckDB-backed interaction store for Wayfinder.
//
// # Overview
//
// Raw interaction events (ratings, bookings, visits) are appended to a single
// table. DB.GetInteractions aggregates them into the snapshot the recommenders
// fit from: one record per (user, item, type) carrying the mean weight and
// the earliest non-empty display name. DB implements recommend.DataProvider.
//
// # Schema
//
//	CREATE TABLE interactions (
//	    user_id    VARCHAR NOT NULL,
//	    item_id    VARCHAR NOT NULL,
//	    item_type  VARCHAR NOT NULL,
//	    name       VARCHAR,
//	    weight     DOUBLE NOT NULL,
//	    created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
//	)
//
// The table name is configurable (source.table) and must be a plain SQL
// identifier; config validation enforces this before it reaches a query.
//
// # Usage
//
//	db, err := database.New(&cfg.Source)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	engine.SetDataProvider(db)
//
// # Database Technology
//
// DuckDB is embedded through the CGO driver github.com/duckdb/duckdb-go/v2.
// Use ":memory:" as the path for an in-memory database in tests.
package database
