// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package database

import (
	"context"
	"fmt"
	"strings"
)

// DefaultTable is the raw interactions table name.
const DefaultTable = "interactions"

// EnsureSchema creates the interactions table and its lookup index if they
// do not exist. Each row is one raw interaction event; GetInteractions
// aggregates them per (user, item, type).
func (db *DB) EnsureSchema(ctx context.Context) error {
	ddl := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				user_id    VARCHAR NOT NULL,
				item_id    VARCHAR NOT NULL,
				item_type  VARCHAR NOT NULL,
				name       VARCHAR,
				weight     DOUBLE NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
			)`, db.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (user_id, item_id, item_type)`,
			indexName(db.table), db.table),
	}

	for _, stmt := range ddl {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema for %s: %w", db.table, err)
		}
	}
	return nil
}

// indexName derives the index name from a possibly schema-qualified table.
func indexName(table string) string {
	return "idx_" + strings.ReplaceAll(table, ".", "_") + "_key"
}
