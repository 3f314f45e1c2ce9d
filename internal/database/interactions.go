// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/wayfinder/internal/database/query"
	"github.com/tomtom215/wayfinder/internal/logging"
	"github.com/tomtom215/wayfinder/internal/metrics"
	"github.com/tomtom215/wayfinder/internal/recommend"
)

// SourceName labels metrics and logs for this data source.
const SourceName = "duckdb"

// Event is one raw interaction row: a single rating, booking or visit.
type Event struct {
	UserID    string
	ItemID    string
	ItemType  string
	Name      string
	Weight    float64
	CreatedAt time.Time
}

// GetInteractions returns one pre-aggregated record per (user, item, type):
// the mean weight of all matching events and the earliest non-empty name.
// Records are ordered by user, item and type so snapshots are reproducible.
// It implements recommend.DataProvider.
func (db *DB) GetInteractions(ctx context.Context) ([]recommend.Interaction, error) {
	start := time.Now()

	interactions, err := db.queryInteractions(ctx)
	metrics.RecordSourceFetch(SourceName, len(interactions), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Debug().
		Str("source", SourceName).
		Int("records", len(interactions)).
		Dur("duration", time.Since(start)).
		Msg("loaded interactions")

	return interactions, nil
}

func (db *DB) queryInteractions(ctx context.Context) ([]recommend.Interaction, error) {
	wb := query.NewWhereBuilder().AddNotNull("user_id", "item_id", "item_type", "weight")
	if db.cfg.Lookback > 0 {
		since := time.Now().Add(-db.cfg.Lookback)
		wb.AddSince("created_at", &since)
	}
	where, args := wb.BuildWithPrefix()

	q := fmt.Sprintf(`
		SELECT
			user_id,
			item_id,
			item_type,
			COALESCE(arg_min(name, created_at) FILTER (WHERE name IS NOT NULL AND name <> ''), '') AS name,
			AVG(weight) AS avg_weight
		FROM %s
		%s
		GROUP BY user_id, item_id, item_type
		ORDER BY user_id, item_id, item_type
	`, db.table, where)

	ctx, cancel := context.WithTimeout(ctx, db.timeout())
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer closeWithLog(rows, "interaction rows")

	interactions := make([]recommend.Interaction, 0)
	for rows.Next() {
		var i recommend.Interaction
		if err := rows.Scan(&i.UserID, &i.ItemID, &i.ItemType, &i.Name, &i.Weight); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		interactions = append(interactions, i)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}

	return interactions, nil
}

// InsertEvents appends raw interaction events in a single transaction.
// Events with a zero CreatedAt are stamped with the current time.
func (db *DB) InsertEvents(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, db.timeout())
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (user_id, item_id, item_type, name, weight, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		db.table))
	if err != nil {
		rollbackQuietly(tx)
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer closeQuietly(stmt)

	now := time.Now()
	for idx, e := range events {
		createdAt := e.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		if _, err := stmt.ExecContext(ctx, e.UserID, e.ItemID, e.ItemType, e.Name, e.Weight, createdAt); err != nil {
			rollbackQuietly(tx)
			return fmt.Errorf("insert event %d: %w", idx, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit events: %w", err)
	}

	logging.Ctx(ctx).Debug().
		Int("events", len(events)).
		Str("table", db.table).
		Msg("inserted interaction events")

	return nil
}

// CountEvents returns the number of raw events in the interactions table.
func (db *DB) CountEvents(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, db.timeout())
	defer cancel()

	var n int
	if err := db.conn.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", db.table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

var _ recommend.DataProvider = (*DB)(nil)
