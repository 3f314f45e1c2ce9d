// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

// Package query provides SQL query building utilities for the database package.
package query

import (
	"strings"
	"time"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
// Column names are written by the caller; values are always bound as arguments.
//
// Example usage:
//
//	wb := query.NewWhereBuilder()
//	wb.AddNotNull("user_id", "item_id")
//	wb.AddSince("created_at", &since)
//	whereClause, args := wb.Build()
//	// user_id IS NOT NULL AND item_id IS NOT NULL AND created_at >= ?
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddNotNull requires each column to be non-null.
func (wb *WhereBuilder) AddNotNull(columns ...string) *WhereBuilder {
	for _, col := range columns {
		wb.clauses = append(wb.clauses, col+" IS NOT NULL")
	}
	return wb
}

// AddSince adds a lower time bound on column. A nil time is skipped.
func (wb *WhereBuilder) AddSince(column string, since *time.Time) *WhereBuilder {
	if since != nil {
		wb.clauses = append(wb.clauses, column+" >= ?")
		wb.args = append(wb.args, *since)
	}
	return wb
}

// Build constructs the final WHERE clause and returns it with arguments.
// Clauses are joined with "AND". Returns ("1=1", []) if no clauses were added.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns the WHERE clause with "WHERE " prefix.
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}
