// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

// Package validation provides struct validation using go-playground/validator v10.
//
// This package wraps the go-playground/validator library to provide a thread-safe
// singleton validator instance with custom validators and readable error messages.
// Field paths in errors use koanf tag names, so a failure on the neighbor count
// reads "recommend.k_neighbors must be at least 1" rather than naming Go fields.
//
// # Quick Start
//
//	type SourceConfig struct {
//	    Kind  string `koanf:"kind" validate:"oneof=duckdb file"`
//	    Path  string `koanf:"path" validate:"required"`
//	    Table string `koanf:"table" validate:"sql_identifier"`
//	}
//
//	if verr := validation.ValidateStruct(&cfg); verr != nil {
//	    return fmt.Errorf("invalid config: %w", verr)
//	}
//
// # Custom Validators
//
//   - sql_identifier: a plain, optionally schema-qualified SQL identifier
//
// # Error Types
//
// ValidationError represents a single field validation failure with Field, Tag,
// Param and Value accessors. StructError aggregates the failures of one struct
// and implements error.
//
// # Thread Safety
//
// The singleton validator is initialized once and safe for concurrent use.
package validation
