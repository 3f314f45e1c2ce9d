// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}

	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

type neighborsConfig struct {
	KNeighbors int      `koanf:"k_neighbors" validate:"min=1"`
	Policy     string   `koanf:"duplicate_policy" validate:"oneof=reject mean"`
	Algorithms []string `koanf:"algorithms" validate:"min=1,dive,oneof=itemcf usercf"`
}

type sourceConfig struct {
	Path  string `json:"path" validate:"required"`
	Table string `koanf:"table" validate:"sql_identifier"`
}

type testConfig struct {
	Recommend neighborsConfig `koanf:"recommend"`
	Source    sourceConfig    `koanf:"source"`
}

func validTestConfig() testConfig {
	return testConfig{
		Recommend: neighborsConfig{
			KNeighbors: 5,
			Policy:     "reject",
			Algorithms: []string{"itemcf", "usercf"},
		},
		Source: sourceConfig{Path: "wayfinder.duckdb", Table: "interactions"},
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	cfg := validTestConfig()
	if err := ValidateStruct(&cfg); err != nil {
		t.Errorf("ValidateStruct() error = %v", err)
	}

	cfg.Source.Table = "main.interactions"
	if err := ValidateStruct(&cfg); err != nil {
		t.Errorf("ValidateStruct() with schema-qualified table error = %v", err)
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *testConfig)
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{
			name:      "neighbor count below minimum",
			mutate:    func(c *testConfig) { c.Recommend.KNeighbors = 0 },
			wantField: "recommend.k_neighbors",
			wantTag:   "min",
			wantMsg:   "recommend.k_neighbors must be at least 1",
		},
		{
			name:      "unknown duplicate policy",
			mutate:    func(c *testConfig) { c.Recommend.Policy = "sum" },
			wantField: "recommend.duplicate_policy",
			wantTag:   "oneof",
			wantMsg:   "recommend.duplicate_policy must be one of: reject mean",
		},
		{
			name:      "empty algorithm list",
			mutate:    func(c *testConfig) { c.Recommend.Algorithms = nil },
			wantField: "recommend.algorithms",
			wantTag:   "min",
			wantMsg:   "recommend.algorithms must be at least 1 entries",
		},
		{
			name:      "unknown algorithm in list",
			mutate:    func(c *testConfig) { c.Recommend.Algorithms = []string{"itemcf", "als"} },
			wantField: "recommend.algorithms[1]",
			wantTag:   "oneof",
		},
		{
			name:      "json tag names are used when koanf is absent",
			mutate:    func(c *testConfig) { c.Source.Path = "" },
			wantField: "source.path",
			wantTag:   "required",
			wantMsg:   "source.path is required",
		},
		{
			name:      "table name with injection",
			mutate:    func(c *testConfig) { c.Source.Table = "interactions; DROP TABLE x" },
			wantField: "source.table",
			wantTag:   "sql_identifier",
			wantMsg:   "source.table must be a plain SQL identifier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(&cfg)

			verr := ValidateStruct(&cfg)
			if verr == nil {
				t.Fatal("ValidateStruct() should have returned an error")
			}
			if !verr.HasField(tt.wantField) {
				t.Fatalf("errors = %v, want field %s", verr.Errors(), tt.wantField)
			}

			for _, e := range verr.Errors() {
				if e.Field() != tt.wantField {
					continue
				}
				if e.Tag() != tt.wantTag {
					t.Errorf("Tag() = %q, want %q", e.Tag(), tt.wantTag)
				}
				if tt.wantMsg != "" && e.Error() != tt.wantMsg {
					t.Errorf("Error() = %q, want %q", e.Error(), tt.wantMsg)
				}
			}
		})
	}
}

func TestStructError_Error(t *testing.T) {
	cfg := validTestConfig()
	cfg.Recommend.KNeighbors = 0
	cfg.Source.Path = ""

	verr := ValidateStruct(&cfg)
	if verr == nil {
		t.Fatal("ValidateStruct() should have returned an error")
	}
	if len(verr.Errors()) != 2 {
		t.Fatalf("len(Errors()) = %d, want 2", len(verr.Errors()))
	}

	msg := verr.Error()
	for _, want := range []string{"recommend.k_neighbors", "source.path", "; "} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, want it to contain %q", msg, want)
		}
	}

	var err error = verr
	var target *StructError
	if !errors.As(err, &target) {
		t.Error("errors.As() should match *StructError")
	}
}

func TestStructError_Empty(t *testing.T) {
	se := &StructError{}
	if se.Error() != "validation failed" {
		t.Errorf("Error() = %q, want %q", se.Error(), "validation failed")
	}
	if se.HasField("anything") {
		t.Error("HasField() = true on empty error")
	}
}

func TestValidateStruct_NonStruct(t *testing.T) {
	verr := ValidateStruct(42)
	if verr == nil {
		t.Fatal("ValidateStruct(42) should return an error")
	}
	if verr.Errors()[0].Field() != "unknown" {
		t.Errorf("Field() = %q, want unknown", verr.Errors()[0].Field())
	}
}
