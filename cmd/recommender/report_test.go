// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/tomtom215/wayfinder/internal/config"
	"github.com/tomtom215/wayfinder/internal/recommend"
)

// staticProvider serves a fixed snapshot.
type staticProvider []recommend.Interaction

func (p staticProvider) GetInteractions(context.Context) ([]recommend.Interaction, error) {
	return p, nil
}

func travelSnapshot() staticProvider {
	return staticProvider{
		{UserID: "U1", ItemID: "I1", ItemType: "Trip", Name: "Alpine Loop", Weight: 5},
		{UserID: "U1", ItemID: "I2", ItemType: "Event", Name: "Harbor Festival", Weight: 3},
		{UserID: "U2", ItemID: "I1", ItemType: "Trip", Name: "Alpine Loop", Weight: 4},
		{UserID: "U2", ItemID: "I3", ItemType: "Trip", Name: "Coast Ride", Weight: 5},
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Recommend: config.RecommendConfig{
			Algorithms:      []string{recommend.AlgorithmItemCF, recommend.AlgorithmUserCF},
			KNeighbors:      5,
			MinSimilarity:   0,
			MinOverlap:      0,
			TopN:            3,
			MaxTopN:         10,
			DuplicatePolicy: string(recommend.DuplicateReject),
			FitTimeout:      recommend.DefaultConfig().FitTimeout,
		},
		Report: config.ReportConfig{
			Users:  []string{"U1"},
			Format: config.FormatJSON,
		},
	}
	return cfg
}

func fittedEngine(t *testing.T, cfg *config.Config) *recommend.Engine {
	t.Helper()
	engine, err := newEngine(cfg, travelSnapshot())
	if err != nil {
		t.Fatalf("newEngine() error = %v", err)
	}
	if _, err := engine.Fit(context.Background()); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	return engine
}

func TestNewEngine_RegistersConfiguredAlgorithms(t *testing.T) {
	cfg := testConfig(t)
	cfg.Recommend.Algorithms = []string{recommend.AlgorithmUserCF}

	engine, err := newEngine(cfg, travelSnapshot())
	if err != nil {
		t.Fatalf("newEngine() error = %v", err)
	}
	got := engine.Algorithms()
	if len(got) != 1 || got[0] != recommend.AlgorithmUserCF {
		t.Errorf("Algorithms() = %v, want [usercf]", got)
	}

	cfg.Recommend.Algorithms = []string{"als"}
	if _, err := newEngine(cfg, travelSnapshot()); !errors.Is(err, recommend.ErrUnknownAlgorithm) {
		t.Errorf("newEngine(als) error = %v, want %v", err, recommend.ErrUnknownAlgorithm)
	}
}

func TestBuildReport(t *testing.T) {
	ctx := context.Background()

	t.Run("one entry per user, type and algorithm", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Report.Users = []string{"U1", "ghost"}
		cfg.Report.ItemTypes = []string{"Trip", "Event"}

		entries := buildReport(ctx, fittedEngine(t, cfg), cfg)
		if len(entries) != 8 {
			t.Fatalf("len(entries) = %d, want 8", len(entries))
		}
		first := entries[0]
		if first.User != "U1" || first.ItemType != "Trip" || first.Algorithm != recommend.AlgorithmItemCF {
			t.Errorf("entries[0] = %+v, want U1/Trip/itemcf", first)
		}
		for _, e := range entries {
			if e.Recommendations == nil {
				t.Errorf("entry %s/%s/%s has nil recommendations", e.User, e.ItemType, e.Algorithm)
			}
			if e.User == "ghost" && (e.Status != "unfit" || !strings.Contains(e.Reason, "not found")) {
				t.Errorf("ghost entry = %+v, want unfit with reason", e)
			}
		}
	})

	t.Run("untyped pass when no item types", func(t *testing.T) {
		cfg := testConfig(t)
		entries := buildReport(ctx, fittedEngine(t, cfg), cfg)
		if len(entries) != 2 {
			t.Fatalf("len(entries) = %d, want 2", len(entries))
		}
		for _, e := range entries {
			if e.ItemType != "" {
				t.Errorf("ItemType = %q, want empty", e.ItemType)
			}
			if e.Status != "ready" {
				t.Errorf("%s status = %q (%s), want ready", e.Algorithm, e.Status, e.Reason)
			}
			if len(e.Recommendations) == 0 || e.Recommendations[0].ItemID != "I3" {
				t.Errorf("%s recommendations = %+v, want I3 first", e.Algorithm, e.Recommendations)
			}
		}
	})

	t.Run("no users yields an empty report", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Report.Users = nil
		entries := buildReport(ctx, fittedEngine(t, cfg), cfg)
		if entries == nil || len(entries) != 0 {
			t.Errorf("entries = %v, want empty non-nil slice", entries)
		}
	})

	t.Run("unfit engine reports reasons", func(t *testing.T) {
		cfg := testConfig(t)
		engine, err := newEngine(cfg, staticProvider{})
		if err != nil {
			t.Fatalf("newEngine() error = %v", err)
		}
		if _, err := engine.Fit(ctx); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		for _, e := range buildReport(ctx, engine, cfg) {
			if e.Status != "unfit" || e.Reason == "" || len(e.Recommendations) != 0 {
				t.Errorf("entry = %+v, want unfit with reason and no recommendations", e)
			}
		}
	})
}

func TestWriteReport(t *testing.T) {
	entries := []reportEntry{
		{
			Algorithm: "itemcf",
			User:      "U1",
			Status:    "ready",
			Recommendations: []recommend.Recommendation{
				{Rank: 1, ItemID: "I3", ItemType: "Trip", Name: "Coast Ride", Score: 2.5},
			},
		},
		{Algorithm: "usercf", User: "ghost", Status: "unfit", Reason: "user not found", Recommendations: []recommend.Recommendation{}},
	}

	t.Run("json array", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeReport(&buf, config.FormatJSON, entries); err != nil {
			t.Fatalf("writeReport() error = %v", err)
		}

		var decoded []map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("report is not a JSON array: %v\n%s", err, buf.String())
		}
		if len(decoded) != 2 {
			t.Fatalf("len(decoded) = %d, want 2", len(decoded))
		}
		recs, ok := decoded[0]["recommendations"].([]interface{})
		if !ok || len(recs) != 1 {
			t.Fatalf("recommendations = %v", decoded[0]["recommendations"])
		}
		rec := recs[0].(map[string]interface{})
		for _, key := range []string{"rank", "item", "type", "name", "score"} {
			if _, ok := rec[key]; !ok {
				t.Errorf("recommendation missing key %q: %v", key, rec)
			}
		}
		if _, ok := decoded[0]["item_type"]; !ok {
			t.Error("entry missing item_type")
		}
		if _, ok := decoded[0]["reason"]; ok {
			t.Error("ready entry carries a reason")
		}
		if empty, ok := decoded[1]["recommendations"].([]interface{}); !ok || len(empty) != 0 {
			t.Errorf("unfit recommendations = %v, want []", decoded[1]["recommendations"])
		}
	})

	t.Run("ndjson", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeReport(&buf, config.FormatNDJSON, entries); err != nil {
			t.Fatalf("writeReport() error = %v", err)
		}

		scanner := bufio.NewScanner(&buf)
		lines := 0
		for scanner.Scan() {
			var e reportEntry
			if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
				t.Fatalf("line %d: %v", lines+1, err)
			}
			if e.User != entries[lines].User {
				t.Errorf("line %d user = %q, want %q", lines+1, e.User, entries[lines].User)
			}
			lines++
		}
		if lines != 2 {
			t.Errorf("lines = %d, want 2", lines)
		}
	})
}

func TestWriteReportTo(t *testing.T) {
	entries := []reportEntry{{Algorithm: "itemcf", User: "U1", Status: "ready", Recommendations: []recommend.Recommendation{}}}

	t.Run("stdout", func(t *testing.T) {
		for _, path := range []string{"", "-"} {
			var buf bytes.Buffer
			if err := writeReportTo(path, config.FormatNDJSON, entries, &buf); err != nil {
				t.Fatalf("writeReportTo(%q) error = %v", path, err)
			}
			if !strings.Contains(buf.String(), `"user":"U1"`) {
				t.Errorf("stdout = %q", buf.String())
			}
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.json")
		var stdout bytes.Buffer
		if err := writeReportTo(path, config.FormatJSON, entries, &stdout); err != nil {
			t.Fatalf("writeReportTo() error = %v", err)
		}
		if stdout.Len() != 0 {
			t.Errorf("stdout = %q, want nothing", stdout.String())
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read report: %v", err)
		}
		if !strings.HasPrefix(strings.TrimSpace(string(data)), "[") {
			t.Errorf("report = %q, want JSON array", data)
		}
	})

	t.Run("unwritable path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "report.json")
		if err := writeReportTo(path, config.FormatJSON, entries, &bytes.Buffer{}); err == nil {
			t.Error("writeReportTo() error = nil, want error")
		}
	})
}
