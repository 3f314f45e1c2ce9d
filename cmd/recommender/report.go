// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/tomtom215/wayfinder/internal/config"
	"github.com/tomtom215/wayfinder/internal/logging"
	"github.com/tomtom215/wayfinder/internal/recommend"
	"github.com/tomtom215/wayfinder/internal/validation"
)

// reportEntry is one (user, item type, algorithm) block of the report.
type reportEntry struct {
	Algorithm       string                     `json:"algorithm"`
	User            string                     `json:"user"`
	ItemType        string                     `json:"item_type"`
	Status          string                     `json:"status"`
	Reason          string                     `json:"reason,omitempty"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

// buildReport asks every registered algorithm for every configured user and
// item type. An empty item type list means a single unfiltered pass.
func buildReport(ctx context.Context, engine *recommend.Engine, cfg *config.Config) []reportEntry {
	itemTypes := cfg.Report.ItemTypes
	if len(itemTypes) == 0 {
		itemTypes = []string{""}
	}
	algs := engine.Algorithms()

	if len(cfg.Report.Users) == 0 {
		logging.Ctx(ctx).Warn().Msg("No report users configured; set report.users or pass -user")
	}

	entries := make([]reportEntry, 0, len(cfg.Report.Users)*len(itemTypes)*len(algs))
	for _, user := range cfg.Report.Users {
		for _, itemType := range itemTypes {
			for _, alg := range algs {
				req := recommend.Request{
					Algorithm: alg,
					UserID:    user,
					TopN:      cfg.Recommend.TopN,
					ItemType:  itemType,
				}
				entries = append(entries, recommendEntry(ctx, engine, req))
			}
		}
	}
	return entries
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func recommendEntry(ctx context.Context, engine *recommend.Engine, req recommend.Request) reportEntry {
	if verr := validation.ValidateStruct(req); verr != nil {
		logging.Ctx(ctx).Warn().Err(verr).Str("user_id", req.UserID).Msg("Skipping invalid request")
		return reportEntry{
			Algorithm:       req.Algorithm,
			User:            req.UserID,
			ItemType:        req.ItemType,
			Status:          recommend.StatusUnfit.String(),
			Reason:          verr.Error(),
			Recommendations: []recommend.Recommendation{},
		}
	}

	res := engine.Recommend(ctx, req)
	return reportEntry{
		Algorithm:       res.Algorithm,
		User:            res.UserID,
		ItemType:        res.ItemType,
		Status:          res.Status.String(),
		Reason:          res.Reason,
		Recommendations: res.Recommendations,
	}
}

// writeReportTo writes entries to path, or to stdout when path is empty or "-".
func writeReportTo(path, format string, entries []reportEntry, stdout io.Writer) error {
	if path == "" || path == "-" {
		return writeReport(stdout, format, entries)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	if err := writeReport(f, format, entries); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report %s: %w", path, err)
	}
	return nil
}

// writeReport encodes entries as an indented JSON array or as one JSON object per line.
func writeReport(w io.Writer, format string, entries []reportEntry) error {
	enc := json.NewEncoder(w)

	if format == config.FormatNDJSON {
		for i := range entries {
			if err := enc.Encode(&entries[i]); err != nil {
				return fmt.Errorf("encode report entry %d: %w", i, err)
			}
		}
		return nil
	}

	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
