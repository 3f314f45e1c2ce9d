// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package metrics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/tomtom215/wayfinder/internal/recommend"
)

// TestRecordFit tests fit metric recording
func TestRecordFit(t *testing.T) {
	t.Run("ready fit sets gauges", func(t *testing.T) {
		before := testutil.ToFloat64(FitTotal.WithLabelValues("test-ready", "ready"))

		RecordFit(recommend.FitResult{
			Algorithm: "test-ready",
			Status:    recommend.StatusReady,
			Users:     3,
			Items:     7,
			NonZero:   12,
			Duration:  20 * time.Millisecond,
		})

		if got := testutil.ToFloat64(FitTotal.WithLabelValues("test-ready", "ready")); got != before+1 {
			t.Errorf("wayfinder_fit_total = %v, want %v", got, before+1)
		}
		if got := testutil.ToFloat64(SimilarityNonZero.WithLabelValues("test-ready")); got != 12 {
			t.Errorf("wayfinder_similarity_nonzero = %v, want 12", got)
		}
		if got := testutil.ToFloat64(MatrixDimensions.WithLabelValues("test-ready", "users")); got != 3 {
			t.Errorf("users dimension = %v, want 3", got)
		}
		if got := testutil.ToFloat64(MatrixDimensions.WithLabelValues("test-ready", "items")); got != 7 {
			t.Errorf("items dimension = %v, want 7", got)
		}
	})

	t.Run("unfit fit counts the failure reason", func(t *testing.T) {
		SimilarityNonZero.WithLabelValues("test-unfit").Set(5)
		before := testutil.ToFloat64(FitFailures.WithLabelValues("test-unfit", "empty_matrix"))

		RecordFit(recommend.UnfitResult("test-unfit", recommend.ErrEmptyMatrix))

		if got := testutil.ToFloat64(FitFailures.WithLabelValues("test-unfit", "empty_matrix")); got != before+1 {
			t.Errorf("wayfinder_fit_failures_total = %v, want %v", got, before+1)
		}
		if got := testutil.ToFloat64(FitTotal.WithLabelValues("test-unfit", "unfit")); got < 1 {
			t.Errorf("wayfinder_fit_total{status=unfit} = %v, want >= 1", got)
		}
		if got := testutil.ToFloat64(SimilarityNonZero.WithLabelValues("test-unfit")); got != 0 {
			t.Errorf("wayfinder_similarity_nonzero = %v, want 0 after unfit", got)
		}
	})
}

// TestRecordRecommend tests recommendation metric recording
func TestRecordRecommend(t *testing.T) {
	tests := []struct {
		name       string
		result     recommend.Result
		wantStatus string
		wantEmpty  string
	}{
		{
			name: "ready with recommendations",
			result: recommend.Result{
				Algorithm:       "test-rec",
				Status:          recommend.StatusReady,
				Recommendations: []recommend.Recommendation{{ItemID: "I1", Rank: 1}},
			},
			wantStatus: "ready",
		},
		{
			name:       "unknown user",
			result:     recommend.EmptyResult("test-rec", recommend.Request{UserID: "ghost"}, recommend.UnknownUserError("ghost")),
			wantStatus: "unfit",
			wantEmpty:  "unknown_user",
		},
		{
			name: "ready but nothing left to recommend",
			result: recommend.Result{
				Algorithm:       "test-rec",
				Status:          recommend.StatusReady,
				Recommendations: []recommend.Recommendation{},
			},
			wantStatus: "ready",
			wantEmpty:  "none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := RecommendTotal.WithLabelValues("test-rec", tt.wantStatus)
			before := testutil.ToFloat64(total)
			var emptyBefore float64
			if tt.wantEmpty != "" {
				emptyBefore = testutil.ToFloat64(RecommendEmpty.WithLabelValues("test-rec", tt.wantEmpty))
			}

			RecordRecommend(tt.result, time.Millisecond)

			if got := testutil.ToFloat64(total); got != before+1 {
				t.Errorf("wayfinder_recommend_total = %v, want %v", got, before+1)
			}
			if tt.wantEmpty != "" {
				got := testutil.ToFloat64(RecommendEmpty.WithLabelValues("test-rec", tt.wantEmpty))
				if got != emptyBefore+1 {
					t.Errorf("wayfinder_recommend_empty_total = %v, want %v", got, emptyBefore+1)
				}
			}
		})
	}
}

// TestRecordSourceFetch tests source fetch metric recording
func TestRecordSourceFetch(t *testing.T) {
	successBefore := testutil.ToFloat64(SourceFetchTotal.WithLabelValues("test-src", "success"))
	failureBefore := testutil.ToFloat64(SourceFetchTotal.WithLabelValues("test-src", "failure"))

	RecordSourceFetch("test-src", 42, 5*time.Millisecond, nil)
	RecordSourceFetch("test-src", 0, 5*time.Millisecond, errors.New("connection refused"))

	if got := testutil.ToFloat64(SourceFetchTotal.WithLabelValues("test-src", "success")); got != successBefore+1 {
		t.Errorf("success count = %v, want %v", got, successBefore+1)
	}
	if got := testutil.ToFloat64(SourceFetchTotal.WithLabelValues("test-src", "failure")); got != failureBefore+1 {
		t.Errorf("failure count = %v, want %v", got, failureBefore+1)
	}
	if got := testutil.ToFloat64(SourceRecords.WithLabelValues("test-src")); got != 42 {
		t.Errorf("wayfinder_source_records = %v, want 42 (failed fetch keeps last value)", got)
	}
}

func TestErrorReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{recommend.ErrEmptyInput, "empty_input"},
		{fmt.Errorf("record 3: %w", recommend.ErrInvalidInteraction), "invalid_interaction"},
		{recommend.ErrAmbiguousPivot, "ambiguous_pivot"},
		{recommend.ErrNotFitted, "not_fitted"},
		{recommend.UnknownUserError("U9"), "unknown_user"},
		{fmt.Errorf("%w: %q", recommend.ErrUnknownAlgorithm, "als"), "unknown_algorithm"},
		{context.DeadlineExceeded, "canceled"},
		{errors.New("disk on fire"), "other"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := errorReason(tt.err); got != tt.want {
				t.Errorf("errorReason(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestObserver(t *testing.T) {
	var o recommend.Observer = NewObserver()

	before := testutil.ToFloat64(FitTotal.WithLabelValues("test-observer", "ready"))
	o.ObserveFit(recommend.FitResult{Algorithm: "test-observer", Status: recommend.StatusReady})
	if got := testutil.ToFloat64(FitTotal.WithLabelValues("test-observer", "ready")); got != before+1 {
		t.Errorf("ObserveFit did not record: got %v, want %v", got, before+1)
	}

	recBefore := testutil.ToFloat64(RecommendTotal.WithLabelValues("test-observer", "ready"))
	o.ObserveRecommend(recommend.Result{Algorithm: "test-observer", Status: recommend.StatusReady}, time.Millisecond)
	if got := testutil.ToFloat64(RecommendTotal.WithLabelValues("test-observer", "ready")); got != recBefore+1 {
		t.Errorf("ObserveRecommend did not record: got %v, want %v", got, recBefore+1)
	}
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wayfinder_test_runs_total",
		Help: "Test counter",
	})
	reg.MustRegister(counter)
	counter.Add(3)

	path := filepath.Join(t.TempDir(), "wayfinder.prom")
	if err := WriteTextfileFrom(path, reg); err != nil {
		t.Fatalf("WriteTextfileFrom() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "wayfinder_test_runs_total 3") {
		t.Errorf("textfile = %q, want counter sample", string(data))
	}
}

func TestWriteTextfile_DefaultGatherer(t *testing.T) {
	RecordAppInfo("test")
	RecordRunComplete()

	path := filepath.Join(t.TempDir(), "wayfinder.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, name := range []string{"wayfinder_app_info", "wayfinder_last_run_timestamp_seconds"} {
		if !strings.Contains(string(data), name) {
			t.Errorf("textfile missing %s", name)
		}
	}
}

func TestWriteTextfile_BadPath(t *testing.T) {
	err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "wayfinder.prom"))
	if err == nil {
		t.Error("WriteTextfile() error = nil, want error for missing directory")
	}
}

// TestMetricGathering checks the registered collectors for lint problems
func TestMetricGathering(t *testing.T) {
	RecordFit(recommend.FitResult{Algorithm: "lint", Status: recommend.StatusReady})

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Logf("Lint errors (may be expected): %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s: %s", p.Metric, p.Text)
	}
}
