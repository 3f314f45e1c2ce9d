// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package metrics

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tomtom215/wayfinder/internal/recommend"
)

var (
	// Fit Metrics
	FitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wayfinder_fit_duration_seconds",
			Help:    "Duration of recommender fits in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"algorithm"},
	)

	FitTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wayfinder_fit_total",
			Help: "Total number of recommender fits",
		},
		[]string{"algorithm", "status"}, // status: "ready", "unfit"
	)

	FitFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wayfinder_fit_failures_total",
			Help: "Total number of fits that left a recommender unfit",
		},
		[]string{"algorithm", "reason"},
	)

	SimilarityNonZero = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wayfinder_similarity_nonzero",
			Help: "Stored entries in the fitted similarity matrix",
		},
		[]string{"algorithm"},
	)

	MatrixDimensions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wayfinder_matrix_dimensions",
			Help: "Users and items in the fitted interaction matrix",
		},
		[]string{"algorithm", "axis"}, // axis: "users", "items"
	)

	// Recommend Metrics
	RecommendTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wayfinder_recommend_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"algorithm", "status"},
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wayfinder_recommend_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"algorithm"},
	)

	RecommendEmpty = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wayfinder_recommend_empty_total",
			Help: "Total number of requests answered with an empty list",
		},
		[]string{"algorithm", "reason"},
	)

	// Source Metrics
	SourceFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wayfinder_source_fetch_total",
			Help: "Total number of interaction snapshot fetches",
		},
		[]string{"source", "status"}, // status: "success", "failure"
	)

	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wayfinder_source_fetch_duration_seconds",
			Help:    "Duration of interaction snapshot fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	SourceRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wayfinder_source_records",
			Help: "Interaction records in the most recent snapshot",
		},
		[]string{"source"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wayfinder_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wayfinder_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wayfinder_circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wayfinder_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wayfinder_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	LastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wayfinder_last_run_timestamp_seconds",
			Help: "Unix timestamp of the last completed run",
		},
	)
)

// RecordFit records the outcome of one recommender fit.
//
//nolint:gocritic // hugeParam: FitResult passed by value to match Observer
func RecordFit(res recommend.FitResult) {
	FitDuration.WithLabelValues(res.Algorithm).Observe(res.Duration.Seconds())
	FitTotal.WithLabelValues(res.Algorithm, res.Status.String()).Inc()

	if !res.Ready() {
		FitFailures.WithLabelValues(res.Algorithm, errorReason(res.Err)).Inc()
		SimilarityNonZero.WithLabelValues(res.Algorithm).Set(0)
		return
	}

	SimilarityNonZero.WithLabelValues(res.Algorithm).Set(float64(res.NonZero))
	MatrixDimensions.WithLabelValues(res.Algorithm, "users").Set(float64(res.Users))
	MatrixDimensions.WithLabelValues(res.Algorithm, "items").Set(float64(res.Items))
}

// RecordRecommend records one recommendation request.
//
//nolint:gocritic // hugeParam: Result passed by value to match Observer
func RecordRecommend(res recommend.Result, duration time.Duration) {
	RecommendTotal.WithLabelValues(res.Algorithm, res.Status.String()).Inc()
	RecommendDuration.WithLabelValues(res.Algorithm).Observe(duration.Seconds())

	if len(res.Recommendations) == 0 {
		RecommendEmpty.WithLabelValues(res.Algorithm, errorReason(res.Err)).Inc()
	}
}

// RecordSourceFetch records an interaction snapshot fetch.
func RecordSourceFetch(source string, records int, duration time.Duration, err error) {
	SourceFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err != nil {
		SourceFetchTotal.WithLabelValues(source, "failure").Inc()
		return
	}
	SourceFetchTotal.WithLabelValues(source, "success").Inc()
	SourceRecords.WithLabelValues(source).Set(float64(records))
}

// RecordAppInfo sets the build information gauge.
func RecordAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}

// RecordRunComplete marks the end of a run.
func RecordRunComplete() {
	LastRunTimestamp.Set(float64(time.Now().Unix()))
}

// errorReason maps an error to a bounded label value.
func errorReason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, recommend.ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, recommend.ErrEmptyMatrix):
		return "empty_matrix"
	case errors.Is(err, recommend.ErrAmbiguousPivot):
		return "ambiguous_pivot"
	case errors.Is(err, recommend.ErrInvalidInteraction):
		return "invalid_interaction"
	case errors.Is(err, recommend.ErrNotFitted):
		return "not_fitted"
	case errors.Is(err, recommend.ErrUnknownUser):
		return "unknown_user"
	case errors.Is(err, recommend.ErrUnknownAlgorithm):
		return "unknown_algorithm"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}

// Observer reports engine outcomes to the package collectors.
type Observer struct{}

// NewObserver returns an Observer backed by the default registry.
func NewObserver() *Observer {
	return &Observer{}
}

// ObserveFit implements recommend.Observer.
//
//nolint:gocritic // hugeParam: signature fixed by recommend.Observer
func (o *Observer) ObserveFit(res recommend.FitResult) {
	RecordFit(res)
}

// ObserveRecommend implements recommend.Observer.
//
//nolint:gocritic // hugeParam: signature fixed by recommend.Observer
func (o *Observer) ObserveRecommend(res recommend.Result, duration time.Duration) {
	RecordRecommend(res, duration)
}

var _ recommend.Observer = (*Observer)(nil)

// WriteTextfile writes every registered metric to path in the Prometheus text
// format, for the node-exporter textfile collector. The file is replaced atomically.
func WriteTextfile(path string) error {
	return WriteTextfileFrom(path, prometheus.DefaultGatherer)
}

// WriteTextfileFrom writes the metrics of g to path.
func WriteTextfileFrom(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
