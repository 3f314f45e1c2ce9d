// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package recommend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Note: This package has no dependencies on other internal packages.
// DataProvider and Observer let the database and metrics packages plug in
// without circular imports.

// Engine coordinates the registered recommenders. One Fit call fetches a single
// interaction snapshot and fits every recommender from it.
// It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	recommenders map[string]Recommender
	order        []string
	algMu        sync.RWMutex

	fitMu     sync.Mutex
	statusMu  sync.RWMutex
	fitStatus FitStatus

	dataProvider DataProvider
	observer     Observer
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config:       cfg.Clone(),
		logger:       logger.With().Str("component", "recommend").Logger(),
		recommenders: make(map[string]Recommender),
		fitStatus: FitStatus{
			Results: make(map[string]FitResult),
		},
	}, nil
}

// SetDataProvider sets the source of interaction snapshots.
func (e *Engine) SetDataProvider(dp DataProvider) {
	e.dataProvider = dp
}

// SetObserver sets the receiver of fit and recommend outcomes.
func (e *Engine) SetObserver(o Observer) {
	e.observer = o
}

// Register adds a recommender. A recommender registered under an existing
// name replaces the previous one.
func (e *Engine) Register(r Recommender) {
	e.algMu.Lock()
	defer e.algMu.Unlock()

	if _, exists := e.recommenders[r.Name()]; !exists {
		e.order = append(e.order, r.Name())
	}
	e.recommenders[r.Name()] = r
	e.logger.Info().
		Str("algorithm", r.Name()).
		Msg("registered recommender")
}

// Algorithms returns the registered recommender names in registration order.
func (e *Engine) Algorithms() []string {
	e.algMu.RLock()
	defer e.algMu.RUnlock()

	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// getRecommenders returns the registered recommenders in registration order.
func (e *Engine) getRecommenders() []Recommender {
	e.algMu.RLock()
	defer e.algMu.RUnlock()

	out := make([]Recommender, 0, len(e.order))
	for _, name := range e.order {
		out = append(out, e.recommenders[name])
	}
	return out
}

// Fit fetches one interaction snapshot and fits every registered recommender.
//
// The returned error covers infrastructure failures only: no data provider,
// a concurrent fit, or a failed fetch. Data problems such as an empty snapshot
// are reported per recommender through FitResult and leave that recommender unfit.
func (e *Engine) Fit(ctx context.Context) ([]FitResult, error) {
	if !e.fitMu.TryLock() {
		return nil, ErrFitInProgress
	}
	defer e.fitMu.Unlock()

	if e.dataProvider == nil {
		return nil, ErrNoDataProvider
	}

	start := time.Now()
	e.setFitting(true)
	defer e.setFitting(false)
	e.logger.Info().Msg("starting model fit")

	fetchCtx, cancel := context.WithTimeout(ctx, e.config.FitTimeout)
	defer cancel()

	interactions, err := e.dataProvider.GetInteractions(fetchCtx)
	if err != nil {
		err = fmt.Errorf("get interactions: %w", err)
		e.recordFitError(err)
		return nil, err
	}

	e.logger.Info().
		Int("interactions", len(interactions)).
		Int("users", countUniqueUsers(interactions)).
		Msg("loaded interaction snapshot")

	results := e.fitAll(ctx, interactions)
	e.completeFit(interactions, results)

	e.logger.Info().
		Int("algorithms", len(results)).
		Dur("duration", time.Since(start)).
		Msg("model fit complete")

	return results, nil
}

// fitAll fits each recommender on the same snapshot. A failure in one
// recommender does not stop the others.
func (e *Engine) fitAll(ctx context.Context, interactions []Interaction) []FitResult {
	recommenders := e.getRecommenders()
	results := make([]FitResult, 0, len(recommenders))

	for _, r := range recommenders {
		res := r.Fit(ctx, interactions)
		if !res.Ready() {
			e.logger.Warn().
				Str("algorithm", r.Name()).
				Str("reason", res.Reason).
				Msg("recommender left unfit")
		}
		if e.observer != nil {
			e.observer.ObserveFit(res)
		}
		results = append(results, res)
	}

	return results
}

func (e *Engine) setFitting(fitting bool) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.fitStatus.IsFitting = fitting
}

func (e *Engine) recordFitError(err error) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.fitStatus.LastError = err.Error()
	e.logger.Error().Err(err).Msg("model fit failed")
}

func (e *Engine) completeFit(interactions []Interaction, results []FitResult) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	e.fitStatus.LastFitAt = time.Now()
	e.fitStatus.LastError = ""
	e.fitStatus.InteractionCount = len(interactions)
	e.fitStatus.Results = make(map[string]FitResult, len(results))
	for _, res := range results {
		e.fitStatus.Results[res.Algorithm] = res
	}
}

// GetStatus returns a copy of the most recent fit status.
func (e *Engine) GetStatus() FitStatus {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()

	status := e.fitStatus
	status.Results = make(map[string]FitResult, len(e.fitStatus.Results))
	for k, v := range e.fitStatus.Results {
		status.Results[k] = v
	}
	return status
}

// Recommend routes a request to the named recommender.
// Failures are reported through Result.Status and Result.Reason.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) Result {
	start := time.Now()

	req = e.prepareRequest(req)
	logger := e.createRequestLogger(req)
	logger.Debug().Msg("processing recommendation request")

	e.algMu.RLock()
	r, ok := e.recommenders[req.Algorithm]
	e.algMu.RUnlock()

	var res Result
	if ok {
		res = r.Recommend(ctx, req)
	} else {
		err := fmt.Errorf("%w: %q", ErrUnknownAlgorithm, req.Algorithm)
		logger.Warn().Err(err).Msg("returning empty recommendations")
		res = EmptyResult(req.Algorithm, req, err)
	}
	if res.Recommendations == nil {
		res.Recommendations = []Recommendation{}
	}
	res.RequestID = req.RequestID

	duration := time.Since(start)
	if e.observer != nil {
		e.observer.ObserveRecommend(res, duration)
	}

	logger.Debug().
		Str("status", res.Status.String()).
		Int("returned", len(res.Recommendations)).
		Dur("duration", duration).
		Msg("recommendation complete")

	return res
}

// prepareRequest applies defaults and generates a request ID if needed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	if req.TopN <= 0 {
		req.TopN = e.config.Limits.DefaultTopN
	}
	if req.TopN > e.config.Limits.MaxTopN {
		req.TopN = e.config.Limits.MaxTopN
	}

	return req
}

// createRequestLogger creates a logger with request context.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(req Request) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Str("algorithm", req.Algorithm).
		Str("user_id", req.UserID).
		Str("item_type", req.ItemType).
		Int("top_n", req.TopN).
		Logger()
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}

// countUniqueUsers counts unique users in interactions.
func countUniqueUsers(interactions []Interaction) int {
	users := make(map[string]struct{}, len(interactions))
	for _, i := range interactions {
		users[i.UserID] = struct{}{}
	}
	return len(users)
}
