// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package algorithms

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/tomtom215/wayfinder/internal/recommend"
)

// BaseAlgorithm provides common functionality for the recommenders.
type BaseAlgorithm struct {
	name         string
	logger       zerolog.Logger
	version      atomic.Int64
	lastFittedAt atomic.Int64
	fitMu        sync.Mutex
}

// NewBaseAlgorithm creates a new base algorithm with the given name.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBaseAlgorithm(name string, logger zerolog.Logger) BaseAlgorithm {
	return BaseAlgorithm{
		name:   name,
		logger: logger.With().Str("algorithm", name).Logger(),
	}
}

// Name returns the algorithm identifier.
func (b *BaseAlgorithm) Name() string {
	return b.name
}

// Version returns the number of successful fits.
func (b *BaseAlgorithm) Version() int {
	return int(b.version.Load())
}

// LastFittedAt returns when the model was last fitted successfully.
func (b *BaseAlgorithm) LastFittedAt() time.Time {
	ns := b.lastFittedAt.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// markFitted records a successful fit and returns the new version.
// Must be called while holding fitMu.
func (b *BaseAlgorithm) markFitted() int {
	b.lastFittedAt.Store(time.Now().UnixNano())
	return int(b.version.Add(1))
}

// acquireFitLock serializes fits.
func (b *BaseAlgorithm) acquireFitLock() {
	b.fitMu.Lock()
}

// releaseFitLock releases the fit lock.
func (b *BaseAlgorithm) releaseFitLock() {
	b.fitMu.Unlock()
}

// unfit logs a fit failure and builds the result.
func (b *BaseAlgorithm) unfit(err error, start time.Time) recommend.FitResult {
	b.logger.Warn().Err(err).Msg("cannot fit the model")
	res := recommend.UnfitResult(b.name, err)
	res.Duration = time.Since(start)
	return res
}

// rejectRequest logs why a recommend call produced no rows and builds the result.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (b *BaseAlgorithm) rejectRequest(req recommend.Request, err error) recommend.Result {
	b.logger.Warn().
		Str("user_id", req.UserID).
		Str("item_type", req.ItemType).
		Err(err).
		Msg("returning empty recommendations")
	return recommend.EmptyResult(b.name, req, err)
}

// warnMissingNames logs items ranked without resolvable display names.
func (b *BaseAlgorithm) warnMissingNames(missing []recommend.ItemKey) {
	for _, key := range missing {
		b.logger.Warn().
			Str("item_id", key.ID).
			Str("item_type", key.Type).
			Msg("name not found for item")
	}
}

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// Ensure both recommenders implement the interface.
var (
	_ recommend.Recommender = (*ItemBasedCF)(nil)
	_ recommend.Recommender = (*UserBasedCF)(nil)
)
