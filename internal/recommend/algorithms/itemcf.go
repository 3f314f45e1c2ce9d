// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package algorithms

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/tomtom215/wayfinder/internal/recommend"
	"github.com/tomtom215/wayfinder/internal/recommend/sparse"
)

// ItemModel is the immutable result of an item-based fit.
type ItemModel struct {
	Matrix *InteractionMatrix

	// Similarity is the gated item-item cosine matrix, items x items.
	Similarity *sparse.CSR
}

// FitItemModel builds the interaction matrix and the item-item similarity.
func FitItemModel(ctx context.Context, interactions []recommend.Interaction, cfg recommend.KNNConfig, policy recommend.DuplicatePolicy) (*ItemModel, error) {
	m, err := BuildInteractionMatrix(interactions, policy)
	if err != nil {
		return nil, err
	}
	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}

	sim, err := ComputeSimilarity(m.Ratings.Transpose(), cfg.MinSimilarity, cfg.MinOverlap)
	if err != nil {
		return nil, fmt.Errorf("item similarity: %w", err)
	}

	return &ItemModel{Matrix: m, Similarity: sim}, nil
}

// Recommend scores unseen items for a user as
// score(i) = sum over the user's items j with r(u,j) > 0 of r(u,j) * sim(j,i).
func (im *ItemModel) Recommend(userID string, topN int, itemType string) ([]recommend.Recommendation, []recommend.ItemKey, error) {
	row, ok := im.Matrix.UserRow(userID)
	if !ok {
		return nil, nil, recommend.UnknownUserError(userID)
	}

	scores := make([]float64, im.Matrix.Ratings.Cols())
	cols, vals := im.Matrix.Ratings.Row(row)
	for k, j := range cols {
		w := vals[k]
		if w <= 0 {
			continue
		}
		simCols, simVals := im.Similarity.Row(j)
		for s, i := range simCols {
			scores[i] += w * simVals[s]
		}
	}

	recs, missing := Rank(im.Matrix, row, scores, topN, itemType)
	return recs, missing, nil
}

// ItemBasedCF implements item-based collaborative filtering.
// Items are similar when the same users interact with them.
type ItemBasedCF struct {
	BaseAlgorithm
	config recommend.KNNConfig
	policy recommend.DuplicatePolicy
	model  atomic.Pointer[ItemModel]
}

// NewItemBasedCF creates a new item-based CF recommender.
// A zero neighbor count falls back to the default and an unset policy to reject.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewItemBasedCF(cfg recommend.KNNConfig, policy recommend.DuplicatePolicy, logger zerolog.Logger) *ItemBasedCF {
	cfg, policy = applyDefaults(cfg, policy)
	return &ItemBasedCF{
		BaseAlgorithm: NewBaseAlgorithm(recommend.AlgorithmItemCF, logger),
		config:        cfg,
		policy:        policy,
	}
}

// Fit replaces the published model. On failure the recommender becomes unfit.
func (ib *ItemBasedCF) Fit(ctx context.Context, interactions []recommend.Interaction) recommend.FitResult {
	ib.acquireFitLock()
	defer ib.releaseFitLock()

	start := time.Now()
	model, err := FitItemModel(ctx, interactions, ib.config, ib.policy)
	if err != nil {
		ib.model.Store(nil)
		return ib.unfit(err, start)
	}

	ib.model.Store(model)
	version := ib.markFitted()

	res := recommend.FitResult{
		Algorithm: ib.name,
		Status:    recommend.StatusReady,
		Users:     len(model.Matrix.Users),
		Items:     len(model.Matrix.Items),
		NonZero:   model.Similarity.NNZ(),
		Version:   version,
		Duration:  time.Since(start),
	}
	ib.logger.Info().
		Int("users", res.Users).
		Int("items", res.Items).
		Int("similarity_nonzero", res.NonZero).
		Int("version", version).
		Dur("duration", res.Duration).
		Msg("item-based model fitted")

	return res
}

// Recommend ranks unseen items for req.UserID using the published model.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (ib *ItemBasedCF) Recommend(ctx context.Context, req recommend.Request) recommend.Result {
	model := ib.model.Load()
	if model == nil {
		return ib.rejectRequest(req, recommend.ErrNotFitted)
	}
	if ContextCancelled(ctx) {
		return ib.rejectRequest(req, ctx.Err())
	}

	recs, missing, err := model.Recommend(req.UserID, req.TopN, req.ItemType)
	if err != nil {
		return ib.rejectRequest(req, err)
	}
	ib.warnMissingNames(missing)

	return recommend.Result{
		Algorithm:       ib.name,
		UserID:          req.UserID,
		ItemType:        req.ItemType,
		Status:          recommend.StatusReady,
		Recommendations: recs,
	}
}

// IsFitted reports whether a model is published.
func (ib *ItemBasedCF) IsFitted() bool {
	return ib.model.Load() != nil
}

// Model returns the published model, or nil when unfit.
func (ib *ItemBasedCF) Model() *ItemModel {
	return ib.model.Load()
}

func applyDefaults(cfg recommend.KNNConfig, policy recommend.DuplicatePolicy) (recommend.KNNConfig, recommend.DuplicatePolicy) {
	if cfg.KNeighbors <= 0 {
		cfg.KNeighbors = recommend.DefaultKNNConfig().KNeighbors
	}
	if cfg.MinOverlap < 0 {
		cfg.MinOverlap = 0
	}
	if !policy.Valid() {
		policy = recommend.DuplicateReject
	}
	return cfg, policy
}
