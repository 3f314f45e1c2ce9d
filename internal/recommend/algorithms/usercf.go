// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package algorithms

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/tomtom215/wayfinder/internal/recommend"
	"github.com/tomtom215/wayfinder/internal/recommend/sparse"
)

// UserModel is the immutable result of a user-based fit.
type UserModel struct {
	Matrix *InteractionMatrix

	// Similarity is the gated user-user cosine matrix, users x users.
	Similarity *sparse.CSR

	// K is the neighbor count used at recommend time.
	K int
}

// Neighbor is a similar user selected for scoring.
type Neighbor struct {
	Row        int
	Similarity float64
}

// FitUserModel builds the interaction matrix and the user-user similarity.
func FitUserModel(ctx context.Context, interactions []recommend.Interaction, cfg recommend.KNNConfig, policy recommend.DuplicatePolicy) (*UserModel, error) {
	m, err := BuildInteractionMatrix(interactions, policy)
	if err != nil {
		return nil, err
	}
	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}

	sim, err := ComputeSimilarity(m.Ratings, cfg.MinSimilarity, cfg.MinOverlap)
	if err != nil {
		return nil, fmt.Errorf("user similarity: %w", err)
	}

	return &UserModel{Matrix: m, Similarity: sim, K: cfg.KNeighbors}, nil
}

// Neighbors returns up to K users most similar to the user at row, excluding
// that user. Ties are broken by ascending row index.
func (um *UserModel) Neighbors(row int) []Neighbor {
	cols, vals := um.Similarity.Row(row)
	neighbors := make([]Neighbor, 0, len(cols))
	for k, c := range cols {
		if c == row {
			continue
		}
		neighbors = append(neighbors, Neighbor{Row: c, Similarity: vals[k]})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		return neighbors[i].Row < neighbors[j].Row
	})

	if len(neighbors) > um.K {
		neighbors = neighbors[:um.K]
	}
	return neighbors
}

// Recommend scores unseen items for a user as the similarity-weighted sum of
// the ratings of the user's K nearest neighbors.
func (um *UserModel) Recommend(userID string, topN int, itemType string) ([]recommend.Recommendation, []recommend.ItemKey, error) {
	row, ok := um.Matrix.UserRow(userID)
	if !ok {
		return nil, nil, recommend.UnknownUserError(userID)
	}

	scores := make([]float64, um.Matrix.Ratings.Cols())
	for _, n := range um.Neighbors(row) {
		cols, vals := um.Matrix.Ratings.Row(n.Row)
		for k, i := range cols {
			scores[i] += n.Similarity * vals[k]
		}
	}

	recs, missing := Rank(um.Matrix, row, scores, topN, itemType)
	return recs, missing, nil
}

// UserBasedCF implements user-based collaborative filtering.
// Users are similar when they interact with the same items.
type UserBasedCF struct {
	BaseAlgorithm
	config recommend.KNNConfig
	policy recommend.DuplicatePolicy
	model  atomic.Pointer[UserModel]
}

// NewUserBasedCF creates a new user-based CF recommender.
// A zero neighbor count falls back to the default and an unset policy to reject.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewUserBasedCF(cfg recommend.KNNConfig, policy recommend.DuplicatePolicy, logger zerolog.Logger) *UserBasedCF {
	cfg, policy = applyDefaults(cfg, policy)
	return &UserBasedCF{
		BaseAlgorithm: NewBaseAlgorithm(recommend.AlgorithmUserCF, logger),
		config:        cfg,
		policy:        policy,
	}
}

// Fit replaces the published model. On failure the recommender becomes unfit.
func (ub *UserBasedCF) Fit(ctx context.Context, interactions []recommend.Interaction) recommend.FitResult {
	ub.acquireFitLock()
	defer ub.releaseFitLock()

	start := time.Now()
	model, err := FitUserModel(ctx, interactions, ub.config, ub.policy)
	if err != nil {
		ub.model.Store(nil)
		return ub.unfit(err, start)
	}

	ub.model.Store(model)
	version := ub.markFitted()

	res := recommend.FitResult{
		Algorithm: ub.name,
		Status:    recommend.StatusReady,
		Users:     len(model.Matrix.Users),
		Items:     len(model.Matrix.Items),
		NonZero:   model.Similarity.NNZ(),
		Version:   version,
		Duration:  time.Since(start),
	}
	ub.logger.Info().
		Int("users", res.Users).
		Int("items", res.Items).
		Int("similarity_nonzero", res.NonZero).
		Int("k_neighbors", model.K).
		Int("version", version).
		Dur("duration", res.Duration).
		Msg("user-based model fitted")

	return res
}

// Recommend ranks unseen items for req.UserID using the published model.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (ub *UserBasedCF) Recommend(ctx context.Context, req recommend.Request) recommend.Result {
	model := ub.model.Load()
	if model == nil {
		return ub.rejectRequest(req, recommend.ErrNotFitted)
	}
	if ContextCancelled(ctx) {
		return ub.rejectRequest(req, ctx.Err())
	}

	recs, missing, err := model.Recommend(req.UserID, req.TopN, req.ItemType)
	if err != nil {
		return ub.rejectRequest(req, err)
	}
	ub.warnMissingNames(missing)

	return recommend.Result{
		Algorithm:       ub.name,
		UserID:          req.UserID,
		ItemType:        req.ItemType,
		Status:          recommend.StatusReady,
		Recommendations: recs,
	}
}

// IsFitted reports whether a model is published.
func (ub *UserBasedCF) IsFitted() bool {
	return ub.model.Load() != nil
}

// Model returns the published model, or nil when unfit.
func (ub *UserBasedCF) Model() *UserModel {
	return ub.model.Load()
}
