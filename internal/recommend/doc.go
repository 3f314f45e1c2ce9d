// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

// Package recommend implements the collaborative filtering engine for travel content.
//
// # Architecture
//
// The engine fits two k-nearest-neighbor recommenders from the same snapshot
// of pre-aggregated user-item interactions:
//
//   - itemcf: propagates a user's own weights through the item-item similarity
//   - usercf: aggregates the weights of the K most similar users
//
// The recommenders live in the algorithms subpackage and the sparse matrix
// algebra they share lives in the sparse subpackage.
//
// # Design Principles
//
//   - Deterministic: labels are sorted and ties break by index
//   - Atomic: each fit publishes one immutable model value
//   - Auditable: all operations are logged with structured fields
//   - Observable: fit and recommend outcomes are reported to an Observer
//   - Non-throwing: recommend always answers, with a status and a reason
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), logger)
//	engine.SetDataProvider(db)
//	engine.Register(algorithms.NewItemBasedCF(cfg.KNN, cfg.DuplicatePolicy, logger))
//	engine.Register(algorithms.NewUserBasedCF(cfg.KNN, cfg.DuplicatePolicy, logger))
//
//	if _, err := engine.Fit(ctx); err != nil {
//	    return err
//	}
//
//	res := engine.Recommend(ctx, recommend.Request{
//	    Algorithm: recommend.AlgorithmItemCF,
//	    UserID:    "U1",
//	    TopN:      5,
//	})
//
// # Thread Safety
//
// The engine is safe for concurrent use. Fit calls are exclusive and a second
// concurrent Fit returns ErrFitInProgress. Recommend calls never block on a fit.
package recommend
