// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

// Package algorithms implements the k-nearest-neighbor recommenders.
//
// Both recommenders share one pipeline:
//
//	interactions -> BuildInteractionMatrix -> ComputeSimilarity -> score -> Rank
//
// The only difference is the axis handed to ComputeSimilarity. Item-based CF
// compares the columns of the user-item matrix, user-based CF compares its rows.
//
// # Algorithms
//
//   - ItemBasedCF: score(i) = sum of r(u,j) * sim(j,i) over the user's items j
//   - UserBasedCF: score(i) = sum of sim(u,v) * r(v,i) over the K nearest users v
//
// # Similarity
//
// Similarity is cosine over the sparse rows, gated twice. An entry survives only
// when the cosine is strictly greater than min_sim and the two rows share
// strictly more than min_overlap nonzero columns. The co-occurrence counts come
// from the binarized matrix multiplied by its own transpose.
//
// # Fitted State
//
// A fit produces one immutable model value (ItemModel or UserModel) holding the
// interaction matrix, its labels, the similarity matrix and the item names.
// The recommenders publish it through an atomic pointer. A failed fit publishes
// nil, so a recommender is either fully fitted or unfit.
//
// # Usage Example
//
//	itemCF := algorithms.NewItemBasedCF(recommend.DefaultKNNConfig(), recommend.DuplicateReject, logger)
//
//	if res := itemCF.Fit(ctx, interactions); !res.Ready() {
//	    log.Warn().Str("reason", res.Reason).Msg("model unfit")
//	}
//
//	result := itemCF.Recommend(ctx, recommend.Request{
//	    Algorithm: recommend.AlgorithmItemCF,
//	    UserID:    "U1",
//	    TopN:      5,
//	    ItemType:  "Trip",
//	})
//
// # Thread Safety
//
// Fits on one recommender are serialized. Recommend takes no locks and may run
// concurrently with other Recommend calls and with a fit.
package algorithms
