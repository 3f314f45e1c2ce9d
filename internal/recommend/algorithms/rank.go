// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package algorithms

import (
	"sort"

	"github.com/tomtom215/wayfinder/internal/recommend"
)

// scoredItem pairs a column index with its score.
type scoredItem struct {
	col   int
	score float64
}

// Rank turns a dense score vector into the final recommendation list for the
// user at row userRow.
//
// Items the user interacted with (weight > 0) are never candidates. When
// itemType is non-empty only columns of that type are candidates. Candidates
// are ordered by descending score, ties by ascending column index, and the
// first topN are returned with ranks 1..n.
//
// The second return value lists the ranked items whose name was synthesized.
func Rank(m *InteractionMatrix, userRow int, scores []float64, topN int, itemType string) ([]recommend.Recommendation, []recommend.ItemKey) {
	if topN <= 0 {
		return []recommend.Recommendation{}, nil
	}

	seen := make(map[int]struct{})
	cols, vals := m.Ratings.Row(userRow)
	for k, c := range cols {
		if vals[k] > 0 {
			seen[c] = struct{}{}
		}
	}

	candidates := make([]scoredItem, 0, len(scores))
	for c, s := range scores {
		if _, ok := seen[c]; ok {
			continue
		}
		if itemType != "" && m.Items[c].Type != itemType {
			continue
		}
		candidates = append(candidates, scoredItem{col: c, score: s})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].col < candidates[j].col
	})

	if len(candidates) > topN {
		candidates = candidates[:topN]
	}

	recs := make([]recommend.Recommendation, 0, len(candidates))
	var missing []recommend.ItemKey
	for i, cand := range candidates {
		key := m.Items[cand.col]
		name, ok := m.NameOf(cand.col)
		if !ok {
			missing = append(missing, key)
		}
		recs = append(recs, recommend.Recommendation{
			Rank:     i + 1,
			ItemID:   key.ID,
			ItemType: key.Type,
			Name:     name,
			Score:    cand.score,
		})
	}

	return recs, missing
}
