// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package algorithms

import (
	"fmt"

	"github.com/tomtom215/wayfinder/internal/recommend/sparse"
)

// ComputeSimilarity returns the gated pairwise cosine similarity of the rows of m.
//
// Entry (a, b) is kept only when its cosine is strictly greater than minSim and
// the rows share strictly more than minOverlap nonzero columns. Rows with a zero
// norm have no entries. The diagonal is subject to the same gates and survives
// for any minSim below 1.
//
// Item-based CF passes the transposed ratings (items as rows), user-based CF
// passes the ratings as they are.
func ComputeSimilarity(m *sparse.CSR, minSim float64, minOverlap int) (*sparse.CSR, error) {
	mt := m.Transpose()

	dot, err := sparse.Mul(m, mt)
	if err != nil {
		return nil, fmt.Errorf("dot products: %w", err)
	}

	bin := m.Binarize()
	overlap, err := sparse.Mul(bin, bin.Transpose())
	if err != nil {
		return nil, fmt.Errorf("co-occurrence counts: %w", err)
	}

	norms := m.RowNorms()
	cosine := dot.Map(func(a, b int, v float64) float64 {
		denom := norms[a] * norms[b]
		if denom == 0 {
			return 0
		}
		return clamp(v/denom, -1, 1)
	})

	return cosine.Filter(func(a, b int, v float64) bool {
		return v > minSim && overlap.At(a, b) > float64(minOverlap)
	}), nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
