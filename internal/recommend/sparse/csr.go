// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

// Package sparse implements the compressed sparse row (CSR) matrix used by the
// collaborative filtering algorithms.
//
// # Layout
//
// A CSR matrix with R rows stores three slices:
//
//   - RowPtr: length R+1, row r occupies [RowPtr[r], RowPtr[r+1])
//   - ColIdx: column index of each stored entry, strictly increasing within a row
//   - Values: value of each stored entry
//
// Only nonzero values are stored. A missing entry reads as 0.
//
// # Immutability
//
// Matrices returned by this package are never mutated after construction.
// Operations such as Transpose, Binarize and Mul allocate new matrices, so a
// matrix can be shared between goroutines without locking.
package sparse

import (
	"fmt"
	"math"
	"sort"
)

// CSR is an immutable compressed sparse row matrix.
type CSR struct {
	rows   int
	cols   int
	rowPtr []int
	colIdx []int
	values []float64
}

// Triplet is a single (row, col, value) entry used to build a matrix.
type Triplet struct {
	Row   int
	Col   int
	Value float64
}

// FromTriplets builds a CSR matrix from coordinate entries.
// Zero values are dropped. Duplicate coordinates are rejected so that callers
// decide how duplicates are aggregated before building.
func FromTriplets(rows, cols int, entries []Triplet) (*CSR, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("sparse: invalid shape %dx%d", rows, cols)
	}

	sorted := make([]Triplet, 0, len(entries))
	for _, e := range entries {
		if e.Row < 0 || e.Row >= rows || e.Col < 0 || e.Col >= cols {
			return nil, fmt.Errorf("sparse: entry (%d, %d) out of bounds for %dx%d", e.Row, e.Col, rows, cols)
		}
		if math.IsNaN(e.Value) || math.IsInf(e.Value, 0) {
			return nil, fmt.Errorf("sparse: entry (%d, %d) is not finite", e.Row, e.Col)
		}
		if e.Value == 0 {
			continue
		}
		sorted = append(sorted, e)
	}

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Row != sorted[j].Row {
			return sorted[i].Row < sorted[j].Row
		}
		return sorted[i].Col < sorted[j].Col
	})

	m := &CSR{
		rows:   rows,
		cols:   cols,
		rowPtr: make([]int, rows+1),
		colIdx: make([]int, len(sorted)),
		values: make([]float64, len(sorted)),
	}

	for i, e := range sorted {
		if i > 0 && sorted[i-1].Row == e.Row && sorted[i-1].Col == e.Col {
			return nil, fmt.Errorf("sparse: duplicate entry (%d, %d)", e.Row, e.Col)
		}
		m.rowPtr[e.Row+1]++
		m.colIdx[i] = e.Col
		m.values[i] = e.Value
	}
	for r := 0; r < rows; r++ {
		m.rowPtr[r+1] += m.rowPtr[r]
	}

	return m, nil
}

// Rows returns the number of rows.
func (m *CSR) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *CSR) Cols() int { return m.cols }

// NNZ returns the number of stored (nonzero) entries.
func (m *CSR) NNZ() int { return len(m.values) }

// Row returns the column indices and values stored in row r.
// The returned slices alias the matrix storage and must not be modified.
func (m *CSR) Row(r int) (cols []int, vals []float64) {
	start, end := m.rowPtr[r], m.rowPtr[r+1]
	return m.colIdx[start:end], m.values[start:end]
}

// At returns the value at (r, c), or 0 when the entry is absent.
func (m *CSR) At(r, c int) float64 {
	cols, vals := m.Row(r)
	i := sort.SearchInts(cols, c)
	if i < len(cols) && cols[i] == c {
		return vals[i]
	}
	return 0
}

// Transpose returns Mᵀ.
func (m *CSR) Transpose() *CSR {
	t := &CSR{
		rows:   m.cols,
		cols:   m.rows,
		rowPtr: make([]int, m.cols+1),
		colIdx: make([]int, len(m.colIdx)),
		values: make([]float64, len(m.values)),
	}

	for _, c := range m.colIdx {
		t.rowPtr[c+1]++
	}
	for c := 0; c < m.cols; c++ {
		t.rowPtr[c+1] += t.rowPtr[c]
	}

	// Scanning source rows in order keeps column indices sorted in each output row.
	next := make([]int, m.cols)
	copy(next, t.rowPtr[:m.cols])
	for r := 0; r < m.rows; r++ {
		for k := m.rowPtr[r]; k < m.rowPtr[r+1]; k++ {
			c := m.colIdx[k]
			dst := next[c]
			t.colIdx[dst] = r
			t.values[dst] = m.values[k]
			next[c]++
		}
	}

	return t
}

// Binarize returns a matrix with the same sparsity pattern where every
// stored value is replaced by 1.
func (m *CSR) Binarize() *CSR {
	b := &CSR{
		rows:   m.rows,
		cols:   m.cols,
		rowPtr: append([]int(nil), m.rowPtr...),
		colIdx: append([]int(nil), m.colIdx...),
		values: make([]float64, len(m.values)),
	}
	for i := range b.values {
		b.values[i] = 1
	}
	return b
}

// RowNorms returns the L2 norm of every row.
func (m *CSR) RowNorms() []float64 {
	norms := make([]float64, m.rows)
	for r := 0; r < m.rows; r++ {
		var sum float64
		for k := m.rowPtr[r]; k < m.rowPtr[r+1]; k++ {
			sum += m.values[k] * m.values[k]
		}
		norms[r] = math.Sqrt(sum)
	}
	return norms
}

// Mul returns the product A·B using Gustavson's row-by-row algorithm.
// Entries that cancel to exactly zero are not stored.
func Mul(a, b *CSR) (*CSR, error) {
	if a.cols != b.rows {
		return nil, fmt.Errorf("sparse: shape mismatch %dx%d · %dx%d", a.rows, a.cols, b.rows, b.cols)
	}

	out := &CSR{
		rows:   a.rows,
		cols:   b.cols,
		rowPtr: make([]int, a.rows+1),
	}

	// Dense accumulator with a marker array, reset per output row.
	acc := make([]float64, b.cols)
	marker := make([]int, b.cols)
	for i := range marker {
		marker[i] = -1
	}
	touched := make([]int, 0, b.cols)

	for r := 0; r < a.rows; r++ {
		touched = touched[:0]
		for ka := a.rowPtr[r]; ka < a.rowPtr[r+1]; ka++ {
			j := a.colIdx[ka]
			av := a.values[ka]
			for kb := b.rowPtr[j]; kb < b.rowPtr[j+1]; kb++ {
				c := b.colIdx[kb]
				if marker[c] != r {
					marker[c] = r
					acc[c] = 0
					touched = append(touched, c)
				}
				acc[c] += av * b.values[kb]
			}
		}

		sort.Ints(touched)
		for _, c := range touched {
			if acc[c] == 0 {
				continue
			}
			out.colIdx = append(out.colIdx, c)
			out.values = append(out.values, acc[c])
		}
		out.rowPtr[r+1] = len(out.colIdx)
	}

	return out, nil
}

// Filter returns a matrix holding only the entries for which keep returns true.
func (m *CSR) Filter(keep func(r, c int, v float64) bool) *CSR {
	out := &CSR{
		rows:   m.rows,
		cols:   m.cols,
		rowPtr: make([]int, m.rows+1),
	}
	for r := 0; r < m.rows; r++ {
		for k := m.rowPtr[r]; k < m.rowPtr[r+1]; k++ {
			if keep(r, m.colIdx[k], m.values[k]) {
				out.colIdx = append(out.colIdx, m.colIdx[k])
				out.values = append(out.values, m.values[k])
			}
		}
		out.rowPtr[r+1] = len(out.colIdx)
	}
	return out
}

// Map returns a matrix with the same sparsity pattern and values replaced by fn.
// Results equal to zero are dropped.
func (m *CSR) Map(fn func(r, c int, v float64) float64) *CSR {
	out := &CSR{
		rows:   m.rows,
		cols:   m.cols,
		rowPtr: make([]int, m.rows+1),
	}
	for r := 0; r < m.rows; r++ {
		for k := m.rowPtr[r]; k < m.rowPtr[r+1]; k++ {
			v := fn(r, m.colIdx[k], m.values[k])
			if v == 0 {
				continue
			}
			out.colIdx = append(out.colIdx, m.colIdx[k])
			out.values = append(out.values, v)
		}
		out.rowPtr[r+1] = len(out.colIdx)
	}
	return out
}
