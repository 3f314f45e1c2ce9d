// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package algorithms

import (
	"fmt"
	"math"
	"sort"

	"github.com/tomtom215/wayfinder/internal/recommend"
	"github.com/tomtom215/wayfinder/internal/recommend/sparse"
)

// InteractionMatrix is the pivoted user-item matrix of one fit.
// Rows are users, columns are (item, type) pairs. Both label slices are sorted
// so that identical input always produces identical indices.
type InteractionMatrix struct {
	// Ratings holds the interaction weights, users x items.
	Ratings *sparse.CSR

	// Users are the row labels.
	Users []string

	// Items are the column labels.
	Items []recommend.ItemKey

	// Names maps each column to its first non-empty display name.
	Names map[recommend.ItemKey]string

	userIndex map[string]int
}

// UserRow returns the row index of a user.
func (m *InteractionMatrix) UserRow(userID string) (int, bool) {
	r, ok := m.userIndex[userID]
	return r, ok
}

// NameOf resolves the display name of a column, synthesizing one when the
// metadata has no entry. The second return value is false for synthesized names.
func (m *InteractionMatrix) NameOf(col int) (string, bool) {
	key := m.Items[col]
	if name, ok := m.Names[key]; ok {
		return name, true
	}
	return fmt.Sprintf("Unknown %s (%s)", key.Type, key.ID), false
}

type cellKey struct {
	user string
	item recommend.ItemKey
}

type cell struct {
	sum   float64
	count int
	first float64
}

// BuildInteractionMatrix pivots interactions into a sparse user-item matrix.
//
// Records must carry non-empty user and item ids and a finite, non-negative
// weight. Repeated (user, item, type) records are resolved by policy:
// DuplicateReject keeps identical weights and fails on conflicting ones,
// DuplicateMean averages them.
//
// Zero weights register the user and item labels without storing an entry.
// A matrix with labels but no positive weight is valid: every score is zero.
// The call fails with ErrEmptyInput for no records and ErrEmptyMatrix when
// pivoting yields no rows or no columns.
func BuildInteractionMatrix(interactions []recommend.Interaction, policy recommend.DuplicatePolicy) (*InteractionMatrix, error) {
	if len(interactions) == 0 {
		return nil, recommend.ErrEmptyInput
	}
	if !policy.Valid() {
		return nil, fmt.Errorf("unsupported duplicate policy %q", policy)
	}

	cells := make(map[cellKey]*cell, len(interactions))
	users := make(map[string]struct{})
	items := make(map[recommend.ItemKey]struct{})
	names := make(map[recommend.ItemKey]string)

	for idx, in := range interactions {
		if err := checkInteraction(in); err != nil {
			return nil, fmt.Errorf("record %d: %w", idx, err)
		}

		key := in.Key()
		users[in.UserID] = struct{}{}
		items[key] = struct{}{}
		if _, ok := names[key]; !ok && in.Name != "" {
			names[key] = in.Name
		}

		ck := cellKey{user: in.UserID, item: key}
		c, ok := cells[ck]
		if !ok {
			cells[ck] = &cell{sum: in.Weight, count: 1, first: in.Weight}
			continue
		}
		if policy == recommend.DuplicateReject && in.Weight != c.first {
			return nil, fmt.Errorf("%w: user %q item %s has weights %v and %v",
				recommend.ErrAmbiguousPivot, in.UserID, key, c.first, in.Weight)
		}
		c.sum += in.Weight
		c.count++
	}

	m := &InteractionMatrix{
		Users:     make([]string, 0, len(users)),
		Items:     make([]recommend.ItemKey, 0, len(items)),
		Names:     names,
		userIndex: make(map[string]int, len(users)),
	}
	for u := range users {
		m.Users = append(m.Users, u)
	}
	sort.Strings(m.Users)
	for k := range items {
		m.Items = append(m.Items, k)
	}
	sort.Slice(m.Items, func(i, j int) bool { return m.Items[i].Less(m.Items[j]) })

	for i, u := range m.Users {
		m.userIndex[u] = i
	}
	itemIndex := make(map[recommend.ItemKey]int, len(m.Items))
	for i, k := range m.Items {
		itemIndex[k] = i
	}

	entries := make([]sparse.Triplet, 0, len(cells))
	for ck, c := range cells {
		entries = append(entries, sparse.Triplet{
			Row:   m.userIndex[ck.user],
			Col:   itemIndex[ck.item],
			Value: c.sum / float64(c.count),
		})
	}

	ratings, err := sparse.FromTriplets(len(m.Users), len(m.Items), entries)
	if err != nil {
		return nil, fmt.Errorf("build ratings matrix: %w", err)
	}
	if ratings.Rows() == 0 || ratings.Cols() == 0 {
		return nil, recommend.ErrEmptyMatrix
	}
	m.Ratings = ratings

	return m, nil
}

func checkInteraction(in recommend.Interaction) error {
	switch {
	case in.UserID == "":
		return fmt.Errorf("%w: empty user id", recommend.ErrInvalidInteraction)
	case in.ItemID == "":
		return fmt.Errorf("%w: empty item id", recommend.ErrInvalidInteraction)
	case math.IsNaN(in.Weight) || math.IsInf(in.Weight, 0):
		return fmt.Errorf("%w: weight is not finite", recommend.ErrInvalidInteraction)
	case in.Weight < 0:
		return fmt.Errorf("%w: negative weight %v", recommend.ErrInvalidInteraction, in.Weight)
	}
	return nil
}
