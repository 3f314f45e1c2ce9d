// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors reported through FitResult and Result.
var (
	// ErrEmptyInput indicates the data provider returned no interactions.
	ErrEmptyInput = errors.New("interaction data is empty")

	// ErrEmptyMatrix indicates pivoting produced zero rows or zero columns.
	ErrEmptyMatrix = errors.New("user-item matrix is empty after pivoting")

	// ErrAmbiguousPivot indicates conflicting duplicate (user, item, type) cells.
	ErrAmbiguousPivot = errors.New("ambiguous duplicate interaction")

	// ErrInvalidInteraction indicates a record that cannot be placed in the matrix.
	ErrInvalidInteraction = errors.New("invalid interaction")

	// ErrNotFitted indicates recommend was called without a fitted model.
	ErrNotFitted = errors.New("model not fitted")

	// ErrUnknownUser indicates the user is absent from the fitted row labels.
	ErrUnknownUser = errors.New("user not found in training data")

	// ErrUnknownAlgorithm indicates a request named an unregistered recommender.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")

	// ErrFitInProgress indicates Engine.Fit was called while another fit runs.
	ErrFitInProgress = errors.New("fit already in progress")

	// ErrNoDataProvider indicates Engine.Fit was called without a data provider.
	ErrNoDataProvider = errors.New("data provider not set")
)

// Interaction is one pre-aggregated user-item record as delivered by the
// data-fetching layer. Field names follow the upstream record contract
// (user, item, type, name, avg).
type Interaction struct {
	// UserID is an opaque user identifier.
	UserID string `json:"user"`

	// ItemID is an opaque item identifier.
	ItemID string `json:"item"`

	// ItemType is a category label such as "Trip", "Event" or "Destination".
	ItemType string `json:"type"`

	// Name is the display name of the item.
	Name string `json:"name"`

	// Weight is the non-negative, pre-aggregated interaction weight.
	Weight float64 `json:"avg"`
}

// Key returns the (item, type) column key of the interaction.
func (i Interaction) Key() ItemKey {
	return ItemKey{ID: i.ItemID, Type: i.ItemType}
}

// ItemKey identifies a matrix column. The same item id may appear under
// several types and each pair is a distinct column.
type ItemKey struct {
	ID   string `json:"item"`
	Type string `json:"type"`
}

// String returns a readable form used in logs.
func (k ItemKey) String() string {
	return k.Type + ":" + k.ID
}

// Less orders keys by id, then type.
func (k ItemKey) Less(other ItemKey) bool {
	if k.ID != other.ID {
		return k.ID < other.ID
	}
	return k.Type < other.Type
}

// Recommendation is one ranked entry of a recommend call.
type Recommendation struct {
	Rank     int     `json:"rank"`
	ItemID   string  `json:"item"`
	ItemType string  `json:"type"`
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
}

// Status is the lifecycle state reported by fit and recommend.
type Status int

const (
	// StatusUnfit means no usable model is available.
	StatusUnfit Status = iota
	// StatusReady means a fitted model answered the call.
	StatusReady
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusUnfit:
		return "unfit"
	case StatusReady:
		return "ready"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// FitResult reports the outcome of fitting one recommender.
type FitResult struct {
	Algorithm string        `json:"algorithm"`
	Status    Status        `json:"status"`
	Reason    string        `json:"reason,omitempty"`
	Err       error         `json:"-"`
	Users     int           `json:"users"`
	Items     int           `json:"items"`
	NonZero   int           `json:"similarity_nonzero"`
	Version   int           `json:"version"`
	Duration  time.Duration `json:"duration"`
}

// Ready reports whether the fit produced a usable model.
func (r FitResult) Ready() bool {
	return r.Status == StatusReady
}

// UnfitResult builds a FitResult for a failed fit.
func UnfitResult(algorithm string, err error) FitResult {
	return FitResult{
		Algorithm: algorithm,
		Status:    StatusUnfit,
		Reason:    err.Error(),
		Err:       err,
	}
}

// Request is a single recommendation query.
type Request struct {
	// Algorithm selects the recommender ("itemcf" or "usercf").
	Algorithm string `json:"algorithm" validate:"required"`

	// UserID is the user to recommend for.
	UserID string `json:"user" validate:"required"`

	// TopN is the maximum number of recommendations.
	// Defaults to Config.DefaultTopN when zero.
	TopN int `json:"top_n" validate:"gte=0"`

	// ItemType restricts candidates to one type when non-empty.
	ItemType string `json:"item_type,omitempty"`

	// RequestID traces the call through logs. Generated when empty.
	RequestID string `json:"request_id,omitempty"`
}

// Result is the answer to a recommend call. Recommendations is never nil so
// an empty result has the same shape as a populated one.
type Result struct {
	RequestID       string           `json:"request_id,omitempty"`
	Algorithm       string           `json:"algorithm"`
	UserID          string           `json:"user"`
	ItemType        string           `json:"item_type,omitempty"`
	Status          Status           `json:"status"`
	Reason          string           `json:"reason,omitempty"`
	Err             error            `json:"-"`
	Recommendations []Recommendation `json:"recommendations"`
}

// EmptyResult builds a zero-row result carrying the reason it is empty.
func EmptyResult(algorithm string, req Request, err error) Result {
	return Result{
		RequestID:       req.RequestID,
		Algorithm:       algorithm,
		UserID:          req.UserID,
		ItemType:        req.ItemType,
		Status:          StatusUnfit,
		Reason:          err.Error(),
		Err:             err,
		Recommendations: []Recommendation{},
	}
}

// UnknownUserError wraps ErrUnknownUser with the offending id.
func UnknownUserError(userID string) error {
	return fmt.Errorf("%w: %q", ErrUnknownUser, userID)
}

// DataProvider supplies the full interaction snapshot for a fit.
// This is typically implemented by the database layer.
type DataProvider interface {
	GetInteractions(ctx context.Context) ([]Interaction, error)
}

// Observer receives fit and recommend outcomes from the Engine.
// The metrics package implements it.
type Observer interface {
	ObserveFit(res FitResult)
	ObserveRecommend(res Result, duration time.Duration)
}

// FitStatus describes the most recent Engine.Fit call.
type FitStatus struct {
	IsFitting        bool                 `json:"is_fitting"`
	LastFitAt        time.Time            `json:"last_fit_at"`
	LastError        string               `json:"last_error,omitempty"`
	InteractionCount int                  `json:"interaction_count"`
	Results          map[string]FitResult `json:"results"`
}

// Recommender is implemented by both collaborative filtering strategies.
type Recommender interface {
	// Name returns the algorithm identifier.
	Name() string

	// Fit replaces the fitted state from a full interaction snapshot.
	Fit(ctx context.Context, interactions []Interaction) FitResult

	// Recommend ranks unseen items for a user. It never returns an error
	// value; failures are reported through Result.Status and Result.Reason.
	Recommend(ctx context.Context, req Request) Result

	// IsFitted returns whether a usable model is published.
	IsFitted() bool

	// Version returns the number of successful fits.
	Version() int
}
