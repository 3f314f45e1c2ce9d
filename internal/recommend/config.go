// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package recommend

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Algorithm identifiers.
const (
	AlgorithmItemCF = "itemcf"
	AlgorithmUserCF = "usercf"
)

// DuplicatePolicy controls how the matrix builder treats repeated
// (user, item, type) records.
type DuplicatePolicy string

const (
	// DuplicateReject collapses identical duplicates and fails the fit on
	// conflicting weights.
	DuplicateReject DuplicatePolicy = "reject"

	// DuplicateMean averages conflicting weights.
	DuplicateMean DuplicatePolicy = "mean"
)

// Valid reports whether the policy is recognized.
func (p DuplicatePolicy) Valid() bool {
	return p == DuplicateReject || p == DuplicateMean
}

// Config contains all configuration for the recommendation engine.
type Config struct {
	// KNN contains the similarity and neighborhood parameters.
	KNN KNNConfig `json:"knn"`

	// Limits contains per-call limits.
	Limits LimitsConfig `json:"limits"`

	// DuplicatePolicy selects how duplicate cells are pivoted.
	// Default: reject.
	DuplicatePolicy DuplicatePolicy `json:"duplicate_policy"`

	// FitTimeout bounds the data fetch performed by Engine.Fit.
	// Default: 2m.
	FitTimeout time.Duration `json:"fit_timeout"`
}

// KNNConfig contains configuration shared by the kNN recommenders.
type KNNConfig struct {
	// KNeighbors is the neighbor count for user-based CF.
	// Default: 5.
	KNeighbors int `json:"k_neighbors"`

	// MinSimilarity is the similarity floor. Entries must be strictly
	// greater to be kept.
	// Default: 0.1.
	MinSimilarity float64 `json:"min_sim"`

	// MinOverlap is the co-occurrence floor. The number of shared nonzero
	// positions must be strictly greater to be kept.
	// Default: 0.
	MinOverlap int `json:"min_overlap"`
}

// LimitsConfig contains per-call limits.
type LimitsConfig struct {
	// DefaultTopN is used when a request leaves TopN at zero.
	// Default: 5.
	DefaultTopN int `json:"default_top_n"`

	// MaxTopN caps the requested TopN.
	// Default: 100.
	MaxTopN int `json:"max_top_n"`
}

// DefaultKNNConfig returns the default kNN parameters.
func DefaultKNNConfig() KNNConfig {
	return KNNConfig{
		KNeighbors:    5,
		MinSimilarity: 0.1,
		MinOverlap:    0,
	}
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() *Config {
	return &Config{
		KNN: DefaultKNNConfig(),
		Limits: LimitsConfig{
			DefaultTopN: 5,
			MaxTopN:     100,
		},
		DuplicatePolicy: DuplicateReject,
		FitTimeout:      2 * time.Minute,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.KNN.Validate(); err != nil {
		return err
	}

	if c.Limits.DefaultTopN < 1 {
		return fmt.Errorf("limits.default_top_n must be positive, got %d", c.Limits.DefaultTopN)
	}
	if c.Limits.MaxTopN < c.Limits.DefaultTopN {
		return fmt.Errorf("limits.max_top_n must be >= limits.default_top_n, got %d < %d", c.Limits.MaxTopN, c.Limits.DefaultTopN)
	}

	if !c.DuplicatePolicy.Valid() {
		return fmt.Errorf("duplicate_policy must be %q or %q, got %q", DuplicateReject, DuplicateMean, c.DuplicatePolicy)
	}
	if c.FitTimeout <= 0 {
		return fmt.Errorf("fit_timeout must be positive, got %v", c.FitTimeout)
	}

	return nil
}

// Validate checks the kNN parameters.
func (k KNNConfig) Validate() error {
	if k.KNeighbors < 1 {
		return fmt.Errorf("knn.k_neighbors must be positive, got %d", k.KNeighbors)
	}
	if k.MinSimilarity < -1 || k.MinSimilarity > 1 {
		return fmt.Errorf("knn.min_sim must be in [-1, 1], got %f", k.MinSimilarity)
	}
	if k.MinOverlap < 0 {
		return fmt.Errorf("knn.min_overlap must be non-negative, got %d", k.MinOverlap)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs are value types.
	clone := *c
	return &clone
}

// MarshalJSON implements custom JSON marshaling for duration fields.
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal(&struct {
		*Alias
		FitTimeout string `json:"fit_timeout"`
	}{
		Alias:      (*Alias)(c),
		FitTimeout: c.FitTimeout.String(),
	})
}
