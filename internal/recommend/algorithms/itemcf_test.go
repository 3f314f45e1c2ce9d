// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package algorithms

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/tomtom215/wayfinder/internal/recommend"
)

func openKNNConfig() recommend.KNNConfig {
	return recommend.KNNConfig{KNeighbors: 5, MinSimilarity: 0, MinOverlap: 0}
}

func TestNewItemBasedCF(t *testing.T) {
	tests := []struct {
		name   string
		cfg    recommend.KNNConfig
		policy recommend.DuplicatePolicy
		verify func(t *testing.T, ib *ItemBasedCF)
	}{
		{
			name: "applies defaults for zero config",
			verify: func(t *testing.T, ib *ItemBasedCF) {
				if ib.config.KNeighbors != 5 {
					t.Errorf("KNeighbors = %d, want 5", ib.config.KNeighbors)
				}
				if ib.policy != recommend.DuplicateReject {
					t.Errorf("policy = %q, want %q", ib.policy, recommend.DuplicateReject)
				}
			},
		},
		{
			name:   "uses provided config values",
			cfg:    recommend.KNNConfig{KNeighbors: 20, MinSimilarity: 0.3, MinOverlap: 2},
			policy: recommend.DuplicateMean,
			verify: func(t *testing.T, ib *ItemBasedCF) {
				if ib.config.MinSimilarity != 0.3 {
					t.Errorf("MinSimilarity = %f, want 0.3", ib.config.MinSimilarity)
				}
				if ib.config.MinOverlap != 2 {
					t.Errorf("MinOverlap = %d, want 2", ib.config.MinOverlap)
				}
				if ib.policy != recommend.DuplicateMean {
					t.Errorf("policy = %q, want %q", ib.policy, recommend.DuplicateMean)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ib := NewItemBasedCF(tt.cfg, tt.policy, zerolog.Nop())
			if ib == nil {
				t.Fatal("NewItemBasedCF() returned nil")
			}
			if ib.Name() != "itemcf" {
				t.Errorf("Name() = %q, want %q", ib.Name(), "itemcf")
			}
			if ib.IsFitted() {
				t.Error("IsFitted() = true before Fit")
			}
			tt.verify(t, ib)
		})
	}
}

func TestItemBasedCF_Fit(t *testing.T) {
	tests := []struct {
		name         string
		interactions []recommend.Interaction
		wantReady    bool
		wantErr      error
	}{
		{
			name:         "empty interactions leave the model unfit",
			interactions: nil,
			wantErr:      recommend.ErrEmptyInput,
		},
		{
			name: "ambiguous duplicates leave the model unfit",
			interactions: []recommend.Interaction{
				{UserID: "U1", ItemID: "I1", ItemType: "Trip", Weight: 1},
				{UserID: "U1", ItemID: "I1", ItemType: "Trip", Weight: 2},
			},
			wantErr: recommend.ErrAmbiguousPivot,
		},
		{
			name:         "fits scenario data",
			interactions: scenarioInteractions(),
			wantReady:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ib := NewItemBasedCF(openKNNConfig(), recommend.DuplicateReject, zerolog.Nop())

			res := ib.Fit(context.Background(), tt.interactions)
			if res.Ready() != tt.wantReady {
				t.Fatalf("Fit().Ready() = %v, want %v (reason %q)", res.Ready(), tt.wantReady, res.Reason)
			}
			if ib.IsFitted() != tt.wantReady {
				t.Errorf("IsFitted() = %v, want %v", ib.IsFitted(), tt.wantReady)
			}
			if tt.wantErr != nil {
				if !errors.Is(res.Err, tt.wantErr) {
					t.Errorf("Fit().Err = %v, want %v", res.Err, tt.wantErr)
				}
				if res.Reason == "" {
					t.Error("Fit().Reason is empty for an unfit result")
				}
				return
			}
			if res.Users != 2 || res.Items != 3 {
				t.Errorf("Fit() = %d users, %d items; want 2, 3", res.Users, res.Items)
			}
			if res.Version != 1 {
				t.Errorf("Fit().Version = %d, want 1", res.Version)
			}
			if ib.LastFittedAt().IsZero() {
				t.Error("LastFittedAt() is zero after a successful fit")
			}
		})
	}
}

func TestItemBasedCF_FailedRefitClearsModel(t *testing.T) {
	ib := NewItemBasedCF(openKNNConfig(), recommend.DuplicateReject, zerolog.Nop())
	ctx := context.Background()

	if res := ib.Fit(ctx, scenarioInteractions()); !res.Ready() {
		t.Fatalf("Fit() reason = %q", res.Reason)
	}
	if res := ib.Fit(ctx, nil); res.Ready() {
		t.Fatal("Fit(nil).Ready() = true")
	}
	if ib.IsFitted() {
		t.Error("IsFitted() = true after a failed refit")
	}
	if ib.Version() != 1 {
		t.Errorf("Version() = %d, want 1", ib.Version())
	}

	result := ib.Recommend(ctx, recommend.Request{UserID: "U1", TopN: 3})
	if !errors.Is(result.Err, recommend.ErrNotFitted) {
		t.Errorf("Recommend().Err = %v, want %v", result.Err, recommend.ErrNotFitted)
	}
}

func TestItemBasedCF_Recommend(t *testing.T) {
	ctx := context.Background()
	ib := NewItemBasedCF(openKNNConfig(), recommend.DuplicateReject, zerolog.Nop())
	if res := ib.Fit(ctx, scenarioInteractions()); !res.Ready() {
		t.Fatalf("Fit() reason = %q", res.Reason)
	}

	t.Run("ranks the unseen item by propagated similarity", func(t *testing.T) {
		result := ib.Recommend(ctx, recommend.Request{UserID: "U1", TopN: 1, ItemType: "Trip"})
		if result.Status != recommend.StatusReady {
			t.Fatalf("Status = %v, reason %q", result.Status, result.Reason)
		}
		if len(result.Recommendations) != 1 {
			t.Fatalf("len(Recommendations) = %d, want 1", len(result.Recommendations))
		}
		rec := result.Recommendations[0]
		if rec.ItemID != "I3" || rec.Rank != 1 || rec.Name != "Coast Ride" {
			t.Errorf("Recommendations[0] = %+v, want I3 ranked 1", rec)
		}
		// 5 * sim(I1, I3) with sim(I1, I3) = 20 / (sqrt(41) * 5).
		want := 5 * 4 / math.Sqrt(41)
		if math.Abs(rec.Score-want) > epsilon {
			t.Errorf("Score = %v, want %v", rec.Score, want)
		}
	})

	t.Run("never recommends seen items", func(t *testing.T) {
		result := ib.Recommend(ctx, recommend.Request{UserID: "U2", TopN: 10})
		for _, rec := range result.Recommendations {
			if rec.ItemID == "I1" || rec.ItemID == "I3" {
				t.Errorf("recommended seen item %s", rec.ItemID)
			}
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		result := ib.Recommend(ctx, recommend.Request{UserID: "nonexistent-user", TopN: 3})
		if result.Recommendations == nil || len(result.Recommendations) != 0 {
			t.Errorf("Recommendations = %v, want empty non-nil slice", result.Recommendations)
		}
		if !errors.Is(result.Err, recommend.ErrUnknownUser) {
			t.Errorf("Err = %v, want %v", result.Err, recommend.ErrUnknownUser)
		}
		if result.Status != recommend.StatusUnfit {
			t.Errorf("Status = %v, want unfit", result.Status)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		result := ib.Recommend(canceled, recommend.Request{UserID: "U1", TopN: 3})
		if !errors.Is(result.Err, context.Canceled) {
			t.Errorf("Err = %v, want %v", result.Err, context.Canceled)
		}
	})
}

func TestFit_AllZeroWeights(t *testing.T) {
	interactions := []recommend.Interaction{
		{UserID: "U1", ItemID: "I1", ItemType: "Trip", Name: "Alps Hike", Weight: 0},
		{UserID: "U2", ItemID: "I2", ItemType: "Trip", Name: "City Walk", Weight: 0},
	}

	tests := []struct {
		name string
		rec  recommend.Recommender
	}{
		{name: "itemcf", rec: NewItemBasedCF(openKNNConfig(), recommend.DuplicateReject, zerolog.Nop())},
		{name: "usercf", rec: NewUserBasedCF(openKNNConfig(), recommend.DuplicateReject, zerolog.Nop())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if res := tt.rec.Fit(ctx, interactions); !res.Ready() {
				t.Fatalf("Fit() reason = %q, want ready", res.Reason)
			}

			result := tt.rec.Recommend(ctx, recommend.Request{UserID: "U1", TopN: 5})
			if result.Status != recommend.StatusReady {
				t.Fatalf("Status = %v, reason %q", result.Status, result.Reason)
			}
			if len(result.Recommendations) != 2 {
				t.Fatalf("len(Recommendations) = %d, want 2", len(result.Recommendations))
			}
			for i, want := range []string{"I1", "I2"} {
				rec := result.Recommendations[i]
				if rec.ItemID != want || rec.Score != 0 || rec.Rank != i+1 {
					t.Errorf("Recommendations[%d] = %+v, want %s at score 0", i, rec, want)
				}
			}
		})
	}
}

func TestItemBasedCF_RecommendBeforeFit(t *testing.T) {
	ib := NewItemBasedCF(openKNNConfig(), recommend.DuplicateReject, zerolog.Nop())

	result := ib.Recommend(context.Background(), recommend.Request{UserID: "U1", TopN: 3})
	if len(result.Recommendations) != 0 {
		t.Errorf("len(Recommendations) = %d, want 0", len(result.Recommendations))
	}
	if !errors.Is(result.Err, recommend.ErrNotFitted) {
		t.Errorf("Err = %v, want %v", result.Err, recommend.ErrNotFitted)
	}
}

func TestItemBasedCF_Deterministic(t *testing.T) {
	ctx := context.Background()
	interactions := append(scenarioInteractions(),
		recommend.Interaction{UserID: "U3", ItemID: "I2", ItemType: "Trip", Weight: 2},
		recommend.Interaction{UserID: "U3", ItemID: "I4", ItemType: "Event", Weight: 1},
		recommend.Interaction{UserID: "U3", ItemID: "I5", ItemType: "Event", Weight: 1},
	)

	var first recommend.Result
	for i := 0; i < 3; i++ {
		ib := NewItemBasedCF(openKNNConfig(), recommend.DuplicateReject, zerolog.Nop())
		ib.Fit(ctx, interactions)
		got := ib.Recommend(ctx, recommend.Request{UserID: "U1", TopN: 5})
		if i == 0 {
			first = got
			continue
		}
		if !reflect.DeepEqual(first, got) {
			t.Fatalf("run %d = %+v, want %+v", i, got, first)
		}
	}
}

func TestItemBasedCF_ConcurrentRecommendDuringFit(t *testing.T) {
	ctx := context.Background()
	ib := NewItemBasedCF(openKNNConfig(), recommend.DuplicateReject, zerolog.Nop())
	ib.Fit(ctx, scenarioInteractions())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ib.Fit(ctx, scenarioInteractions())
		}()
		go func() {
			defer wg.Done()
			result := ib.Recommend(ctx, recommend.Request{UserID: "U1", TopN: 3})
			for j, rec := range result.Recommendations {
				if rec.Rank != j+1 {
					t.Errorf("Rank = %d, want %d", rec.Rank, j+1)
				}
			}
		}()
	}
	wg.Wait()

	if ib.Version() != 5 {
		t.Errorf("Version() = %d, want 5", ib.Version())
	}
}
