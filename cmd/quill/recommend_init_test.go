// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package main

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/quill/internal/config"
	"github.com/tomtom215/quill/internal/recommend"
)

func TestBuildEngineConfig(t *testing.T) {
	rc := &config.RecommendConfig{
		DefaultTags:         []string{"go", "db"},
		ViewWeight:          0.2,
		LikeWeight:          0.4,
		CommentWeight:       0.8,
		WeightScale:         0.5,
		ExtraTagCount:       1,
		RelatedCandidates:   7,
		HybridPreferredTags: 2,
		HybridFallbackTerms: []string{"golang"},
		UserUpdateMode:      "weighted_mean",
		TagCacheSize:        16,
		TagCacheTTL:         time.Minute,
		DigestSize:          3,
	}

	cfg := buildEngineConfig(rc)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if len(cfg.DefaultTags) != 2 || cfg.DefaultTags[0] != "go" {
		t.Errorf("DefaultTags = %v", cfg.DefaultTags)
	}
	if got := cfg.Weights.For(recommend.ActionLike); got != 0.4*0.5 {
		t.Errorf("like weight = %v, want %v", got, 0.4*0.5)
	}
	if cfg.UserUpdateMode != recommend.UpdateWeightedMean {
		t.Errorf("UserUpdateMode = %q", cfg.UserUpdateMode)
	}
	if cfg.RelatedCandidates != 7 || cfg.HybridPreferredTags != 2 || cfg.ExtraTagCount != 1 {
		t.Errorf("counts = %+v", cfg)
	}
	if cfg.TagCache.Size != 16 || cfg.TagCache.TTL != time.Minute {
		t.Errorf("TagCache = %+v", cfg.TagCache)
	}
	if cfg.Digest.Size != 3 || cfg.Digest.Heading != recommend.DefaultDigestHeading {
		t.Errorf("Digest = %+v", cfg.Digest)
	}

	// The engine config must not alias the koanf slices.
	rc.DefaultTags[0] = "changed"
	if cfg.DefaultTags[0] != "go" {
		t.Error("DefaultTags aliases the source slice")
	}
}

func TestBuildEngineConfig_KeepsDefaultsForEmptyLists(t *testing.T) {
	cfg := buildEngineConfig(&config.RecommendConfig{
		ViewWeight: 0.1, LikeWeight: 0.3, CommentWeight: 0.6, WeightScale: 0.1,
		ExtraTagCount: 2, RelatedCandidates: 20, HybridPreferredTags: 1,
		UserUpdateMode: "sequential",
	})
	def := recommend.DefaultConfig()
	if len(cfg.DefaultTags) != len(def.DefaultTags) {
		t.Errorf("DefaultTags = %v, want %v", cfg.DefaultTags, def.DefaultTags)
	}
	if len(cfg.HybridFallbackTerms) != len(def.HybridFallbackTerms) {
		t.Errorf("HybridFallbackTerms = %v", cfg.HybridFallbackTerms)
	}
	if cfg.Digest.Size != def.Digest.Size {
		t.Errorf("Digest.Size = %d, want %d", cfg.Digest.Size, def.Digest.Size)
	}
}

func TestBuildEmbedder(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.EmbeddingConfig
		wantErr bool
	}{
		{"error mode", config.EmbeddingConfig{Dimension: 8, FallbackMode: "error"}, false},
		{"random mode", config.EmbeddingConfig{Dimension: 8, FallbackMode: "random"}, false},
		{"bad mode", config.EmbeddingConfig{Dimension: 8, FallbackMode: "zeros"}, true},
		{"bad dimension", config.EmbeddingConfig{Dimension: 0, FallbackMode: "error"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emb, err := buildEmbedder(&tt.cfg, zerolog.Nop())
			if (err != nil) != tt.wantErr {
				t.Fatalf("buildEmbedder() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && emb.Dimension() != tt.cfg.Dimension {
				t.Errorf("Dimension() = %d, want %d", emb.Dimension(), tt.cfg.Dimension)
			}
		})
	}
}

type noTags struct{}

func (noTags) FetchAllTagVectors(context.Context) ([]recommend.TagVectorRecord, error) {
	return nil, nil
}

func (noTags) PersistTagVector(context.Context, recommend.TagVectorRecord) error { return nil }

type noData struct{}

func (noData) FetchPostsByIDs(context.Context, []int64) ([]recommend.Post, error) { return nil, nil }
func (noData) FetchPostsByTag(context.Context, int64, recommend.PostQuery) ([]recommend.Post, error) {
	return nil, nil
}
func (noData) FetchRelatedPosts(context.Context, int64) ([]recommend.Post, error) { return nil, nil }
func (noData) FetchInteractionsForUser(context.Context, int64) ([]recommend.Interaction, error) {
	return nil, nil
}
func (noData) FetchAllPosts(context.Context) ([]recommend.Post, error) { return nil, nil }
func (noData) FetchLatestPosts(context.Context, int) ([]recommend.Post, error) {
	return nil, nil
}
func (noData) FetchTopViewedPosts(context.Context, int) ([]recommend.Post, error) {
	return nil, nil
}

func TestInitEngine(t *testing.T) {
	cfg := &config.Config{
		Embedding: config.EmbeddingConfig{Dimension: 32, FallbackMode: "error"},
		Recommend: config.RecommendConfig{
			ViewWeight: 0.1, LikeWeight: 0.3, CommentWeight: 0.6, WeightScale: 0.1,
			ExtraTagCount: 2, RelatedCandidates: 20, HybridPreferredTags: 1,
			UserUpdateMode: "sequential", TagCacheSize: 8,
		},
	}
	engine, err := initEngine(cfg, noData{}, noTags{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("initEngine: %v", err)
	}
	tags := engine.SuggestTags(context.Background(), "anything", 3)
	if len(tags) != 3 {
		t.Errorf("SuggestTags = %v, want 3 default tags", tags)
	}
}
