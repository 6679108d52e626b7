// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/quill/internal/config"
	"github.com/tomtom215/quill/internal/embedding"
	"github.com/tomtom215/quill/internal/recommend"
	"github.com/tomtom215/quill/internal/vectorindex"
)

// buildEngineConfig maps the flat koanf settings onto the engine config.
func buildEngineConfig(rc *config.RecommendConfig) *recommend.Config {
	cfg := recommend.DefaultConfig()

	if len(rc.DefaultTags) > 0 {
		cfg.DefaultTags = append([]string(nil), rc.DefaultTags...)
	}
	cfg.Weights = recommend.InteractionWeights{
		View:    rc.ViewWeight,
		Like:    rc.LikeWeight,
		Comment: rc.CommentWeight,
		Scale:   rc.WeightScale,
	}
	cfg.ExtraTagCount = rc.ExtraTagCount
	cfg.RelatedCandidates = rc.RelatedCandidates
	cfg.HybridPreferredTags = rc.HybridPreferredTags
	if len(rc.HybridFallbackTerms) > 0 {
		cfg.HybridFallbackTerms = append([]string(nil), rc.HybridFallbackTerms...)
	}
	cfg.UserUpdateMode = recommend.UserUpdateMode(rc.UserUpdateMode)
	cfg.TagCache = recommend.CacheConfig{Size: rc.TagCacheSize, TTL: rc.TagCacheTTL}
	if rc.DigestSize > 0 {
		cfg.Digest.Size = rc.DigestSize
	}
	return cfg
}

// buildEmbedder returns the hash embedder wrapped in the configured
// fallback policy.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func buildEmbedder(ec *config.EmbeddingConfig, logger zerolog.Logger) (embedding.Embedder, error) {
	hash, err := embedding.NewHashEmbedder(ec.Dimension, nil)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	mode, err := embedding.ParseFallbackMode(ec.FallbackMode)
	if err != nil {
		return nil, err
	}
	return embedding.NewFallbackEmbedder(hash, mode, logger), nil
}

// initEngine builds the embedder, both indexes, and the engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func initEngine(cfg *config.Config, data recommend.DataProvider, tags recommend.TagVectorStore, logger zerolog.Logger) (*recommend.Engine, error) {
	embedder, err := buildEmbedder(&cfg.Embedding, logger)
	if err != nil {
		return nil, err
	}

	posts, err := vectorindex.New("posts", embedder.Dimension())
	if err != nil {
		return nil, err
	}
	users, err := vectorindex.New("users", embedder.Dimension())
	if err != nil {
		return nil, err
	}

	return recommend.NewEngine(buildEngineConfig(&cfg.Recommend), recommend.Dependencies{
		Embedder: embedder,
		Posts:    posts,
		Users:    users,
		Data:     data,
		Tags:     tags,
	}, logger)
}
