// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package recommend

import (
	"fmt"
	"time"
)

// UserUpdateMode selects how interactions are folded into a user vector.
type UserUpdateMode string

const (
	// UpdateSequential blends each interaction in fetch order:
	// u = (1-w)u + w p. The result depends on order.
	UpdateSequential UserUpdateMode = "sequential"

	// UpdateWeightedMean computes sum(w p) / sum(w) over all interactions
	// in one pass. The result does not depend on order.
	UpdateWeightedMean UserUpdateMode = "weighted_mean"
)

// DefaultDigestHeading is the first line of WeeklyDigest.
const DefaultDigestHeading = "이번 주 추천 게시글:"

// Config contains all configuration for the recommendation engine.
type Config struct {
	// DefaultTags are suggested when tag similarity is unavailable and pad
	// short suggestion lists. Order is significant.
	DefaultTags []string `json:"default_tags"`

	// Weights turns an interaction's action kind into a blend weight.
	Weights InteractionWeights `json:"weights"`

	// ExtraTagCount is how many runner-up tags may fill a short
	// recommendation list after the dominant tag.
	ExtraTagCount int `json:"extra_tag_count"`

	// RelatedCandidates is the number of user recommendations requested
	// when a post has no tag-related posts.
	RelatedCandidates int `json:"related_candidates"`

	// HybridPreferredTags is how many of the user's closest tags are
	// appended to a hybrid search query.
	HybridPreferredTags int `json:"hybrid_preferred_tags"`

	// HybridFallbackTerms are appended when the user's tags are unknown.
	HybridFallbackTerms []string `json:"hybrid_fallback_terms"`

	UserUpdateMode UserUpdateMode `json:"user_update_mode"`

	// TagCache holds decoded tag vectors keyed by tag id.
	TagCache CacheConfig `json:"tag_cache"`

	// Digest configures WeeklyDigest.
	Digest DigestConfig `json:"digest"`
}

// InteractionWeights are the base weights per action kind. The blend
// weight of an interaction is (view + like + comment) * Scale, where each
// term is the base weight if the action matches and 0 otherwise.
type InteractionWeights struct {
	View    float64 `json:"view"`
	Like    float64 `json:"like"`
	Comment float64 `json:"comment"`
	Scale   float64 `json:"scale"`
}

// For returns the blend weight of an action kind. Unknown kinds yield 0.
func (w InteractionWeights) For(kind ActionKind) float64 {
	var view, like, comment float64
	switch kind {
	case ActionView:
		view = w.View
	case ActionLike:
		like = w.Like
	case ActionComment:
		comment = w.Comment
	}
	return (view + like + comment) * w.Scale
}

// CacheConfig sizes the decoded tag vector cache.
type CacheConfig struct {
	Size int           `json:"size"`
	TTL  time.Duration `json:"ttl"` // 0 = never expire
}

// DigestConfig configures the weekly digest text.
type DigestConfig struct {
	Size    int    `json:"size"`
	Heading string `json:"heading"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		DefaultTags: []string{"ai", "머신러닝", "딥러닝", "Python", "데이터분석"},
		Weights: InteractionWeights{
			View:    0.1,
			Like:    0.3,
			Comment: 0.6,
			Scale:   0.1,
		},
		ExtraTagCount:       2,
		RelatedCandidates:   20,
		HybridPreferredTags: 1,
		HybridFallbackTerms: []string{"머신러닝"},
		UserUpdateMode:      UpdateSequential,
		TagCache: CacheConfig{
			Size: 1024,
			TTL:  0,
		},
		Digest: DigestConfig{
			Size:    5,
			Heading: DefaultDigestHeading,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	for name, w := range map[string]float64{
		"weights.view":    c.Weights.View,
		"weights.like":    c.Weights.Like,
		"weights.comment": c.Weights.Comment,
		"weights.scale":   c.Weights.Scale,
	} {
		if w < 0 || w > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %f", name, w)
		}
	}
	if c.ExtraTagCount < 0 {
		return fmt.Errorf("extra_tag_count must be non-negative, got %d", c.ExtraTagCount)
	}
	if c.RelatedCandidates < 1 {
		return fmt.Errorf("related_candidates must be positive, got %d", c.RelatedCandidates)
	}
	if c.HybridPreferredTags < 0 {
		return fmt.Errorf("hybrid_preferred_tags must be non-negative, got %d", c.HybridPreferredTags)
	}
	switch c.UserUpdateMode {
	case UpdateSequential, UpdateWeightedMean:
	default:
		return fmt.Errorf("user_update_mode must be %q or %q, got %q",
			UpdateSequential, UpdateWeightedMean, c.UserUpdateMode)
	}
	if c.TagCache.Size < 0 {
		return fmt.Errorf("tag_cache.size must be non-negative, got %d", c.TagCache.Size)
	}
	if c.Digest.Size < 1 {
		return fmt.Errorf("digest.size must be positive, got %d", c.Digest.Size)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.DefaultTags = append([]string(nil), c.DefaultTags...)
	out.HybridFallbackTerms = append([]string(nil), c.HybridFallbackTerms...)
	return &out
}
