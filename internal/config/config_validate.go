// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package config

import (
	"fmt"
	"strings"
)

// Supported enum values.
const (
	FallbackModeError  = "error"
	FallbackModeRandom = "random"

	UserUpdateSequential   = "sequential"
	UserUpdateWeightedMean = "weighted_mean"

	TagStoreDuckDB = "duckdb"
	TagStoreBadger = "badger"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateEvents(); err != nil {
		return err
	}
	if err := c.validateBreaker(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if c.Blog.SuggestTagCount < 0 {
		return fmt.Errorf("BLOG_SUGGEST_TAG_COUNT must be non-negative, got %d", c.Blog.SuggestTagCount)
	}
	if c.Blog.DuplicateWindow < 0 {
		return fmt.Errorf("BLOG_DUPLICATE_WINDOW must be non-negative, got %v", c.Blog.DuplicateWindow)
	}
	return c.validateLogging()
}

func (c *Config) validateEmbedding() error {
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSION must be positive, got %d", c.Embedding.Dimension)
	}
	switch c.Embedding.FallbackMode {
	case FallbackModeError, FallbackModeRandom:
		return nil
	default:
		return fmt.Errorf("EMBEDDING_FALLBACK_MODE must be %q or %q, got %q",
			FallbackModeError, FallbackModeRandom, c.Embedding.FallbackMode)
	}
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	weights := map[string]float64{
		"RECOMMEND_VIEW_WEIGHT":    r.ViewWeight,
		"RECOMMEND_LIKE_WEIGHT":    r.LikeWeight,
		"RECOMMEND_COMMENT_WEIGHT": r.CommentWeight,
		"RECOMMEND_WEIGHT_SCALE":   r.WeightScale,
	}
	for name, w := range weights {
		if w < 0 || w > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %v", name, w)
		}
	}
	if r.ExtraTagCount < 0 {
		return fmt.Errorf("RECOMMEND_EXTRA_TAG_COUNT must be non-negative, got %d", r.ExtraTagCount)
	}
	if r.RelatedCandidates <= 0 {
		return fmt.Errorf("RECOMMEND_RELATED_CANDIDATES must be positive, got %d", r.RelatedCandidates)
	}
	if r.HybridPreferredTags < 0 {
		return fmt.Errorf("RECOMMEND_HYBRID_PREFERRED_TAGS must be non-negative, got %d", r.HybridPreferredTags)
	}
	if r.DigestSize <= 0 {
		return fmt.Errorf("RECOMMEND_DIGEST_SIZE must be positive, got %d", r.DigestSize)
	}
	if r.TagCacheSize < 0 {
		return fmt.Errorf("RECOMMEND_TAG_CACHE_SIZE must be non-negative, got %d", r.TagCacheSize)
	}
	switch r.UserUpdateMode {
	case UserUpdateSequential, UserUpdateWeightedMean:
		return nil
	default:
		return fmt.Errorf("RECOMMEND_USER_UPDATE_MODE must be %q or %q, got %q",
			UserUpdateSequential, UserUpdateWeightedMean, r.UserUpdateMode)
	}
}

func (c *Config) validateStorage() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	switch c.TagStore.Backend {
	case TagStoreDuckDB:
		return nil
	case TagStoreBadger:
		if !c.TagStore.InMemory && c.TagStore.Path == "" {
			return fmt.Errorf("TAG_STORE_PATH is required when TAG_STORE_BACKEND=badger")
		}
		return nil
	default:
		return fmt.Errorf("TAG_STORE_BACKEND must be %q or %q, got %q",
			TagStoreDuckDB, TagStoreBadger, c.TagStore.Backend)
	}
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Events.Topic) == "" {
		return fmt.Errorf("EVENTS_TOPIC is required when EVENTS_ENABLED=true")
	}
	if c.Events.BufferSize < 0 {
		return fmt.Errorf("EVENTS_BUFFER_SIZE must be non-negative, got %d", c.Events.BufferSize)
	}
	if c.Events.MaxRetries < 0 {
		return fmt.Errorf("EVENTS_MAX_RETRIES must be non-negative, got %d", c.Events.MaxRetries)
	}
	if strings.TrimSpace(c.Events.PoisonTopic) == "" || c.Events.PoisonTopic == c.Events.Topic {
		return fmt.Errorf("EVENTS_POISON_TOPIC must be set and differ from EVENTS_TOPIC")
	}
	return nil
}

func (c *Config) validateBreaker() error {
	if !c.Breaker.Enabled {
		return nil
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1], got %v", c.Breaker.FailureRatio)
	}
	if c.Breaker.Timeout <= 0 {
		return fmt.Errorf("BREAKER_TIMEOUT must be positive, got %v", c.Breaker.Timeout)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 0 and 65535, got %d", c.Server.Port)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}
