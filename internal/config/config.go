// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package config

import "time"

// Config holds all application configuration.
type Config struct {
	Embedding EmbeddingConfig `koanf:"embedding"`
	Recommend RecommendConfig `koanf:"recommend"`
	Database  DatabaseConfig  `koanf:"database"`
	TagStore  TagStoreConfig  `koanf:"tag_store"`
	Events    EventsConfig    `koanf:"events"`
	Breaker   BreakerConfig   `koanf:"breaker"`
	Server    ServerConfig    `koanf:"server"`
	Warmup    WarmupConfig    `koanf:"warmup"`
	Blog      BlogConfig      `koanf:"blog"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// EmbeddingConfig configures the text embedder.
type EmbeddingConfig struct {
	Dimension int `koanf:"dimension"`

	// FallbackMode selects what happens when embedding fails:
	// "error" propagates the failure, "random" substitutes a random vector.
	FallbackMode string `koanf:"fallback_mode"`
}

// RecommendConfig configures the recommendation engine.
type RecommendConfig struct {
	DefaultTags []string `koanf:"default_tags"`

	// Base weights per interaction kind. The blend weight of an interaction
	// is the sum of the weights of its flags times WeightScale.
	ViewWeight    float64 `koanf:"view_weight"`
	LikeWeight    float64 `koanf:"like_weight"`
	CommentWeight float64 `koanf:"comment_weight"`
	WeightScale   float64 `koanf:"weight_scale"`

	ExtraTagCount       int      `koanf:"extra_tag_count"`
	RelatedCandidates   int      `koanf:"related_candidates"`
	HybridPreferredTags int      `koanf:"hybrid_preferred_tags"`
	HybridFallbackTerms []string `koanf:"hybrid_fallback_terms"`

	// UserUpdateMode is "sequential" (exponential moving average in fetch
	// order) or "weighted_mean" (order independent).
	UserUpdateMode string `koanf:"user_update_mode"`

	TagCacheSize int           `koanf:"tag_cache_size"`
	TagCacheTTL  time.Duration `koanf:"tag_cache_ttl"`

	DigestSize int `koanf:"digest_size"`
}

// DatabaseConfig configures the DuckDB connection.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()
}

// TagStoreConfig selects where tag vectors are persisted.
type TagStoreConfig struct {
	Backend  string `koanf:"backend"` // duckdb or badger
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// EventsConfig configures the in-process interaction event pipeline.
type EventsConfig struct {
	Enabled      bool          `koanf:"enabled"`
	Topic        string        `koanf:"topic"`
	BufferSize   int64         `koanf:"buffer_size"`
	CloseTimeout time.Duration `koanf:"close_timeout"`

	// Failed handling is retried MaxRetries times, then the message is
	// moved to PoisonTopic.
	MaxRetries    int           `koanf:"max_retries"`
	RetryInterval time.Duration `koanf:"retry_interval"`
	PoisonTopic   string        `koanf:"poison_topic"`
}

// BreakerConfig configures the circuit breaker around the data provider.
type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// ServerConfig configures the ops HTTP server (/metrics, /healthz).
type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// WarmupConfig controls rebuilding the in-memory post index.
type WarmupConfig struct {
	OnStartup       bool          `koanf:"on_startup"`
	RefreshInterval time.Duration `koanf:"refresh_interval"` // 0 disables periodic refresh
}

// BlogConfig configures the post and interaction write flows.
type BlogConfig struct {
	// SuggestTagCount is how many tags a post created without tags receives.
	SuggestTagCount int `koanf:"suggest_tag_count"`

	// DuplicateWindow rejects a repeat of the same member, post, and action
	// recorded within this long. 0 disables the check.
	DuplicateWindow time.Duration `koanf:"duplicate_window"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load is an alias for LoadWithKoanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
