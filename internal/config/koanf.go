// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/quill/config.yaml",
	"/etc/quill/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Dimension:    768,
			FallbackMode: FallbackModeError,
		},
		Recommend: RecommendConfig{
			DefaultTags:         []string{"ai", "머신러닝", "딥러닝", "Python", "데이터분석"},
			ViewWeight:          0.1,
			LikeWeight:          0.3,
			CommentWeight:       0.6,
			WeightScale:         0.1,
			ExtraTagCount:       2,
			RelatedCandidates:   20,
			HybridPreferredTags: 1,
			HybridFallbackTerms: []string{"머신러닝"},
			UserUpdateMode:      UserUpdateSequential,
			TagCacheSize:        1024,
			TagCacheTTL:         0, // tag vectors never change
			DigestSize:          5,
		},
		Database: DatabaseConfig{
			Path:      "/data/quill.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		TagStore: TagStoreConfig{
			Backend:  TagStoreDuckDB,
			Path:     "/data/tagvectors",
			InMemory: false,
		},
		Events: EventsConfig{
			Enabled:       true,
			Topic:         "quill.interactions.recorded",
			BufferSize:    256,
			CloseTimeout:  10 * time.Second,
			MaxRetries:    3,
			RetryInterval: 100 * time.Millisecond,
			PoisonTopic:   "quill.interactions.poison",
		},
		Breaker: BreakerConfig{
			Enabled:      true,
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			MinRequests:  5,
			FailureRatio: 0.6,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         9464,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Warmup: WarmupConfig{
			OnStartup:       true,
			RefreshInterval: 0,
		},
		Blog: BlogConfig{
			SuggestTagCount: 5,
			DuplicateWindow: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration with precedence ENV > file > defaults
// and validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// EMBEDDING_DIMENSION -> embedding.dimension
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when set via env.
var sliceConfigPaths = []string{
	"recommend.default_tags",
	"recommend.hybrid_fallback_terms",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	// Embedding
	"embedding_dimension":     "embedding.dimension",
	"embedding_fallback_mode": "embedding.fallback_mode",

	// Recommendation
	"recommend_default_tags":          "recommend.default_tags",
	"recommend_view_weight":           "recommend.view_weight",
	"recommend_like_weight":           "recommend.like_weight",
	"recommend_comment_weight":        "recommend.comment_weight",
	"recommend_weight_scale":          "recommend.weight_scale",
	"recommend_extra_tag_count":       "recommend.extra_tag_count",
	"recommend_related_candidates":    "recommend.related_candidates",
	"recommend_hybrid_preferred_tags": "recommend.hybrid_preferred_tags",
	"recommend_hybrid_fallback_terms": "recommend.hybrid_fallback_terms",
	"recommend_user_update_mode":      "recommend.user_update_mode",
	"recommend_tag_cache_size":        "recommend.tag_cache_size",
	"recommend_tag_cache_ttl":         "recommend.tag_cache_ttl",
	"recommend_digest_size":           "recommend.digest_size",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Tag store
	"tag_store_backend":   "tag_store.backend",
	"tag_store_path":      "tag_store.path",
	"tag_store_in_memory": "tag_store.in_memory",

	// Events
	"events_enabled":        "events.enabled",
	"events_topic":          "events.topic",
	"events_buffer_size":    "events.buffer_size",
	"events_close_timeout":  "events.close_timeout",
	"events_max_retries":    "events.max_retries",
	"events_retry_interval": "events.retry_interval",
	"events_poison_topic":   "events.poison_topic",

	// Circuit breaker
	"breaker_enabled":       "breaker.enabled",
	"breaker_max_requests":  "breaker.max_requests",
	"breaker_interval":      "breaker.interval",
	"breaker_timeout":       "breaker.timeout",
	"breaker_min_requests":  "breaker.min_requests",
	"breaker_failure_ratio": "breaker.failure_ratio",

	// Ops server
	"http_host":          "server.host",
	"http_port":          "server.port",
	"http_read_timeout":  "server.read_timeout",
	"http_write_timeout": "server.write_timeout",

	// Warm-up
	"warmup_on_startup":       "warmup.on_startup",
	"warmup_refresh_interval": "warmup.refresh_interval",

	// Blog
	"blog_suggest_tag_count": "blog.suggest_tag_count",
	"blog_duplicate_window":  "blog.duplicate_window",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps environment variable names to koanf paths.
// Unmapped variables return "" and are skipped so unrelated environment
// does not leak into the config.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
