// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

/*
Package config provides centralized configuration management for Quill.

Configuration is loaded by LoadWithKoanf from three layers, later layers
overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: CONFIG_PATH, config.yaml, config.yml or /etc/quill/config.yaml
 3. Environment variables

# Environment Variables

Embedding:
  - EMBEDDING_DIMENSION: vector dimension (default: 768)
  - EMBEDDING_FALLBACK_MODE: error or random (default: error)

Recommendation:
  - RECOMMEND_DEFAULT_TAGS: comma-separated default tag list
  - RECOMMEND_VIEW_WEIGHT, RECOMMEND_LIKE_WEIGHT, RECOMMEND_COMMENT_WEIGHT: base interaction weights
  - RECOMMEND_WEIGHT_SCALE: scale applied to the summed base weights (default: 0.1)
  - RECOMMEND_EXTRA_TAG_COUNT: extra tags used to fill recommendations (default: 2)
  - RECOMMEND_RELATED_CANDIDATES: candidate count for the related-posts fallback (default: 20)
  - RECOMMEND_HYBRID_PREFERRED_TAGS: user tags appended to hybrid queries (default: 1)
  - RECOMMEND_HYBRID_FALLBACK_TERMS: comma-separated terms when no user tags are known
  - RECOMMEND_USER_UPDATE_MODE: sequential or weighted_mean (default: sequential)
  - RECOMMEND_TAG_CACHE_SIZE, RECOMMEND_TAG_CACHE_TTL: decoded tag vector cache

Storage:
  - DUCKDB_PATH, DUCKDB_MAX_MEMORY, DUCKDB_THREADS
  - TAG_STORE_BACKEND: duckdb or badger (default: duckdb)
  - TAG_STORE_PATH, TAG_STORE_IN_MEMORY: badger options

Events and resilience:
  - EVENTS_ENABLED, EVENTS_TOPIC, EVENTS_BUFFER_SIZE, EVENTS_CLOSE_TIMEOUT
  - EVENTS_MAX_RETRIES, EVENTS_RETRY_INTERVAL, EVENTS_POISON_TOPIC
  - BREAKER_ENABLED, BREAKER_MAX_REQUESTS, BREAKER_INTERVAL, BREAKER_TIMEOUT,
    BREAKER_MIN_REQUESTS, BREAKER_FAILURE_RATIO

Ops server and lifecycle:
  - HTTP_HOST, HTTP_PORT, HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT
  - WARMUP_ON_STARTUP, WARMUP_REFRESH_INTERVAL
  - BLOG_SUGGEST_TAG_COUNT, BLOG_DUPLICATE_WINDOW

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER
*/
package config
