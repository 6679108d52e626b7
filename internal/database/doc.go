// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

/*
Package database stores Quill's blog data in DuckDB and serves it to the
recommendation engine.

DB implements recommend.DataProvider (posts, tags and interactions) and
recommend.TagVectorStore (the tag_vectors table). Tag vector records are
written once: PersistTagVector never overwrites an existing row.

# Schema

  - posts: id, member_id, title, content, view_count, created_at
  - tags: id, name (unique)
  - post_tags: (post_id, tag_id) pairs
  - interactions: id, member_id, post_id, action, weight, created_at
  - tag_vectors: tag_id, tag_name, vector (JSON text), created_at

Ids come from DuckDB sequences. No foreign keys are declared; DeletePost
removes dependent rows itself.

# Resilience

CircuitBreakerProvider wraps any recommend.DataProvider with a
sony/gobreaker circuit breaker. An open circuit fails fast with
gobreaker.ErrOpenState. Nothing is retried.

# Testing

Tests use an in-memory database (Path ":memory:").
*/
package database
