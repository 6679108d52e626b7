// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

/*
Package metrics defines Quill's Prometheus instrumentation.

All collectors are registered on the default registry through promauto and
are exposed by the ops HTTP server at /metrics:

  - quill_index_entries / quill_index_operations_total: vector index size and mutations
  - quill_engine_operation_duration_seconds / quill_engine_operation_errors_total
  - quill_embedding_fallbacks_total: non-deterministic fallback vectors handed out
  - quill_tag_suggestion_fallbacks_total: suggestions degraded to the default tags
  - quill_user_vector_updates_total
  - quill_tag_vector_cache_{hits,misses}_total
  - duckdb_query_duration_seconds / duckdb_query_errors_total
  - quill_circuit_breaker_{state,requests_total,transitions_total}
  - quill_events_{published,processed,failed,malformed}_total
  - quill_http_{requests_total,request_duration_seconds,active_requests}: ops server traffic

Record* helpers keep label handling in one place:

	start := time.Now()
	ids, err := engine.SearchContent(ctx, q, 10)
	metrics.RecordEngineOperation("search_content", time.Since(start), err)
*/
package metrics
