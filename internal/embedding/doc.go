// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

// Package embedding turns text into fixed-dimension float32 vectors.
//
// HashEmbedder is the built-in, deterministic implementation: the same text
// and dimension always yield the same bytes, across calls and restarts. It is
// a stand-in for a learned model; anything satisfying Embedder can replace it.
//
// FallbackEmbedder wraps another Embedder and decides what happens when it
// fails. By default the failure is returned as ErrEmbeddingFailed. In
// FallbackRandom mode a random vector is substituted instead, which breaks
// determinism, so every substitution is logged and counted in
// quill_embedding_fallbacks_total.
package embedding
