// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

/*
Package vectorindex provides FlatIndex, an exact, in-memory nearest-neighbor
index keyed by int64 ids.

Queries scan every stored vector and rank by squared Euclidean distance.
That is the right trade for the corpus sizes Quill targets (thousands of
posts) and keeps the index free of native dependencies.

# Semantics

  - Add replaces any live entry for the same id. The replacement takes a
    fresh insertion position, so it ranks after older entries on exact ties.
  - Delete of an absent id is a no-op.
  - Query returns at most k ids ordered by ascending distance, ties broken by
    insertion order. An empty index yields an empty result.
  - Reconstruct returns a copy of the stored vector and false when absent.
  - Vectors of the wrong dimension are rejected with ErrDimensionMismatch.

The index is safe for concurrent use. Sequences such as "reconstruct, blend,
add" are not atomic; callers that update the same id from several goroutines
must serialize those flows themselves.

The index is not persisted. It is rebuilt from source text on start.
*/
package vectorindex
