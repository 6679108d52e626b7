// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

// Package cache provides a generic, thread-safe LRU cache with optional TTL.
//
// The recommendation engine uses it to keep decoded tag vectors keyed by tag
// id so that JSON decoding happens once per tag rather than once per request.
package cache
