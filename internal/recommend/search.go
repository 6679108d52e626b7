// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// SearchContent returns the ids of up to topN posts whose vectors are
// nearest to the embedding of query, nearest first. Ids in the index that
// no longer resolve to a post are dropped.
func (e *Engine) SearchContent(ctx context.Context, query string, topN int) (ids []int64, err error) {
	defer e.observe("search_content", time.Now(), &err)
	return e.searchContent(ctx, query, topN)
}

func (e *Engine) searchContent(ctx context.Context, query string, topN int) ([]int64, error) {
	if topN <= 0 {
		return []int64{}, nil
	}
	vec, err := e.embed(query)
	if err != nil {
		return nil, err
	}
	neighbors, err := e.posts.Query(vec, topN)
	if err != nil {
		return nil, fmt.Errorf("query post index: %w", err)
	}
	posts, err := e.resolvePosts(ctx, neighbors)
	if err != nil {
		return nil, err
	}

	out := make([]int64, len(posts))
	for i := range posts {
		out[i] = posts[i].ID
	}
	return out, nil
}

// HybridSearch concatenates two ranked lists: a content search for 2*topN
// posts, then a search for topN posts on query extended with the user's
// preferred tag names. Posts found by both searches appear twice.
func (e *Engine) HybridSearch(ctx context.Context, query string, userID int64, topN int) (ids []int64, err error) {
	defer e.observe("hybrid_search", time.Now(), &err)

	first, err := e.searchContent(ctx, query, 2*topN)
	if err != nil {
		return nil, fmt.Errorf("content search: %w", err)
	}

	terms, err := e.preferredTerms(ctx, userID)
	if err != nil {
		return nil, err
	}
	merged := strings.TrimSpace(query + " " + strings.Join(terms, " "))

	second, err := e.searchContent(ctx, merged, topN)
	if err != nil {
		return nil, fmt.Errorf("preference search: %w", err)
	}

	e.logger.Debug().
		Int64("user_id", userID).
		Strs("terms", terms).
		Int("content_hits", len(first)).
		Int("preference_hits", len(second)).
		Msg("hybrid search complete")

	return append(first, second...), nil
}

// preferredTerms returns the names of the HybridPreferredTags tags closest
// to the user's vector, or HybridFallbackTerms when the user has no vector
// or no tag vectors exist. It never creates a user vector.
func (e *Engine) preferredTerms(ctx context.Context, userID int64) ([]string, error) {
	fallback := e.config.HybridFallbackTerms
	if e.config.HybridPreferredTags == 0 {
		return fallback, nil
	}

	userVec, ok := e.users.Reconstruct(userID)
	if !ok {
		return fallback, nil
	}
	tagVectors, err := e.loadTagVectors(ctx)
	if err != nil {
		return nil, err
	}
	if len(tagVectors) == 0 {
		return fallback, nil
	}

	ranked := rankTags(userVec, tagVectors)
	n := min(len(ranked), e.config.HybridPreferredTags)
	terms := make([]string, n)
	for i := 0; i < n; i++ {
		terms[i] = ranked[i].name
	}
	return terms, nil
}
