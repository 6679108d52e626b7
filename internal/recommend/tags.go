// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/quill/internal/metrics"
	"github.com/tomtom215/quill/internal/similarity"
)

// SuggestTags returns up to maxTags tag names for content, most similar
// first. Short lists are padded with unused default tags. It never fails:
// any error degrades to the default tag list, which is logged and counted.
func (e *Engine) SuggestTags(ctx context.Context, content string, maxTags int) []string {
	start := time.Now()
	defer e.observe("suggest_tags", start, nil)

	if maxTags <= 0 {
		return []string{}
	}

	tags, reason, err := e.suggestTags(ctx, content, maxTags)
	if err == nil && reason == "" {
		return tags
	}

	metrics.TagSuggestionFallbacks.WithLabelValues(reason).Inc()
	if err != nil {
		e.logger.Warn().Err(err).Msg("tag suggestion failed, returning default tags")
	} else {
		e.logger.Debug().Str("reason", reason).Msg("returning default tags")
	}
	return e.defaultTags(maxTags)
}

// suggestTags returns the ranked suggestion, or a non-empty fallback reason.
func (e *Engine) suggestTags(ctx context.Context, content string, maxTags int) (tags []string, reason string, err error) {
	defer func() {
		if r := recover(); r != nil {
			tags, reason, err = nil, "error", fmt.Errorf("panic: %v", r)
		}
	}()

	vec, err := e.embed(content)
	if err != nil {
		return nil, "error", err
	}
	tagVectors, err := e.loadTagVectors(ctx)
	if err != nil {
		return nil, "error", err
	}
	if len(tagVectors) == 0 {
		return nil, "no_tag_vectors", nil
	}

	ranked := rankTags(vec, tagVectors)
	if len(ranked) > maxTags {
		ranked = ranked[:maxTags]
	}

	out := make([]string, 0, maxTags)
	for i := range ranked {
		out = append(out, ranked[i].name)
	}
	return e.padWithDefaults(out, maxTags), "", nil
}

func (e *Engine) defaultTags(maxTags int) []string {
	n := min(maxTags, len(e.config.DefaultTags))
	return append([]string(nil), e.config.DefaultTags[:n]...)
}

func (e *Engine) padWithDefaults(tags []string, maxTags int) []string {
	if len(tags) >= maxTags {
		return tags
	}
	present := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		present[t] = struct{}{}
	}
	for _, t := range e.config.DefaultTags {
		if len(tags) >= maxTags {
			break
		}
		if _, ok := present[t]; ok {
			continue
		}
		tags = append(tags, t)
		present[t] = struct{}{}
	}
	return tags
}

// SuggestTagsForPost ranks persisted tags against the vector of an existing
// post, embedding and indexing its content if needed. Unlike SuggestTags it
// reports errors and does not pad with defaults.
func (e *Engine) SuggestTagsForPost(ctx context.Context, postID int64, maxTags int) (tags []string, err error) {
	defer e.observe("suggest_tags_for_post", time.Now(), &err)

	vec, ok := e.posts.Reconstruct(postID)
	if !ok {
		found, err := e.resolvePosts(ctx, []int64{postID})
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("%w: %d", ErrPostNotFound, postID)
		}
		if vec, err = e.postVector(found[0]); err != nil {
			return nil, err
		}
	}

	tagVectors, err := e.loadTagVectors(ctx)
	if err != nil {
		return nil, err
	}
	ranked := rankTags(vec, tagVectors)
	if maxTags < 0 {
		maxTags = 0
	}
	if len(ranked) > maxTags {
		ranked = ranked[:maxTags]
	}

	tags = make([]string, len(ranked))
	for i := range ranked {
		tags[i] = ranked[i].name
	}
	return tags, nil
}

// EnsureTagVectors embeds and persists the names of tags that have no
// stored vector yet. It returns how many records were written.
func (e *Engine) EnsureTagVectors(ctx context.Context, tags []Tag) (created int, err error) {
	defer e.observe("ensure_tag_vectors", time.Now(), &err)

	if len(tags) == 0 {
		return 0, nil
	}

	existing, err := e.tags.FetchAllTagVectors(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch tag vectors: %w", err)
	}
	have := make(map[int64]struct{}, len(existing))
	for i := range existing {
		have[existing[i].TagID] = struct{}{}
	}

	for _, tag := range tags {
		if _, ok := have[tag.ID]; ok {
			continue
		}
		vec, err := e.embed(tag.Name)
		if err != nil {
			return created, fmt.Errorf("tag %q: %w", tag.Name, err)
		}
		text, err := similarity.Serialize(vec)
		if err != nil {
			return created, fmt.Errorf("tag %q: %w", tag.Name, err)
		}
		rec := TagVectorRecord{TagID: tag.ID, TagName: tag.Name, Vector: text}
		if err := e.tags.PersistTagVector(ctx, rec); err != nil {
			return created, fmt.Errorf("persist tag vector %d: %w", tag.ID, err)
		}
		have[tag.ID] = struct{}{}
		created++
	}

	if created > 0 {
		e.logger.Info().Int("created", created).Msg("tag vectors persisted")
	}
	return created, nil
}
