// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/quill/internal/validation"
)

// RelatedPosts returns one page of posts related to req.PostID: other posts
// sharing a tag with it, by views. When there are none it falls back to the
// user's recommendations, minus the post itself.
func (e *Engine) RelatedPosts(ctx context.Context, req RelatedRequest) (page *RelatedPage, err error) {
	defer e.observe("related_posts", time.Now(), &err)

	if verr := validation.ValidateStruct(&req); verr != nil {
		return nil, verr
	}

	current, err := e.resolvePosts(ctx, []int64{req.PostID})
	if err != nil {
		return nil, err
	}
	if len(current) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrPostNotFound, req.PostID)
	}

	var candidates []Post
	if len(current[0].TagIDs) > 0 {
		related, err := e.data.FetchRelatedPosts(ctx, req.PostID)
		if err != nil {
			return nil, fmt.Errorf("fetch related posts: %w", err)
		}
		candidates = dedupePosts(related, req.PostID)
	}

	if len(candidates) == 0 {
		rec, err := e.RecommendForUser(ctx, req.UserID, e.config.RelatedCandidates)
		if err != nil {
			return nil, fmt.Errorf("fallback recommendation: %w", err)
		}
		candidates = dedupePosts(rec.Posts, req.PostID)
	}

	return paginate(candidates, req.Page, req.PageSize), nil
}

// dedupePosts keeps the first occurrence of each post, dropping exclude.
func dedupePosts(posts []Post, exclude int64) []Post {
	seen := map[int64]struct{}{exclude: {}}
	out := make([]Post, 0, len(posts))
	for i := range posts {
		if _, dup := seen[posts[i].ID]; dup {
			continue
		}
		seen[posts[i].ID] = struct{}{}
		out = append(out, posts[i])
	}
	return out
}

func paginate(posts []Post, page, pageSize int) *RelatedPage {
	start := min((page-1)*pageSize, len(posts))
	end := min(start+pageSize, len(posts))
	return &RelatedPage{
		Total:    len(posts),
		Page:     page,
		PageSize: pageSize,
		Posts:    append([]Post{}, posts[start:end]...),
	}
}
