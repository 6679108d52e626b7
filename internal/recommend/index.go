// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package recommend

import (
	"context"
	"fmt"
	"time"
)

// IndexPost embeds the content of p and stores it as the post's vector,
// replacing any previous one. Call it when a post is created or edited.
//
//nolint:gocritic // Post passed by value for immutability
func (e *Engine) IndexPost(ctx context.Context, p Post) (err error) {
	defer e.observe("index_post", time.Now(), &err)

	if err := ctx.Err(); err != nil {
		return err
	}

	vec, err := e.embed(p.Content)
	if err != nil {
		return fmt.Errorf("post %d: %w", p.ID, err)
	}
	if err := e.posts.Add(p.ID, vec); err != nil {
		return fmt.Errorf("index post %d: %w", p.ID, err)
	}
	return nil
}

// RemovePost drops the post's vector. It reports whether one was indexed.
func (e *Engine) RemovePost(postID int64) bool {
	return e.posts.Delete(postID)
}

// RebuildPostIndex embeds every post known to the data provider. The post
// index lives only in memory, so this runs at start-up.
func (e *Engine) RebuildPostIndex(ctx context.Context) (indexed int, err error) {
	defer e.observe("rebuild_post_index", time.Now(), &err)

	posts, err := e.data.FetchAllPosts(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch all posts: %w", err)
	}

	for i := range posts {
		if err := ctx.Err(); err != nil {
			return indexed, err
		}
		vec, err := e.embed(posts[i].Content)
		if err != nil {
			return indexed, fmt.Errorf("post %d: %w", posts[i].ID, err)
		}
		if err := e.posts.Add(posts[i].ID, vec); err != nil {
			return indexed, fmt.Errorf("index post %d: %w", posts[i].ID, err)
		}
		indexed++
	}

	e.logger.Info().Int("posts", indexed).Msg("post index rebuilt")
	return indexed, nil
}
