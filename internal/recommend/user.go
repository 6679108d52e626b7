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

	"github.com/tomtom215/quill/internal/similarity"
)

// RecommendForUser recommends up to topN posts for userID.
//
// The user's vector is read from the user index, or created from the text
// "user:<id>" on first use. With no tag vectors persisted the posts are the
// nearest neighbors of the user vector in the post index. Otherwise the
// tag closest to the user (the dominant tag) supplies posts by views then
// recency, topped up from the next ExtraTagCount tags, and each post is
// scored against the dominant tag vector.
//
// An unavailable user vector yields an empty result, not an error.
func (e *Engine) RecommendForUser(ctx context.Context, userID int64, topN int) (rec *UserRecommendation, err error) {
	defer e.observe("recommend_for_user", time.Now(), &err)

	rec = &UserRecommendation{Posts: []Post{}}
	if topN <= 0 {
		return rec, nil
	}

	userVec, ok := e.userVectorOrCreate(userID)
	if !ok {
		return rec, nil
	}

	tagVectors, err := e.loadTagVectors(ctx)
	if err != nil {
		return nil, err
	}

	if len(tagVectors) == 0 {
		ids, err := e.posts.Query(userVec, topN)
		if err != nil {
			return nil, fmt.Errorf("query post index: %w", err)
		}
		if rec.Posts, err = e.resolvePosts(ctx, ids); err != nil {
			return nil, err
		}
		return rec, nil
	}

	ranked := rankTags(userVec, tagVectors)
	dominant := ranked[0]

	posts, err := e.postsForTags(ctx, ranked, topN)
	if err != nil {
		return nil, err
	}

	name, score := dominant.name, dominant.score
	rec.Posts = posts
	rec.TagName = &name
	rec.Similarity = &score
	rec.PostSimilarities = make([]*float64, len(posts))
	for i := range posts {
		vec, err := e.postVector(posts[i])
		if err != nil {
			e.logger.Debug().Err(err).Int64("post_id", posts[i].ID).Msg("post vector unavailable")
			continue
		}
		s := similarity.Cosine(vec, dominant.vec)
		rec.PostSimilarities[i] = &s
	}

	e.logger.Debug().
		Int64("user_id", userID).
		Str("tag", name).
		Float64("similarity", score).
		Int("posts", len(posts)).
		Msg("user recommendation complete")

	return rec, nil
}

// userVectorOrCreate returns the user's vector, creating and indexing the
// synthetic one when absent. ok is false when no vector can be produced.
func (e *Engine) userVectorOrCreate(userID int64) ([]float32, bool) {
	if vec, ok := e.users.Reconstruct(userID); ok {
		return vec, true
	}
	vec, err := e.embed(fmt.Sprintf("user:%d", userID))
	if err != nil {
		e.logger.Warn().Err(err).Int64("user_id", userID).Msg("user vector unavailable")
		return nil, false
	}
	if err := e.users.Add(userID, vec); err != nil {
		e.logger.Warn().Err(err).Int64("user_id", userID).Msg("user vector not indexed")
		return nil, false
	}
	return vec, true
}

// postsForTags collects up to topN posts from the dominant tag, then from
// the following ExtraTagCount tags, without duplicates.
func (e *Engine) postsForTags(ctx context.Context, ranked []rankedTag, topN int) ([]Post, error) {
	posts, err := e.data.FetchPostsByTag(ctx, ranked[0].id, PostQuery{Limit: topN})
	if err != nil {
		return nil, fmt.Errorf("fetch posts for tag %d: %w", ranked[0].id, err)
	}

	seen := make(map[int64]struct{}, topN)
	out := make([]Post, 0, topN)
	add := func(ps []Post) {
		for i := range ps {
			if len(out) >= topN {
				return
			}
			if _, dup := seen[ps[i].ID]; dup {
				continue
			}
			seen[ps[i].ID] = struct{}{}
			out = append(out, ps[i])
		}
	}
	add(posts)

	last := min(len(ranked), 1+e.config.ExtraTagCount)
	for _, tag := range ranked[1:last] {
		if len(out) >= topN {
			break
		}
		exclude := make([]int64, 0, len(out))
		for i := range out {
			exclude = append(exclude, out[i].ID)
		}
		more, err := e.data.FetchPostsByTag(ctx, tag.id, PostQuery{ExcludeIDs: exclude, Limit: topN - len(out)})
		if err != nil {
			return nil, fmt.Errorf("fetch posts for tag %d: %w", tag.id, err)
		}
		add(more)
	}
	return out, nil
}

// WeeklyDigest renders the digest heading followed by the titles of the
// user's top recommendations, one per line.
func (e *Engine) WeeklyDigest(ctx context.Context, userID int64) (digest string, err error) {
	defer e.observe("weekly_digest", time.Now(), &err)

	rec, err := e.RecommendForUser(ctx, userID, e.config.Digest.Size)
	if err != nil {
		return "", err
	}

	titles := make([]string, len(rec.Posts))
	for i := range rec.Posts {
		titles[i] = rec.Posts[i].Title
	}
	return e.config.Digest.Heading + "\n" + strings.Join(titles, "\n"), nil
}
