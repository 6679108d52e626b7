// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

/*
Package recommend implements Quill's embedding-based recommendation engine.

The Engine combines an embedding.Embedder, two vector indexes (posts and
users, so their ids never collide), a DataProvider for posts and
interactions, and a TagVectorStore holding one persisted vector per tag.

# Operations

  - SuggestTags: rank tags against new content; never fails, falls back to DefaultTags
  - SuggestTagsForPost: rank tags against an existing post
  - RecommendForUser: dominant-tag recommendations with a nearest-neighbor fallback
  - SearchContent / HybridSearch: content search, and content search concatenated
    with a search biased by the user's preferred tags
  - RelatedPosts: tag-overlap posts with a paginated user-recommendation fallback
  - UpdateUserEmbedding: fold a user's interactions into their vector
  - IndexPost / RemovePost / RebuildPostIndex: keep the post index in step with posts
  - EnsureTagVectors: embed and persist vectors for new tags
  - WeeklyDigest: render the titles of a user's top recommendations

# Errors

Collaborator errors are wrapped and returned as-is; nothing is retried.
Absence is never an error: an unknown user gets a fresh synthetic vector, a
user with no interactions is left unchanged, and empty indexes return empty
results. Tag suggestion alone swallows errors and returns the defaults.

# Example

	engine, err := recommend.NewEngine(recommend.DefaultConfig(), recommend.Dependencies{
	    Embedder: embedder,
	    Posts:    postIndex,
	    Users:    userIndex,
	    Data:     db,
	    Tags:     tagStore,
	}, logger)
	if err != nil {
	    return err
	}
	tags := engine.SuggestTags(ctx, draft.Content, 5)
*/
package recommend
