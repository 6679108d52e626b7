// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/quill/internal/cache"
	"github.com/tomtom215/quill/internal/embedding"
	"github.com/tomtom215/quill/internal/metrics"
	"github.com/tomtom215/quill/internal/similarity"
)

// Engine produces tag suggestions, recommendations and search results from
// embeddings held in two vector indexes: one keyed by post id, one keyed by
// user id. It is safe for concurrent use, but updates to the same user
// should not run concurrently (see UpdateUserEmbedding).
type Engine struct {
	config *Config
	logger zerolog.Logger

	embedder embedding.Embedder
	posts    VectorIndex
	users    VectorIndex
	data     DataProvider
	tags     TagVectorStore

	// decoded tag vectors keyed by tag id; nil when disabled
	tagCache *cache.LRUCache[int64, []float32]
}

// Dependencies are the collaborators of an Engine.
type Dependencies struct {
	Embedder embedding.Embedder
	Posts    VectorIndex
	Users    VectorIndex
	Data     DataProvider
	Tags     TagVectorStore
}

// NewEngine creates a recommendation engine. All dependencies are required
// and both indexes must match the embedder dimension.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, deps Dependencies, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	switch {
	case deps.Data == nil:
		return nil, ErrNoDataProvider
	case deps.Embedder == nil:
		return nil, fmt.Errorf("embedder is required")
	case deps.Posts == nil || deps.Users == nil:
		return nil, fmt.Errorf("post and user indexes are required")
	case deps.Tags == nil:
		return nil, fmt.Errorf("tag vector store is required")
	}

	dim := deps.Embedder.Dimension()
	if deps.Posts.Dimension() != dim || deps.Users.Dimension() != dim {
		return nil, fmt.Errorf("index dimensions (posts %d, users %d) must match embedder dimension %d",
			deps.Posts.Dimension(), deps.Users.Dimension(), dim)
	}

	e := &Engine{
		config:   cfg.Clone(),
		logger:   logger.With().Str("component", "recommend").Logger(),
		embedder: deps.Embedder,
		posts:    deps.Posts,
		users:    deps.Users,
		data:     deps.Data,
		tags:     deps.Tags,
	}
	if cfg.TagCache.Size > 0 {
		e.tagCache = cache.NewLRUCache[int64, []float32](cfg.TagCache.Size, cfg.TagCache.TTL)
	}

	e.logger.Info().
		Str("model", deps.Embedder.Model()).
		Int("dimension", dim).
		Str("user_update_mode", string(cfg.UserUpdateMode)).
		Msg("recommendation engine ready")

	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// UserVector returns the current vector of userID, if any.
func (e *Engine) UserVector(userID int64) ([]float32, bool) {
	return e.users.Reconstruct(userID)
}

// observe records latency and failure of an operation. Use with defer and a
// named error result.
func (e *Engine) observe(operation string, start time.Time, err *error) {
	var opErr error
	if err != nil {
		opErr = *err
	}
	metrics.RecordEngineOperation(operation, time.Since(start), opErr)
}

func (e *Engine) embed(text string) ([]float32, error) {
	vec, err := e.embedder.Embed(text)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	return vec, nil
}

// tagVector is a decoded TagVectorRecord.
type tagVector struct {
	id   int64
	name string
	vec  []float32
}

// rankedTag is a tag scored against some vector.
type rankedTag struct {
	tagVector
	score float64
}

// loadTagVectors fetches every tag record and decodes it. Records that fail
// to decode or have the wrong dimension are skipped.
func (e *Engine) loadTagVectors(ctx context.Context) ([]tagVector, error) {
	records, err := e.tags.FetchAllTagVectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch tag vectors: %w", err)
	}

	out := make([]tagVector, 0, len(records))
	for i := range records {
		vec, ok := e.decodeTagVector(&records[i])
		if !ok {
			continue
		}
		out = append(out, tagVector{id: records[i].TagID, name: records[i].TagName, vec: vec})
	}
	return out, nil
}

func (e *Engine) decodeTagVector(rec *TagVectorRecord) ([]float32, bool) {
	if e.tagCache != nil {
		vec, ok := e.tagCache.Get(rec.TagID)
		metrics.RecordCacheLookup(ok)
		if ok {
			return vec, true
		}
	}

	vec, err := similarity.Deserialize(rec.Vector)
	if err != nil {
		e.logger.Warn().Err(err).Int64("tag_id", rec.TagID).Msg("skipping undecodable tag vector")
		return nil, false
	}
	if len(vec) != e.embedder.Dimension() {
		e.logger.Warn().
			Int64("tag_id", rec.TagID).
			Int("got", len(vec)).
			Int("want", e.embedder.Dimension()).
			Msg("skipping tag vector with wrong dimension")
		return nil, false
	}

	if e.tagCache != nil {
		e.tagCache.Add(rec.TagID, vec)
	}
	return vec, true
}

// rankTags scores tags against vec, highest first. Equal scores keep
// fetch order.
func rankTags(vec []float32, tags []tagVector) []rankedTag {
	ranked := make([]rankedTag, len(tags))
	for i := range tags {
		ranked[i] = rankedTag{tagVector: tags[i], score: similarity.Cosine(vec, tags[i].vec)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	return ranked
}

// resolvePosts loads the posts for ids, preserving the order of ids and
// dropping ids the data provider does not know.
func (e *Engine) resolvePosts(ctx context.Context, ids []int64) ([]Post, error) {
	if len(ids) == 0 {
		return []Post{}, nil
	}
	found, err := e.data.FetchPostsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch posts by ids: %w", err)
	}

	byID := make(map[int64]Post, len(found))
	for i := range found {
		byID[found[i].ID] = found[i]
	}
	out := make([]Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// postVector returns the indexed vector of p, embedding its content and
// caching it in the post index when absent.
//
//nolint:gocritic // Post passed by value; callers hold copies
func (e *Engine) postVector(p Post) ([]float32, error) {
	if vec, ok := e.posts.Reconstruct(p.ID); ok {
		return vec, nil
	}
	vec, err := e.embed(p.Content)
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", p.ID, err)
	}
	if err := e.posts.Add(p.ID, vec); err != nil {
		return nil, fmt.Errorf("index post %d: %w", p.ID, err)
	}
	return vec, nil
}

// postVectorByID is postVector for a bare id. Unknown posts are embedded
// from the synthetic text "post:<id>".
func (e *Engine) postVectorByID(ctx context.Context, postID int64) ([]float32, error) {
	if vec, ok := e.posts.Reconstruct(postID); ok {
		return vec, nil
	}

	found, err := e.data.FetchPostsByIDs(ctx, []int64{postID})
	if err != nil {
		return nil, fmt.Errorf("fetch post %d: %w", postID, err)
	}
	for i := range found {
		if found[i].ID == postID {
			return e.postVector(found[i])
		}
	}
	return e.postVector(Post{ID: postID, Content: fmt.Sprintf("post:%d", postID)})
}
