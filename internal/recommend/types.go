// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package recommend

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrPostNotFound is returned when an operation targets a post the data provider does not know.
	ErrPostNotFound = errors.New("post not found")

	// ErrNoDataProvider is returned by NewEngine when a required collaborator is missing.
	ErrNoDataProvider = errors.New("data provider is required")
)

// ActionKind is the kind of a user interaction with a post.
type ActionKind string

const (
	ActionView    ActionKind = "view"
	ActionLike    ActionKind = "like"
	ActionComment ActionKind = "comment"
)

// Valid reports whether k is a known action kind.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionView, ActionLike, ActionComment:
		return true
	default:
		return false
	}
}

// Post is a blog post as seen by the engine.
type Post struct {
	ID        int64     `json:"id"`
	MemberID  int64     `json:"member_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ViewCount int64     `json:"view_count"`
	CreatedAt time.Time `json:"created_at"`
	TagIDs    []int64   `json:"tag_ids,omitempty"`
}

// Tag is a named label attached to posts.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Interaction records a member acting on a post. Weight is carried from the
// source record; blend weights are derived from Action alone.
type Interaction struct {
	MemberID  int64      `json:"member_id"`
	PostID    int64      `json:"post_id"`
	Action    ActionKind `json:"action"`
	Weight    float64    `json:"weight"`
	CreatedAt time.Time  `json:"created_at"`
}

// TagVectorRecord is the persisted embedding of a tag name. Vector is the
// textual form produced by similarity.Serialize. Records are written once.
type TagVectorRecord struct {
	TagID   int64  `json:"tag_id"`
	TagName string `json:"tag_name"`
	Vector  string `json:"vector"`
}

// PostQuery narrows FetchPostsByTag.
type PostQuery struct {
	ExcludeIDs []int64
	Limit      int // 0 = no limit
}

// DataProvider is the read side of the blog's relational store.
type DataProvider interface {
	// FetchPostsByIDs returns the posts among ids that exist, in any order.
	FetchPostsByIDs(ctx context.Context, ids []int64) ([]Post, error)

	// FetchPostsByTag returns posts carrying tagID ordered by view count
	// then creation time, both descending.
	FetchPostsByTag(ctx context.Context, tagID int64, q PostQuery) ([]Post, error)

	// FetchRelatedPosts returns other posts sharing at least one tag with
	// postID, ordered by view count descending. A post may appear more than once.
	FetchRelatedPosts(ctx context.Context, postID int64) ([]Post, error)

	// FetchInteractionsForUser returns every interaction of the member.
	FetchInteractionsForUser(ctx context.Context, userID int64) ([]Interaction, error)

	// FetchAllPosts returns every post, used to rebuild the post index.
	FetchAllPosts(ctx context.Context) ([]Post, error)

	// FetchLatestPosts returns up to limit posts, newest first.
	FetchLatestPosts(ctx context.Context, limit int) ([]Post, error)

	// FetchTopViewedPosts returns up to limit posts, most viewed first.
	FetchTopViewedPosts(ctx context.Context, limit int) ([]Post, error)
}

// TagVectorStore persists tag embeddings.
type TagVectorStore interface {
	// FetchAllTagVectors returns every record in a stable order.
	FetchAllTagVectors(ctx context.Context) ([]TagVectorRecord, error)

	// PersistTagVector stores rec unless a record for rec.TagID exists.
	PersistTagVector(ctx context.Context, rec TagVectorRecord) error
}

// VectorIndex is the id-addressable nearest-neighbor index the engine
// reads and writes. vectorindex.FlatIndex implements it.
type VectorIndex interface {
	Add(id int64, vec []float32) error
	Delete(id int64) bool
	Query(vec []float32, k int) ([]int64, error)
	Reconstruct(id int64) ([]float32, bool)
	Dimension() int
	Len() int
}

// UserRecommendation is the result of RecommendForUser.
//
// When tag vectors exist, TagName and Similarity describe the dominant tag
// and PostSimilarities holds one entry per post (nil where a vector was
// unavailable). Without tag vectors the posts come from a nearest-neighbor
// query and the three fields are nil.
type UserRecommendation struct {
	Posts            []Post     `json:"posts"`
	TagName          *string    `json:"tag_name"`
	Similarity       *float64   `json:"similarity"`
	PostSimilarities []*float64 `json:"post_similarities,omitempty"`
}

// PostIDs returns the ids of Posts in order.
func (r *UserRecommendation) PostIDs() []int64 {
	ids := make([]int64, len(r.Posts))
	for i := range r.Posts {
		ids[i] = r.Posts[i].ID
	}
	return ids
}

// RelatedRequest asks for one page of posts related to PostID.
type RelatedRequest struct {
	PostID   int64 `validate:"gt=0"`
	UserID   int64 `validate:"gt=0"`
	Page     int   `validate:"gte=1"`
	PageSize int   `validate:"gte=1,lte=100"`
}

// RelatedPage is one page of related posts. Total counts all candidates.
type RelatedPage struct {
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Posts    []Post `json:"posts"`
}
