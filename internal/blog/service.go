// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

// Package blog implements the write side of the blogging platform: creating,
// editing, and deleting posts and recording member interactions, keeping the
// recommendation engine's indexes in step with the relational store.
package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/quill/internal/config"
	"github.com/tomtom215/quill/internal/database"
	"github.com/tomtom215/quill/internal/events"
	"github.com/tomtom215/quill/internal/recommend"
	"github.com/tomtom215/quill/internal/validation"
)

// Store is the relational persistence used by the write flows.
// *database.DB implements it.
type Store interface {
	CreatePost(ctx context.Context, np database.NewPost) (recommend.Post, error)
	UpdatePost(ctx context.Context, postID int64, title, content string) error
	DeletePost(ctx context.Context, postID int64) error
	IncrementViewCount(ctx context.Context, postID int64) error
	EnsureTags(ctx context.Context, names []string) ([]recommend.Tag, error)
	TagPost(ctx context.Context, postID int64, tagIDs ...int64) error
	ReplacePostTags(ctx context.Context, postID int64, tagIDs []int64) error
	RecordInteraction(ctx context.Context, in recommend.Interaction) error
	HasRecentInteraction(ctx context.Context, memberID, postID int64, action recommend.ActionKind, since time.Time) (bool, error)
	FetchPostsByIDs(ctx context.Context, ids []int64) ([]recommend.Post, error)
}

// ErrDuplicateInteraction is returned when the same member repeats the same
// action on the same post within the configured duplicate window.
var ErrDuplicateInteraction = errors.New("duplicate interaction")

// Recommender is the part of *recommend.Engine the write flows drive.
type Recommender interface {
	SuggestTags(ctx context.Context, content string, maxTags int) []string
	EnsureTagVectors(ctx context.Context, tags []recommend.Tag) (int, error)
	IndexPost(ctx context.Context, p recommend.Post) error
	RemovePost(postID int64) bool
	UpdateUserEmbedding(ctx context.Context, userID int64) error
	Config() *recommend.Config
}

// InteractionPublisher hands interaction events to the asynchronous learner.
type InteractionPublisher interface {
	PublishInteraction(ctx context.Context, evt *events.InteractionRecorded) error
}

// CreatePostInput is a new post. Tags may be empty, in which case tags are
// suggested from the content.
type CreatePostInput struct {
	MemberID int64    `validate:"gt=0"`
	Title    string   `validate:"required,max=200"`
	Content  string   `validate:"required"`
	Tags     []string `validate:"max=20,dive,max=50"`
}

// UpdatePostInput replaces a post's title and content. A nil Tags leaves
// the post's tags alone; a non-nil one, even empty, replaces them.
type UpdatePostInput struct {
	PostID  int64    `validate:"gt=0"`
	Title   string   `validate:"required,max=200"`
	Content string   `validate:"required"`
	Tags    []string `validate:"omitempty,max=20,dive,max=50"`
}

type interactionInput struct {
	MemberID int64                `validate:"gt=0"`
	PostID   int64                `validate:"gt=0"`
	Action   recommend.ActionKind `validate:"oneof=view like comment"`
}

// PostView is a stored post with its tag names.
type PostView struct {
	recommend.Post
	Tags []string `json:"tags"`
}

// Service runs the post and interaction write flows.
type Service struct {
	cfg       config.BlogConfig
	store     Store
	engine    Recommender
	publisher InteractionPublisher
	logger    zerolog.Logger
}

// NewService creates a Service. publisher may be nil, in which case user
// vectors are updated synchronously when an interaction is recorded.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(cfg *config.BlogConfig, store Store, engine Recommender, publisher InteractionPublisher, logger zerolog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("blog config is required")
	}
	if cfg.SuggestTagCount < 0 {
		return nil, fmt.Errorf("suggest tag count must be non-negative, got %d", cfg.SuggestTagCount)
	}
	if cfg.DuplicateWindow < 0 {
		return nil, fmt.Errorf("duplicate window must be non-negative, got %v", cfg.DuplicateWindow)
	}
	if store == nil {
		return nil, errors.New("store is required")
	}
	if engine == nil {
		return nil, errors.New("recommender is required")
	}
	return &Service{
		cfg:       *cfg,
		store:     store,
		engine:    engine,
		publisher: publisher,
		logger:    logger.With().Str("component", "blog").Logger(),
	}, nil
}

// CreatePost stores a post, tags it, and indexes its content.
//
// Tag vector and index failures are logged rather than returned: the post
// is already committed, and both are repaired by the next warm-up.
//
//nolint:gocritic // input passed by value for immutability
func (s *Service) CreatePost(ctx context.Context, in CreatePostInput) (*PostView, error) {
	if verr := validation.ValidateStruct(&in); verr != nil {
		return nil, verr
	}

	post, err := s.store.CreatePost(ctx, database.NewPost{
		MemberID:  in.MemberID,
		Title:     in.Title,
		Content:   in.Content,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	names := normalizeTagNames(in.Tags)
	if len(names) == 0 && s.cfg.SuggestTagCount > 0 {
		names = normalizeTagNames(s.engine.SuggestTags(ctx, in.Content, s.cfg.SuggestTagCount))
	}

	tags, err := s.store.EnsureTags(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("ensure tags for post %d: %w", post.ID, err)
	}
	tagIDs, tagNames := splitTags(tags)
	if len(tagIDs) > 0 {
		if err := s.store.TagPost(ctx, post.ID, tagIDs...); err != nil {
			return nil, fmt.Errorf("tag post %d: %w", post.ID, err)
		}
	}
	post.TagIDs = tagIDs

	if _, err := s.engine.EnsureTagVectors(ctx, tags); err != nil {
		s.logger.Warn().Err(err).Int64("post_id", post.ID).Msg("Failed to persist tag vectors")
	}
	if err := s.engine.IndexPost(ctx, post); err != nil {
		s.logger.Warn().Err(err).Int64("post_id", post.ID).Msg("Failed to index new post")
	}

	s.logger.Info().
		Int64("post_id", post.ID).
		Int64("member_id", post.MemberID).
		Strs("tags", tagNames).
		Msg("Post created")

	return &PostView{Post: post, Tags: tagNames}, nil
}

// UpdatePost replaces a post's text, re-links its tags when Tags is set,
// and re-embeds it. Tags no post uses any more are deleted by the store.
//
//nolint:gocritic // input passed by value for immutability
func (s *Service) UpdatePost(ctx context.Context, in UpdatePostInput) error {
	if verr := validation.ValidateStruct(&in); verr != nil {
		return verr
	}
	if err := s.store.UpdatePost(ctx, in.PostID, in.Title, in.Content); err != nil {
		return err
	}

	var tagIDs []int64
	if in.Tags != nil {
		tags, err := s.store.EnsureTags(ctx, normalizeTagNames(in.Tags))
		if err != nil {
			return fmt.Errorf("ensure tags for post %d: %w", in.PostID, err)
		}
		var tagNames []string
		tagIDs, tagNames = splitTags(tags)
		if err := s.store.ReplacePostTags(ctx, in.PostID, tagIDs); err != nil {
			return fmt.Errorf("replace tags of post %d: %w", in.PostID, err)
		}
		if _, err := s.engine.EnsureTagVectors(ctx, tags); err != nil {
			s.logger.Warn().Err(err).Int64("post_id", in.PostID).Msg("Failed to persist tag vectors")
		}
		s.logger.Info().Int64("post_id", in.PostID).Strs("tags", tagNames).Msg("Post tags replaced")
	}

	post := recommend.Post{ID: in.PostID, Title: in.Title, Content: in.Content, TagIDs: tagIDs}
	if err := s.engine.IndexPost(ctx, post); err != nil {
		s.logger.Warn().Err(err).Int64("post_id", in.PostID).Msg("Failed to re-index updated post")
	}
	return nil
}

// DeletePost removes a post with its tag links and interactions, then drops
// its vector. Tags left without posts are deleted by the store.
func (s *Service) DeletePost(ctx context.Context, postID int64) error {
	if postID <= 0 {
		return fmt.Errorf("%w: post id must be positive", validation.ErrValidation)
	}
	if err := s.store.DeletePost(ctx, postID); err != nil {
		return err
	}
	s.engine.RemovePost(postID)
	s.logger.Info().Int64("post_id", postID).Msg("Post deleted")
	return nil
}

// ViewPost counts a view and records it as an interaction. A repeat view
// inside the duplicate window still counts but is not recorded again.
func (s *Service) ViewPost(ctx context.Context, memberID, postID int64) error {
	in := interactionInput{MemberID: memberID, PostID: postID, Action: recommend.ActionView}
	if verr := validation.ValidateStruct(&in); verr != nil {
		return verr
	}
	if err := s.store.IncrementViewCount(ctx, postID); err != nil {
		return err
	}
	if err := s.record(ctx, in); err != nil && !errors.Is(err, ErrDuplicateInteraction) {
		return err
	}
	return nil
}

// RecordInteraction stores a member's action on an existing post and
// schedules a refresh of the member's vector.
func (s *Service) RecordInteraction(ctx context.Context, memberID, postID int64, action recommend.ActionKind) error {
	in := interactionInput{MemberID: memberID, PostID: postID, Action: action}
	if verr := validation.ValidateStruct(&in); verr != nil {
		return verr
	}

	posts, err := s.store.FetchPostsByIDs(ctx, []int64{postID})
	if err != nil {
		return fmt.Errorf("look up post %d: %w", postID, err)
	}
	if len(posts) == 0 {
		return fmt.Errorf("%w: %d", recommend.ErrPostNotFound, postID)
	}
	return s.record(ctx, in)
}

func (s *Service) record(ctx context.Context, in interactionInput) error {
	now := time.Now().UTC()
	if s.cfg.DuplicateWindow > 0 {
		dup, err := s.store.HasRecentInteraction(ctx, in.MemberID, in.PostID, in.Action, now.Add(-s.cfg.DuplicateWindow))
		if err != nil {
			return fmt.Errorf("check duplicate interaction: %w", err)
		}
		if dup {
			s.logger.Debug().
				Int64("member_id", in.MemberID).
				Int64("post_id", in.PostID).
				Str("action", string(in.Action)).
				Msg("Duplicate interaction ignored")
			return fmt.Errorf("%w: member %d %s post %d", ErrDuplicateInteraction, in.MemberID, in.Action, in.PostID)
		}
	}
	err := s.store.RecordInteraction(ctx, recommend.Interaction{
		MemberID:  in.MemberID,
		PostID:    in.PostID,
		Action:    in.Action,
		Weight:    s.engine.Config().Weights.For(in.Action),
		CreatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("record interaction: %w", err)
	}

	if s.publisher != nil {
		evt := events.NewInteractionRecorded(in.MemberID, in.PostID, in.Action, now)
		err := s.publisher.PublishInteraction(ctx, evt)
		if err == nil {
			return nil
		}
		s.logger.Warn().Err(err).
			Int64("member_id", in.MemberID).
			Msg("Publishing interaction failed, updating user vector inline")
	}

	if err := s.engine.UpdateUserEmbedding(ctx, in.MemberID); err != nil {
		return fmt.Errorf("update user %d: %w", in.MemberID, err)
	}
	return nil
}

func splitTags(tags []recommend.Tag) (ids []int64, names []string) {
	ids = make([]int64, len(tags))
	names = make([]string, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
		names[i] = t.Name
	}
	return ids, names
}

// normalizeTagNames trims names and drops empty and repeated ones,
// keeping first occurrences in order.
func normalizeTagNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
