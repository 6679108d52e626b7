// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/quill/internal/recommend"
)

// WarmupEngine is the part of *recommend.Engine the warm-up drives.
type WarmupEngine interface {
	RebuildPostIndex(ctx context.Context) (int, error)
	EnsureTagVectors(ctx context.Context, tags []recommend.Tag) (int, error)
}

// TagLister lists every tag. *database.DB implements it.
type TagLister interface {
	ListTags(ctx context.Context) ([]recommend.Tag, error)
}

// WarmupServiceConfig holds configuration for the warm-up service.
type WarmupServiceConfig struct {
	// OnStartup warms as soon as the service starts.
	OnStartup bool

	// RefreshInterval repeats the warm-up; zero disables it.
	RefreshInterval time.Duration

	// Timeout bounds one warm-up cycle. Zero means 10 minutes.
	Timeout time.Duration
}

// WarmupService fills the in-memory post index, which does not survive a
// restart, and persists vectors for tags that lack one.
type WarmupService struct {
	engine WarmupEngine
	tags   TagLister
	config WarmupServiceConfig
	logger zerolog.Logger
	name   string
}

// NewWarmupService creates a warm-up service. tags may be nil, in which
// case tag vectors are not seeded.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewWarmupService(engine WarmupEngine, tags TagLister, cfg WarmupServiceConfig, logger zerolog.Logger) *WarmupService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	return &WarmupService{
		engine: engine,
		tags:   tags,
		config: cfg,
		logger: logger.With().Str("service", "warmup").Logger(),
		name:   "warmup-service",
	}
}

// Serve implements suture.Service. Failed cycles are logged and retried on
// the next tick rather than restarting the service.
func (s *WarmupService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("on_startup", s.config.OnStartup).
		Dur("refresh_interval", s.config.RefreshInterval).
		Msg("warm-up service starting")

	if s.config.OnStartup {
		if err := s.Warm(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn().Err(err).Msg("initial warm-up failed")
		}
	}

	if s.config.RefreshInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("warm-up service shutting down")
			return ctx.Err()

		case <-ticker.C:
			if err := s.Warm(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled warm-up failed")
			}
		}
	}
}

// Warm runs one cycle: seed tag vectors, then rebuild the post index.
func (s *WarmupService) Warm(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	var seeded int
	if s.tags != nil {
		tags, err := s.tags.ListTags(ctx)
		if err != nil {
			return fmt.Errorf("list tags: %w", err)
		}
		if seeded, err = s.engine.EnsureTagVectors(ctx, tags); err != nil {
			return fmt.Errorf("seed tag vectors: %w", err)
		}
	}

	indexed, err := s.engine.RebuildPostIndex(ctx)
	if err != nil {
		return fmt.Errorf("rebuild post index: %w", err)
	}

	s.logger.Info().
		Int("posts_indexed", indexed).
		Int("tag_vectors_created", seeded).
		Dur("duration", time.Since(start)).
		Msg("warm-up complete")
	return nil
}

// String returns the service name for logging.
func (s *WarmupService) String() string {
	return s.name
}
