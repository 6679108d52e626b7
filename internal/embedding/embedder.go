// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package embedding

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/quill/internal/metrics"
)

// ErrEmbeddingFailed is returned when a vector could not be produced.
var ErrEmbeddingFailed = errors.New("embedding failed")

// Embedder generates a vector for a piece of text.
type Embedder interface {
	// Embed returns a vector of length Dimension() for text.
	Embed(text string) ([]float32, error)

	// Dimension returns the length of every vector produced.
	Dimension() int

	// Model identifies the embedding scheme, for logs.
	Model() string
}

// FallbackMode selects the behavior of FallbackEmbedder on failure.
type FallbackMode string

const (
	// FallbackError propagates the failure wrapped in ErrEmbeddingFailed.
	FallbackError FallbackMode = "error"

	// FallbackRandom substitutes a random vector with components in [0,1).
	FallbackRandom FallbackMode = "random"
)

// ParseFallbackMode converts a configuration string to a FallbackMode.
func ParseFallbackMode(s string) (FallbackMode, error) {
	switch FallbackMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", FallbackError:
		return FallbackError, nil
	case FallbackRandom:
		return FallbackRandom, nil
	default:
		return "", fmt.Errorf("unknown embedding fallback mode %q", s)
	}
}

// FallbackEmbedder applies a FallbackMode to another Embedder.
type FallbackEmbedder struct {
	inner  Embedder
	mode   FallbackMode
	logger zerolog.Logger
}

// NewFallbackEmbedder wraps inner.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewFallbackEmbedder(inner Embedder, mode FallbackMode, logger zerolog.Logger) *FallbackEmbedder {
	if mode == "" {
		mode = FallbackError
	}
	return &FallbackEmbedder{
		inner:  inner,
		mode:   mode,
		logger: logger.With().Str("component", "embedding").Str("model", inner.Model()).Logger(),
	}
}

// Embed delegates to the wrapped embedder and applies the fallback mode on error.
func (f *FallbackEmbedder) Embed(text string) ([]float32, error) {
	vec, err := f.inner.Embed(text)
	if err == nil && len(vec) != f.inner.Dimension() {
		err = fmt.Errorf("got %d components, want %d", len(vec), f.inner.Dimension())
	}
	if err == nil {
		return vec, nil
	}

	if f.mode != FallbackRandom {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}

	metrics.EmbeddingFallbacks.Inc()
	f.logger.Warn().Err(err).Int("text_len", len(text)).
		Msg("Embedding failed, substituting non-deterministic random vector")
	return randomVector(f.inner.Dimension()), nil
}

// Dimension returns the wrapped embedder's dimension.
func (f *FallbackEmbedder) Dimension() int { return f.inner.Dimension() }

// Model returns the wrapped embedder's model.
func (f *FallbackEmbedder) Model() string { return f.inner.Model() }

func randomVector(dim int) []float32 {
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = rand.Float32()
	}
	return vec
}
