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
)

// UpdateUserEmbedding recomputes the vector of userID from all of the
// user's interactions and replaces it in the user index.
//
// Each interaction contributes its post's vector with the blend weight of
// its action kind; zero-weight interactions are skipped. In sequential mode
// the update starts from the current vector (zeros if absent) and blends
// u = (1-w)u + w p per interaction in fetch order. In weighted_mean mode the
// result is sum(w p) / sum(w), independent of order.
//
// A user with no interactions is left untouched. Concurrent updates of the
// same user race; callers must serialize them.
func (e *Engine) UpdateUserEmbedding(ctx context.Context, userID int64) (err error) {
	defer e.observe("update_user_embedding", time.Now(), &err)
	defer func() {
		if err != nil {
			metrics.UserVectorUpdates.WithLabelValues("error").Inc()
		}
	}()

	interactions, err := e.data.FetchInteractionsForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("fetch interactions: %w", err)
	}
	if len(interactions) == 0 {
		metrics.UserVectorUpdates.WithLabelValues("no_interactions").Inc()
		e.logger.Debug().Int64("user_id", userID).Msg("no interactions, user vector unchanged")
		return nil
	}

	dim := e.users.Dimension()
	current, ok := e.users.Reconstruct(userID)
	if !ok || len(current) != dim {
		current = make([]float32, dim)
	}

	var (
		updated []float32
		applied int
	)
	switch e.config.UserUpdateMode {
	case UpdateWeightedMean:
		updated, applied, err = e.weightedMean(ctx, current, interactions)
	default:
		updated, applied, err = e.sequentialBlend(ctx, current, interactions)
	}
	if err != nil {
		return err
	}

	if err := e.users.Add(userID, updated); err != nil {
		return fmt.Errorf("store user vector: %w", err)
	}

	metrics.UserVectorUpdates.WithLabelValues("updated").Inc()
	e.logger.Debug().
		Int64("user_id", userID).
		Int("interactions", len(interactions)).
		Int("applied", applied).
		Msg("user vector updated")
	return nil
}

func (e *Engine) sequentialBlend(ctx context.Context, u []float32, interactions []Interaction) ([]float32, int, error) {
	applied := 0
	for i := range interactions {
		w := e.config.Weights.For(interactions[i].Action)
		if w == 0 {
			continue
		}
		p, err := e.postVectorByID(ctx, interactions[i].PostID)
		if err != nil {
			return nil, 0, err
		}
		blend(u, p, w)
		applied++
	}
	return u, applied, nil
}

// blend sets u = (1-w)u + w p in place.
func blend(u, p []float32, w float64) {
	for i := range u {
		u[i] = float32((1-w)*float64(u[i]) + w*float64(p[i]))
	}
}

func (e *Engine) weightedMean(ctx context.Context, current []float32, interactions []Interaction) ([]float32, int, error) {
	sum := make([]float64, len(current))
	var total float64
	applied := 0
	for i := range interactions {
		w := e.config.Weights.For(interactions[i].Action)
		if w == 0 {
			continue
		}
		p, err := e.postVectorByID(ctx, interactions[i].PostID)
		if err != nil {
			return nil, 0, err
		}
		for j := range sum {
			sum[j] += w * float64(p[j])
		}
		total += w
		applied++
	}
	if total == 0 {
		return current, 0, nil
	}

	out := make([]float32, len(current))
	for j := range out {
		out[j] = float32(sum[j] / total)
	}
	return out, applied, nil
}
