// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/quill/internal/logging"
	"github.com/tomtom215/quill/internal/metrics"
)

// UserLearner refreshes a member's vector from their interaction history.
// *recommend.Engine satisfies it.
type UserLearner interface {
	UpdateUserEmbedding(ctx context.Context, userID int64) error
}

// InteractionHandler applies InteractionRecorded messages to a UserLearner.
type InteractionHandler struct {
	learner UserLearner
	logger  zerolog.Logger
}

// NewInteractionHandler creates a handler for learner.
func NewInteractionHandler(learner UserLearner, logger zerolog.Logger) (*InteractionHandler, error) {
	if learner == nil {
		return nil, fmt.Errorf("user learner required")
	}
	return &InteractionHandler{
		learner: learner,
		logger:  logger.With().Str("component", "interaction-handler").Logger(),
	}, nil
}

// Handle is a watermill.NoPublishHandlerFunc.
//
// Payloads that do not decode or validate are acknowledged, since
// redelivering them cannot succeed. Learner errors are returned so the
// router retries the message.
func (h *InteractionHandler) Handle(msg *message.Message) error {
	evt, err := decodeInteraction(msg.Payload)
	if err != nil {
		metrics.EventsMalformed.Inc()
		h.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed interaction event")
		return nil
	}

	ctx := msg.Context()
	if correlationID := middleware.MessageCorrelationID(msg); correlationID != "" {
		ctx = logging.ContextWithCorrelationID(ctx, correlationID)
	}

	if err := h.learner.UpdateUserEmbedding(ctx, evt.MemberID); err != nil {
		metrics.EventsFailed.Inc()
		h.logger.Error().Err(err).
			Str("event_id", evt.EventID).
			Int64("member_id", evt.MemberID).
			Msg("Failed to update user embedding")
		return fmt.Errorf("update user %d: %w", evt.MemberID, err)
	}

	metrics.EventsProcessed.Inc()
	h.logger.Debug().
		Str("event_id", evt.EventID).
		Int64("member_id", evt.MemberID).
		Int64("post_id", evt.PostID).
		Str("action", string(evt.Action)).
		Msg("Applied interaction event")
	return nil
}
