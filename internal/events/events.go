// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/quill/internal/recommend"
	"github.com/tomtom215/quill/internal/validation"
)

// InteractionRecorded is published after an interaction row is committed.
type InteractionRecorded struct {
	EventID    string               `json:"event_id" validate:"required"`
	MemberID   int64                `json:"member_id" validate:"gt=0"`
	PostID     int64                `json:"post_id" validate:"gt=0"`
	Action     recommend.ActionKind `json:"action" validate:"oneof=view like comment"`
	OccurredAt time.Time            `json:"occurred_at" validate:"required"`
}

// NewInteractionRecorded builds an event with a fresh id. A zero occurredAt
// is replaced by the current time.
func NewInteractionRecorded(memberID, postID int64, action recommend.ActionKind, occurredAt time.Time) *InteractionRecorded {
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	return &InteractionRecorded{
		EventID:    uuid.New().String(),
		MemberID:   memberID,
		PostID:     postID,
		Action:     action,
		OccurredAt: occurredAt,
	}
}

// Validate checks the event's fields.
func (e *InteractionRecorded) Validate() error {
	if verr := validation.ValidateStruct(e); verr != nil {
		return verr
	}
	return nil
}

func encodeInteraction(e *InteractionRecorded) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal interaction event: %w", err)
	}
	return data, nil
}

func decodeInteraction(payload []byte) (*InteractionRecorded, error) {
	var e InteractionRecorded
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("unmarshal interaction event: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
