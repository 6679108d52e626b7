// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package services

import (
	"context"
	"fmt"

	"github.com/thejerf/suture/v4"
)

// EventRouter is a router that runs until ctx ends. *events.Pipeline
// implements it.
type EventRouter interface {
	Run(ctx context.Context) error
}

// EventRouterService runs the interaction event router.
//
// A watermill router cannot be started twice, so an unexpected stop is
// reported with suture.ErrDoNotRestart instead of looping on restarts.
type EventRouterService struct {
	router EventRouter
	name   string
}

// NewEventRouterService wraps router.
func NewEventRouterService(router EventRouter) *EventRouterService {
	return &EventRouterService{router: router, name: "event-router"}
}

// Serve implements suture.Service.
func (s *EventRouterService) Serve(ctx context.Context) error {
	err := s.router.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil {
		return fmt.Errorf("event router stopped: %w", suture.ErrDoNotRestart)
	}
	return fmt.Errorf("event router failed: %v: %w", err, suture.ErrDoNotRestart)
}

// String returns the service name for logging.
func (s *EventRouterService) String() string {
	return s.name
}
