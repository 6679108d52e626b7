// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

/*
Package services adapts Quill components to suture.Service.

Each wrapper translates a component's lifecycle into Serve(ctx) error and
names itself through fmt.Stringer for supervisor logs:

  - HTTPServerService runs an *http.Server with graceful shutdown.
  - WarmupService rebuilds the post index and seeds tag vectors at start-up
    and, optionally, on an interval.
  - EventRouterService runs the interaction event router.

Returning ctx.Err() on cancellation tells suture the stop was requested.
Any other error triggers a restart with backoff unless it wraps
suture.ErrDoNotRestart.
*/
package services
