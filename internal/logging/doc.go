// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

// Package logging provides the process-wide zerolog logger for Quill.
//
// Every component receives a zerolog.Logger by value and derives a child
// logger carrying a "component" field. The global logger is configured once
// from main via Init; until then a JSON logger at info level writes to stderr.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "debug", Format: "console"})
//	logger := logging.WithComponent("recommend")
//	logger.Info().Int64("user_id", 7).Msg("user vector updated")
//
// # Context
//
// Correlation and request IDs travel in the context and are attached by Ctx:
//
//	ctx = logging.ContextWithNewCorrelationID(ctx)
//	logging.Ctx(ctx).Warn().Msg("tag suggestion degraded")
//
// # slog
//
// NewSlogLogger bridges to log/slog for libraries that require it, such as
// the suture event hook (sutureslog).
package logging
