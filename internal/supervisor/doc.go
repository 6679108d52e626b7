// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

/*
Package supervisor runs Quill's long-lived services under a suture v4 tree.

	quill
	├── data-layer
	│   └── warmup-service
	├── messaging-layer
	│   └── event-router (when EVENTS_ENABLED)
	└── api-layer
	    └── ops-http-server

Each layer counts failures on its own, so a crashing event router does not
take the ops server down with it. Supervisor events are logged through
sutureslog on the slog bridge of the zerolog logger.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddServices(supervisor.Services{
	    Warmup:      services.NewWarmupService(engine, db, warmCfg, logger),
	    EventRouter: services.NewEventRouterService(pipeline),
	    OpsServer:   services.NewOpsServerService(&cfg.Server, router),
	})
	return tree.Serve(ctx)

Wrappers for individual components live in the services subpackage.
*/
package supervisor
