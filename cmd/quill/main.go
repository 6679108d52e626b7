// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

// Package main is the entry point for the Quill recommendation server.
//
// Quill keeps hash embeddings of blog posts, tags, and members in memory and
// serves tag suggestions, personalized recommendations, and hybrid search to
// the blogging platform that embeds it. This binary runs the long-lived side:
//
//  1. Configuration: defaults, optional YAML file, environment (koanf v2)
//  2. Database: DuckDB with the posts, tags, interactions, and tag_vectors tables
//  3. Tag store: DuckDB or Badger, selected by TAG_STORE_BACKEND
//  4. Engine: hash embedder, post and user indexes, circuit-broken data provider
//  5. Events: in-process watermill router feeding interaction events to the learner
//  6. Supervisor: warm-up, event router, and the ops HTTP server under suture
//
// The binary has no write surface of its own, so nothing it runs publishes
// to the event router. The post and interaction write flows in internal/blog
// are for a host that embeds these packages: the pub/sub is in-process, so
// such a host builds blog.NewService with Pipeline.Publisher() from the
// same process. Without a publisher, blog.Service updates user vectors
// inline.
//
// SIGINT and SIGTERM cancel the tree; services get SHUTDOWN_TIMEOUT to stop
// before stores are closed.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/quill/internal/api"
	"github.com/tomtom215/quill/internal/config"
	"github.com/tomtom215/quill/internal/database"
	"github.com/tomtom215/quill/internal/events"
	"github.com/tomtom215/quill/internal/logging"
	"github.com/tomtom215/quill/internal/recommend"
	"github.com/tomtom215/quill/internal/supervisor"
	"github.com/tomtom215/quill/internal/supervisor/services"
	"github.com/tomtom215/quill/internal/tagstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error().Err(err).Msg("Quill stopped with error")
		stop()
		os.Exit(1)
	}
	logging.Info().Msg("Quill stopped")
}

//nolint:gocyclo // sequential setup steps
func run(ctx context.Context, cfg *config.Config) error {
	logger := logging.Logger()
	logger.Info().
		Str("db_path", cfg.Database.Path).
		Str("tag_store", cfg.TagStore.Backend).
		Int("dimension", cfg.Embedding.Dimension).
		Bool("events", cfg.Events.Enabled).
		Msg("Starting Quill")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing database")
		}
	}()

	tagStore, closeTagStore, err := openTagStore(cfg, db, logger)
	if err != nil {
		return err
	}
	defer closeTagStore()

	var (
		data    recommend.DataProvider = db
		breaker *database.CircuitBreakerProvider
	)
	if cfg.Breaker.Enabled {
		breaker = database.NewCircuitBreakerProvider(db, &cfg.Breaker)
		data = breaker
	}

	engine, err := initEngine(cfg, data, tagStore, logger)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	checks := []api.ReadinessCheck{{Name: "duckdb", Check: db.Ping}}
	if breaker != nil {
		checks = append(checks, api.ReadinessCheck{Name: "data-provider-breaker", Check: func(context.Context) error {
			if breaker.State() == gobreaker.StateOpen {
				return errors.New("circuit open")
			}
			return nil
		}})
	}

	var routerSvc *services.EventRouterService
	if cfg.Events.Enabled {
		pipeline, err := events.NewPipeline(&cfg.Events, engine, logger)
		if err != nil {
			return fmt.Errorf("create event pipeline: %w", err)
		}
		defer func() {
			if err := pipeline.Close(); err != nil {
				logger.Error().Err(err).Msg("Error closing event pipeline")
			}
		}()
		routerSvc = services.NewEventRouterService(pipeline)
		checks = append(checks, api.ReadinessCheck{Name: "event-router", Check: func(context.Context) error {
			select {
			case <-pipeline.Running():
				return nil
			default:
				return errors.New("router not running")
			}
		}})
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	svcs := supervisor.Services{
		Warmup: services.NewWarmupService(engine, db, services.WarmupServiceConfig{
			OnStartup:       cfg.Warmup.OnStartup,
			RefreshInterval: cfg.Warmup.RefreshInterval,
		}, logger),
		OpsServer: services.NewOpsServerService(&cfg.Server,
			api.NewOpsRouter(api.NewHealthHandler(0, checks...), logger)),
	}
	if routerSvc != nil {
		svcs.EventRouter = routerSvc
	}
	tree.AddServices(svcs)

	logger.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Supervisor tree starting")

	err = tree.Serve(ctx)
	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		logger.Warn().Int("count", len(report)).Msg("Services did not stop within the shutdown timeout")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}
	return nil
}

// openTagStore returns the configured tag vector store and its closer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func openTagStore(cfg *config.Config, db *database.DB, logger zerolog.Logger) (recommend.TagVectorStore, func(), error) {
	switch cfg.TagStore.Backend {
	case config.TagStoreBadger:
		store, err := tagstore.Open(&cfg.TagStore, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open tag store: %w", err)
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Error().Err(err).Msg("Error closing tag store")
			}
		}, nil
	default:
		return db, func() {}, nil
	}
}
