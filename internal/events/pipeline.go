// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package events

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"

	"github.com/tomtom215/quill/internal/config"
)

const (
	interactionHandlerName = "interaction-learner"
	poisonHandlerName      = "interaction-poison-log"

	retryMaxInterval = 5 * time.Second
	retryMultiplier  = 2.0
)

// Pipeline owns the in-process pub/sub and the router that feeds
// interaction events to the learner.
type Pipeline struct {
	cfg       config.EventsConfig
	pubsub    *gochannel.GoChannel
	router    *message.Router
	publisher *Publisher
	logger    zerolog.Logger

	// started is set by Run. An un-run router never drains its handler
	// wait group, so closing it would only wait out CloseTimeout.
	started atomic.Bool

	closeOnce sync.Once
	closeErr  error
}

// NewPipeline builds the pub/sub, the publisher, and a router with the
// learner handler registered. Call Run to start consuming.
func NewPipeline(cfg *config.EventsConfig, learner UserLearner, logger zerolog.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("events config required")
	}
	if cfg.Topic == "" || cfg.PoisonTopic == "" {
		return nil, fmt.Errorf("events topic and poison topic are required")
	}
	if cfg.Topic == cfg.PoisonTopic {
		return nil, fmt.Errorf("poison topic must differ from %q", cfg.Topic)
	}

	handler, err := NewInteractionHandler(learner, logger)
	if err != nil {
		return nil, err
	}

	log := logger.With().Str("component", "events").Logger()
	wmLogger := NewLoggerAdapter(log)

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.BufferSize,
	}, wmLogger)

	publisher, err := NewPublisher(pubsub, cfg.Topic)
	if err != nil {
		return nil, err
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	// Router middleware runs outermost first. The poison queue has to wrap
	// Retry so it only sees errors that survived every attempt.
	poisonQueue, err := middleware.PoisonQueue(pubsub, cfg.PoisonTopic)
	if err != nil {
		return nil, fmt.Errorf("create poison queue middleware: %w", err)
	}
	router.AddMiddleware(poisonQueue)

	retry := middleware.Retry{
		MaxRetries:      cfg.MaxRetries,
		InitialInterval: cfg.RetryInterval,
		MaxInterval:     retryMaxInterval,
		Multiplier:      retryMultiplier,
		Logger:          wmLogger,
	}
	router.AddMiddleware(retry.Middleware, middleware.Recoverer)

	router.AddConsumerHandler(interactionHandlerName, cfg.Topic, pubsub, handler.Handle)

	p := &Pipeline{
		cfg:       *cfg,
		pubsub:    pubsub,
		router:    router,
		publisher: publisher,
		logger:    log,
	}
	router.AddConsumerHandler(poisonHandlerName, cfg.PoisonTopic, pubsub, p.logPoisoned)

	return p, nil
}

// logPoisoned records messages that exhausted their retries. It never fails,
// so poisoned messages are not fed back into the poison queue.
func (p *Pipeline) logPoisoned(msg *message.Message) error {
	p.logger.Error().
		Str("message_uuid", msg.UUID).
		Str("correlation_id", middleware.MessageCorrelationID(msg)).
		Str("member_id", msg.Metadata.Get("member_id")).
		Str("reason", msg.Metadata.Get(middleware.ReasonForPoisonedKey)).
		Msg("Interaction event moved to poison topic")
	return nil
}

// Publisher returns the publisher for the interaction topic.
func (p *Pipeline) Publisher() *Publisher {
	return p.publisher
}

// Subscribe returns a raw subscription on topic. It is used to observe the
// poison topic.
func (p *Pipeline) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return p.pubsub.Subscribe(ctx, topic)
}

// Run consumes until ctx is cancelled or Close is called.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info().
		Str("topic", p.cfg.Topic).
		Str("poison_topic", p.cfg.PoisonTopic).
		Int("max_retries", p.cfg.MaxRetries).
		Msg("Starting interaction event router")
	p.started.Store(true)
	return p.router.Run(ctx)
}

// Running is closed once every handler has subscribed. Events published
// before that are dropped by the gochannel transport.
func (p *Pipeline) Running() <-chan struct{} {
	return p.router.Running()
}

// Close stops the router if Run was called and shuts down the pub/sub.
func (p *Pipeline) Close() error {
	p.closeOnce.Do(func() {
		if p.started.Load() {
			if err := p.router.Close(); err != nil {
				p.closeErr = fmt.Errorf("close router: %w", err)
			}
		}
		if err := p.publisher.Close(); err != nil && p.closeErr == nil {
			p.closeErr = fmt.Errorf("close pubsub: %w", err)
		}
	})
	return p.closeErr
}

var _ watermill.LoggerAdapter = (*zerologAdapter)(nil)
