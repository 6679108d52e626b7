// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/quill/internal/logging"
	"github.com/tomtom215/quill/internal/metrics"
)

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// Publisher sends interaction events to a topic.
type Publisher struct {
	mu        sync.RWMutex
	publisher message.Publisher
	topic     string
	closed    bool
}

// NewPublisher wraps pub. Closing the Publisher closes pub.
func NewPublisher(pub message.Publisher, topic string) (*Publisher, error) {
	if pub == nil {
		return nil, fmt.Errorf("watermill publisher required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic required")
	}
	return &Publisher{publisher: pub, topic: topic}, nil
}

// PublishInteraction validates, encodes, and publishes evt. The correlation
// id is taken from ctx when present, otherwise the event id is used.
func (p *Publisher) PublishInteraction(ctx context.Context, evt *InteractionRecorded) error {
	if evt == nil {
		return fmt.Errorf("nil event")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeInteraction(evt)
	if err != nil {
		return err
	}

	msg := message.NewMessage(evt.EventID, data)
	correlationID := logging.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = evt.EventID
	}
	middleware.SetCorrelationID(correlationID, msg)
	msg.Metadata.Set("member_id", strconv.FormatInt(evt.MemberID, 10))
	msg.Metadata.Set("action", string(evt.Action))

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	metrics.EventsPublished.Inc()
	return nil
}

// Topic returns the destination topic.
func (p *Publisher) Topic() string {
	return p.topic
}

// Close shuts down the underlying publisher. It is safe to call twice.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
