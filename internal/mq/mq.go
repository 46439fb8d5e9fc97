// Package mq publishes import lifecycle events to a message broker so judge
// workers and caches can react to freshly imported problems.
package mq

import (
	"context"
	"encoding/json"

	"github.com/jjudge-oj/fps-import/types"
)

// Backend defines the broker-agnostic operations used by the importer.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// Publisher wraps a backend and a fixed channel for import events.
type Publisher struct {
	backend Backend
	channel string
}

// NewPublisher constructs a Publisher for the provided backend and channel.
func NewPublisher(backend Backend, channel string) *Publisher {
	return &Publisher{backend: backend, channel: channel}
}

// PublishImported announces a successfully delivered problem. The returned
// id is backend-specific and only useful for logging.
func (p *Publisher) PublishImported(ctx context.Context, event types.ImportedEvent) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	attrs := map[string]string{
		"kind":       "problem.imported",
		"display_id": event.DisplayID,
	}
	return p.backend.Publish(ctx, p.channel, data, attrs)
}

// Close closes the underlying backend.
func (p *Publisher) Close() error {
	return p.backend.Close()
}
