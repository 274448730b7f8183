package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// Transport moves encoded events between service instances.
type Transport interface {
	Publish(ctx context.Context, body []byte) error
	Subscribe(ctx context.Context, handler func(ctx context.Context, body []byte) error) error
	Close() error
}

// Bridge relays catalog events through a Transport so that every instance's hub
// sees changes made on any instance.
type Bridge struct {
	transport Transport
	hub       *Hub
	origin    string
}

// NewBridge creates a Bridge with a fresh origin id for this instance.
func NewBridge(transport Transport, hub *Hub) *Bridge {
	return &Bridge{transport: transport, hub: hub, origin: uuid.NewString()}
}

// Publish sends evt to the other instances.
func (b *Bridge) Publish(ctx context.Context, evt Event) error {
	evt.Origin = b.origin
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := b.transport.Publish(ctx, body); err != nil {
		return fmt.Errorf("failed to relay %s event: %w", evt.Type, err)
	}
	return nil
}

// Start forwards events from other instances into the local hub until ctx is done.
func (b *Bridge) Start(ctx context.Context) error {
	return b.transport.Subscribe(ctx, b.receive)
}

// Close releases the transport.
func (b *Bridge) Close() error {
	return b.transport.Close()
}

func (b *Bridge) receive(ctx context.Context, body []byte) error {
	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		log.Printf("events: discarding malformed message: %v", err)
		return nil
	}
	if evt.Origin == b.origin {
		return nil
	}
	return b.hub.Publish(ctx, evt)
}
