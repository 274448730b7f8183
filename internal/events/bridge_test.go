package events_test

import (
	"context"
	"sync"
	"testing"

	"cannashop/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loopback delivers every published message to every subscriber, like a fanout exchange.
type loopback struct {
	mu       sync.Mutex
	handlers []func(context.Context, []byte) error
	closed   bool
}

func (l *loopback) Publish(ctx context.Context, body []byte) error {
	l.mu.Lock()
	handlers := append([]func(context.Context, []byte) error{}, l.handlers...)
	l.mu.Unlock()
	for _, h := range handlers {
		if err := h(ctx, body); err != nil {
			return err
		}
	}
	return nil
}

func (l *loopback) Subscribe(_ context.Context, handler func(context.Context, []byte) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers = append(l.handlers, handler)
	return nil
}

func (l *loopback) Close() error {
	l.closed = true
	return nil
}

func TestBridge_RelaysBetweenInstances(t *testing.T) {
	ctx := context.Background()
	transport := &loopback{}

	hubA, hubB := events.NewHub(4), events.NewHub(4)
	bridgeA, bridgeB := events.NewBridge(transport, hubA), events.NewBridge(transport, hubB)
	require.NoError(t, bridgeA.Start(ctx))
	require.NoError(t, bridgeB.Start(ctx))

	chA, cancelA := hubA.Subscribe()
	defer cancelA()
	chB, cancelB := hubB.Subscribe()
	defer cancelB()
	receive(t, chA)
	receive(t, chB)

	require.NoError(t, bridgeA.Publish(ctx, events.ProductChanged(events.ActionCreated, "p1")))

	evt := receive(t, chB)
	assert.Equal(t, events.ProductsChanged, evt.Type)
	assert.Equal(t, "p1", evt.ProductID)
	assert.NotEmpty(t, evt.Origin)

	select {
	case evt := <-chA:
		t.Fatalf("instance received its own event: %+v", evt)
	default:
	}

	require.NoError(t, bridgeA.Close())
	assert.True(t, transport.closed)
}

func TestBridge_IgnoresMalformedMessages(t *testing.T) {
	ctx := context.Background()
	transport := &loopback{}
	hub := events.NewHub(4)
	require.NoError(t, events.NewBridge(transport, hub).Start(ctx))

	ch, cancel := hub.Subscribe()
	defer cancel()
	receive(t, ch)

	assert.NoError(t, transport.Publish(ctx, []byte("{not json")))
	select {
	case evt := <-ch:
		t.Fatalf("unexpected event %+v", evt)
	default:
	}
}
