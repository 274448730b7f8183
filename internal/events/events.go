package events

import (
	"context"
	"errors"
	"time"
)

// Event types pushed to realtime clients.
const (
	ProductsChanged = "products:changed"
	UsersCount      = "users:count"
)

// Product change actions.
const (
	ActionCreated = "create"
	ActionUpdated = "update"
	ActionDeleted = "delete"
)

// Event is a notification about the catalog or the realtime audience.
type Event struct {
	Type      string    `json:"type"`
	Action    string    `json:"action,omitempty"`
	ProductID string    `json:"productId,omitempty"`
	Count     int       `json:"count,omitempty"`
	Origin    string    `json:"origin,omitempty"`
	At        time.Time `json:"at"`
}

// ProductChanged builds a products:changed event.
func ProductChanged(action, productID string) Event {
	return Event{Type: ProductsChanged, Action: action, ProductID: productID, At: time.Now().UTC()}
}

// Publisher delivers events to interested parties.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, evt Event) error

func (f PublisherFunc) Publish(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

type multiPublisher []Publisher

// Multi publishes every event to all publishers, in order, and joins their errors.
func Multi(publishers ...Publisher) Publisher {
	var out multiPublisher
	for _, p := range publishers {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (m multiPublisher) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
