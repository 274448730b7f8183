package natsbus

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/nats-io/nats.go"
)

// Config holds NATS connection details.
type Config struct {
	URL     string
	Subject string
	// MaxElapsedTime bounds the dial retries. Zero means a single attempt.
	MaxElapsedTime time.Duration
}

// Client publishes and subscribes on a single core NATS subject.
type Client struct {
	conn    *nats.Conn
	subject string
}

// NewClient connects to NATS.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	connect := func() (*nats.Conn, error) {
		nc, err := nats.Connect(
			cfg.URL,
			nats.Timeout(10*time.Second),
			nats.MaxReconnects(5),
			nats.ReconnectWait(2*time.Second),
		)
		if err != nil {
			log.Printf("NATS not reachable yet: %v", err)
		}
		return nc, err
	}

	var (
		nc  *nats.Conn
		err error
	)
	if cfg.MaxElapsedTime > 0 {
		nc, err = backoff.Retry(ctx, connect,
			backoff.WithBackOff(backoff.NewExponentialBackOff()),
			backoff.WithMaxElapsedTime(cfg.MaxElapsedTime))
	} else {
		nc, err = connect()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Printf("NATS client connected, subject %s", cfg.Subject)
	return &Client{conn: nc, subject: cfg.Subject}, nil
}

// Publish sends body on the configured subject.
func (c *Client) Publish(_ context.Context, body []byte) error {
	if err := c.conn.Publish(c.subject, body); err != nil {
		return fmt.Errorf("failed to publish to NATS: %w", err)
	}
	return nil
}

// Subscribe passes every message on the subject to handler until ctx is done.
func (c *Client) Subscribe(ctx context.Context, handler func(ctx context.Context, body []byte) error) error {
	sub, err := c.conn.Subscribe(c.subject, func(msg *nats.Msg) {
		if err := handler(ctx, msg.Data); err != nil {
			log.Printf("Error processing NATS message on %s: %v", msg.Subject, err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", c.subject, err)
	}

	go func() {
		<-ctx.Done()
		if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) && !errors.Is(err, nats.ErrBadSubscription) {
			log.Printf("Error unsubscribing from %s: %v", c.subject, err)
		}
	}()
	return nil
}

// Close drains pending messages and closes the connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}
	return nil
}
