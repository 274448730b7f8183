package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"cannashop/internal/events"

	"github.com/gofiber/fiber/v2"
)

const keepAliveInterval = 15 * time.Second

// EventsHandler streams hub events to browsers as Server-Sent Events.
type EventsHandler struct {
	hub       *events.Hub
	done      chan struct{}
	closeOnce sync.Once
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(hub *events.Hub) *EventsHandler {
	return &EventsHandler{hub: hub, done: make(chan struct{})}
}

// RegisterRoutes registers the event stream route.
func (h *EventsHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/events", h.HandleStream)
}

// Close ends every open stream after flushing what is already queued.
func (h *EventsHandler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// HandleStream keeps the connection open and writes one SSE message per event.
func (h *EventsHandler) HandleStream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	ch, unsubscribe := h.hub.Subscribe()
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()

		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()

		for {
			select {
			case evt, ok := <-ch:
				if !ok {
					return
				}
				if err := writeEvent(w, evt); err != nil {
					return
				}
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			case <-h.done:
				for {
					select {
					case evt, ok := <-ch:
						if !ok {
							return
						}
						if err := writeEvent(w, evt); err != nil {
							return
						}
					default:
						return
					}
				}
			}
		}
	})
	return nil
}

func writeEvent(w *bufio.Writer, evt events.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("Error encoding %s event: %v", evt.Type, err)
		return nil
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, data); err != nil {
		return err
	}
	return w.Flush()
}
