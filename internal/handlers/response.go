package handlers

import (
	"context"
	"log"

	"cannashop/internal/events"

	"github.com/gofiber/fiber/v2"
)

func success(c *fiber.Ctx, status int, payload any) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  "success",
		"payload": payload,
	})
}

func invalidBody(err error) error {
	log.Printf("Error parsing request body: %v", err)
	return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
}

// notify publishes evt after a successful mutation. Failures are logged only;
// the mutation has already happened.
func notify(ctx context.Context, publisher events.Publisher, evt events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, evt); err != nil {
		log.Printf("Error publishing %s event: %v", evt.Type, err)
	}
}
