package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CartIDKey is the Locals key holding the active cart id.
const CartIDKey = "cartId"

// CartHeader lets API clients pick the cart the views should act on.
const CartHeader = "X-Cart-Id"

// DemoCart exposes the active cart id to handlers and templates.
// A non-blank X-Cart-Id header wins over the configured demo cart.
func DemoCart(demoCartID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cartID := demoCartID
		if header := strings.TrimSpace(c.Get(CartHeader)); header != "" {
			cartID = header
		}
		c.Locals(CartIDKey, cartID)

		// Continue to the next handler
		return c.Next()
	}
}

// CartID returns the cart id stored by DemoCart, or "".
func CartID(c *fiber.Ctx) string {
	id, _ := c.Locals(CartIDKey).(string)
	return id
}
