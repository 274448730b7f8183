package handlers

import (
	"cannashop/internal/models"
	"cannashop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for carts.
type CartHandler struct {
	service *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service: service,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/carts")
	cartRoutes.Post("/", h.HandleCreateCart)
	cartRoutes.Get("/:cid", h.HandleGetCart)
	cartRoutes.Put("/:cid", h.HandleReplaceLines)
	cartRoutes.Delete("/:cid", h.HandleClearCart)
	cartRoutes.Post("/:cid/product/:pid", h.HandleAddProduct)
	cartRoutes.Put("/:cid/product/:pid", h.HandleUpdateQuantity)
	cartRoutes.Delete("/:cid/product/:pid", h.HandleRemoveProduct)
}

// HandleCreateCart creates an empty cart.
func (h *CartHandler) HandleCreateCart(c *fiber.Ctx) error {
	cart, err := h.service.CreateCart(c.UserContext())
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, cart)
}

// HandleGetCart returns the cart with its products resolved.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	detail, err := h.service.GetCartWithDetails(c.UserContext(), c.Params("cid"))
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, detail)
}

// HandleReplaceLines overwrites every line of the cart.
func (h *CartHandler) HandleReplaceLines(c *fiber.Ctx) error {
	var body struct {
		Products []models.CartItem `json:"products"`
	}
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(err)
	}
	if body.Products == nil {
		return &services.ValidationError{Problems: []string{"products must be an array"}}
	}

	cart, err := h.service.ReplaceAllLines(c.UserContext(), c.Params("cid"), body.Products)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, cart)
}

// HandleClearCart removes every line from the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	cart, err := h.service.ClearCart(c.UserContext(), c.Params("cid"))
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, cart)
}

// HandleAddProduct adds one unit of the product to the cart.
func (h *CartHandler) HandleAddProduct(c *fiber.Ctx) error {
	cart, err := h.service.AddProductToCart(c.UserContext(), c.Params("cid"), c.Params("pid"))
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, cart)
}

// HandleUpdateQuantity sets the quantity of a line; zero removes it.
func (h *CartHandler) HandleUpdateQuantity(c *fiber.Ctx) error {
	var body struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(err)
	}
	if body.Quantity == nil || *body.Quantity < 0 {
		return &services.ValidationError{Problems: []string{"quantity must be a number greater than or equal to 0"}}
	}

	cart, err := h.service.UpdateProductQuantity(c.UserContext(), c.Params("cid"), c.Params("pid"), *body.Quantity)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, cart)
}

// HandleRemoveProduct drops the product's line from the cart.
func (h *CartHandler) HandleRemoveProduct(c *fiber.Ctx) error {
	cart, err := h.service.RemoveProductFromCart(c.UserContext(), c.Params("cid"), c.Params("pid"))
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, cart)
}
