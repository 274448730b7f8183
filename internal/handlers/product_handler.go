package handlers

import (
	"net/url"
	"strconv"

	"cannashop/internal/events"
	"cannashop/internal/models"
	"cannashop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service   *services.ProductService
	publisher events.Publisher
}

// NewProductHandler creates a new ProductHandler. Catalog changes are announced on publisher.
func NewProductHandler(service *services.ProductService, publisher events.Publisher) *ProductHandler {
	return &ProductHandler{
		service:   service,
		publisher: publisher,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:pid", h.HandleGetProductByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:pid", h.HandleUpdateProduct)
	productRoutes.Delete("/:pid", h.HandleDeleteProduct)
}

type productListResponse struct {
	Status string `json:"status"`
	*services.ProductPage
	PrevLink *string `json:"prevLink"`
	NextLink *string `json:"nextLink"`
}

// HandleGetProducts lists the catalog with filters, sorting and pagination.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	query := services.ParseProductQuery(func(key string) string { return c.Query(key) })
	page, err := h.service.GetAllProducts(c.UserContext(), query)
	if err != nil {
		return err
	}

	resp := productListResponse{Status: "success", ProductPage: page}
	if page.PrevPage != nil {
		link := pageLink(c, *page.PrevPage)
		resp.PrevLink = &link
	}
	if page.NextPage != nil {
		link := pageLink(c, *page.NextPage)
		resp.NextLink = &link
	}
	return c.JSON(resp)
}

// pageLink rebuilds the current request URL pointing at page.
func pageLink(c *fiber.Ctx, page int) string {
	values := url.Values{}
	for k, v := range c.Queries() {
		values.Set(k, v)
	}
	values.Set("page", strconv.Itoa(page))
	return c.Path() + "?" + values.Encode()
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("pid"))
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, product)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var input models.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(err)
	}

	created, err := h.service.CreateProduct(c.UserContext(), input)
	if err != nil {
		return err
	}

	notify(c.UserContext(), h.publisher, events.ProductChanged(events.ActionCreated, created.ID))
	return success(c, fiber.StatusCreated, created)
}

// HandleUpdateProduct applies a partial update. Identity fields in the body are ignored.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var patch models.ProductInput
	if err := c.BodyParser(&patch); err != nil {
		return invalidBody(err)
	}

	updated, err := h.service.UpdateProduct(c.UserContext(), c.Params("pid"), patch)
	if err != nil {
		return err
	}

	notify(c.UserContext(), h.publisher, events.ProductChanged(events.ActionUpdated, updated.ID))
	return success(c, fiber.StatusOK, updated)
}

// HandleDeleteProduct removes a product and returns it.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	removed, err := h.service.DeleteProduct(c.UserContext(), c.Params("pid"))
	if err != nil {
		return err
	}

	notify(c.UserContext(), h.publisher, events.ProductChanged(events.ActionDeleted, removed.ID))
	return success(c, fiber.StatusOK, removed)
}
