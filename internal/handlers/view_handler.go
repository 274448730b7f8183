package handlers

import (
	"errors"

	"cannashop/internal/middleware"
	"cannashop/internal/models"
	"cannashop/internal/services"

	"github.com/gofiber/fiber/v2"
)

const mainLayout = "layouts/main"

// ViewHandler renders the storefront pages.
type ViewHandler struct {
	products *services.ProductService
	carts    *services.CartService
}

// NewViewHandler creates a new ViewHandler.
func NewViewHandler(products *services.ProductService, carts *services.CartService) *ViewHandler {
	return &ViewHandler{products: products, carts: carts}
}

// RegisterRoutes registers the page routes.
func (h *ViewHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleHome)
	router.Get("/products", h.HandleProducts)
	router.Get("/products/:pid", h.HandleProduct)
	router.Get("/carts/:cid", h.HandleCart)
	router.Get("/realtimeproducts", h.HandleRealtime)
}

func (h *ViewHandler) render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["CartID"] = middleware.CartID(c)
	return c.Render(tmpl, data, mainLayout)
}

// renderErr shows a not-found page for missing records and defers everything else.
func (h *ViewHandler) renderErr(c *fiber.Ctx, err error) error {
	var nf *services.NotFoundError
	if errors.As(err, &nf) {
		c.Status(fiber.StatusNotFound)
		return h.render(c, "notfound", fiber.Map{"Title": "No encontrado", "Message": nf.Error()})
	}
	return err
}

func (h *ViewHandler) allProducts(c *fiber.Ctx) ([]models.Product, error) {
	page, err := h.products.GetAllProducts(c.UserContext(), services.ProductQuery{Limit: 100})
	if err != nil {
		return nil, err
	}
	return page.Payload, nil
}

// HandleHome shows the first products of the catalog.
func (h *ViewHandler) HandleHome(c *fiber.Ctx) error {
	products, err := h.allProducts(c)
	if err != nil {
		return err
	}
	return h.render(c, "home", fiber.Map{
		"Title":      "Canna Shop",
		"Products":   products,
		"Categories": models.Categories,
	})
}

// HandleProducts shows one page of the filtered catalog.
func (h *ViewHandler) HandleProducts(c *fiber.Ctx) error {
	query := services.ParseProductQuery(func(key string) string { return c.Query(key) })
	page, err := h.products.GetAllProducts(c.UserContext(), query)
	if err != nil {
		return err
	}

	data := fiber.Map{
		"Title":      "Catálogo",
		"Page":       page,
		"Query":      query.Query,
		"Category":   query.Category,
		"Sort":       query.Sort,
		"Order":      query.Order,
		"Categories": models.Categories,
	}
	if page.PrevPage != nil {
		data["PrevLink"] = pageLink(c, *page.PrevPage)
	}
	if page.NextPage != nil {
		data["NextLink"] = pageLink(c, *page.NextPage)
	}
	return h.render(c, "products", data)
}

// HandleProduct shows a single product.
func (h *ViewHandler) HandleProduct(c *fiber.Ctx) error {
	product, err := h.products.GetProductByID(c.UserContext(), c.Params("pid"))
	if err != nil {
		return h.renderErr(c, err)
	}
	return h.render(c, "product", fiber.Map{"Title": product.Title, "Product": product})
}

// HandleCart shows a cart with its products resolved.
func (h *ViewHandler) HandleCart(c *fiber.Ctx) error {
	detail, err := h.carts.GetCartWithDetails(c.UserContext(), c.Params("cid"))
	if err != nil {
		return h.renderErr(c, err)
	}
	return h.render(c, "cart", fiber.Map{"Title": "Carrito", "Cart": detail})
}

// HandleRealtime shows the live catalog fed by the events stream.
func (h *ViewHandler) HandleRealtime(c *fiber.Ctx) error {
	products, err := h.allProducts(c)
	if err != nil {
		return err
	}
	return h.render(c, "realtime", fiber.Map{
		"Title":      "Productos en tiempo real",
		"Products":   products,
		"Categories": models.Categories,
	})
}
