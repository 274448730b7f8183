package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"cannashop/internal/config"
	"cannashop/internal/events"
	"cannashop/internal/handlers"
	"cannashop/internal/middleware"
	"cannashop/internal/models"
	"cannashop/internal/seed"
	"cannashop/internal/services"
	"cannashop/pkg/natsbus"
	"cannashop/pkg/rabbitmq"
	"cannashop/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
)

// App is the wired storefront: stores, services, realtime hub and HTTP server.
type App struct {
	Fiber      *fiber.App
	Products   *services.ProductService
	Carts      *services.CartService
	Hub        *events.Hub
	DemoCartID string

	cfg     config.Config
	stores  *Stores
	bridge  *events.Bridge
	streams *handlers.EventsHandler
	cancel  context.CancelFunc
}

// New opens the configured stores and builds the application around them.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	stores, err := OpenStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a, err := NewWithStores(ctx, cfg, stores)
	if err != nil {
		_ = stores.Close()
		return nil, err
	}
	return a, nil
}

// NewWithStores builds the application on already opened stores.
// On success the App owns stores and closes them in Close; on error the caller still does.
func NewWithStores(ctx context.Context, cfg config.Config, stores *Stores) (*App, error) {
	runCtx, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:    cfg,
		stores: stores,
		Hub:    events.NewHub(0),
		cancel: cancel,
	}

	a.Products = services.NewProductService(stores.Products, services.QueryOptions{
		DefaultLimit: cfg.PaginationDefaultLimit,
		MaxLimit:     cfg.PaginationMaxLimit,
		Locale:       cfg.SortLocale,
	})
	var cartOpts []services.CartOption
	if cfg.CartSerializeMutations {
		cartOpts = append(cartOpts, services.WithCartLocking())
	}
	a.Carts = services.NewCartService(stores.Carts, stores.Products, cartOpts...)

	fail := func(err error) (*App, error) {
		cancel()
		if a.bridge != nil {
			_ = a.bridge.Close()
		}
		return nil, err
	}

	var publisher events.Publisher = a.Hub
	bridge, err := openBridge(ctx, cfg, a.Hub)
	if err != nil {
		return fail(err)
	}
	if bridge != nil {
		a.bridge = bridge
		if err := bridge.Start(runCtx); err != nil {
			return fail(fmt.Errorf("failed to start event relay: %w", err))
		}
		publisher = events.Multi(a.Hub, bridge)
	}

	if cfg.SeedOnStart {
		if _, err := seed.Seed(ctx, stores.Products, stores.Carts, false); err != nil && !errors.Is(err, seed.ErrNotEmpty) {
			return fail(err)
		}
	}

	demoCartID, err := a.resolveDemoCart(ctx)
	if err != nil {
		return fail(err)
	}
	a.DemoCartID = demoCartID

	a.Fiber = a.newFiber(publisher)
	return a, nil
}

func openBridge(ctx context.Context, cfg config.Config, hub *events.Hub) (*events.Bridge, error) {
	switch cfg.EventsBroker {
	case config.BrokerRabbitMQ:
		client, err := rabbitmq.NewClient(ctx, rabbitmq.Config{
			URL:            cfg.RabbitMQURL,
			Exchange:       cfg.RabbitMQExchange,
			MaxElapsedTime: cfg.ConnectTimeout,
		})
		if err != nil {
			return nil, err
		}
		return events.NewBridge(client, hub), nil
	case config.BrokerNATS:
		client, err := natsbus.NewClient(ctx, natsbus.Config{
			URL:            cfg.NATSURL,
			Subject:        cfg.NATSSubject,
			MaxElapsedTime: cfg.ConnectTimeout,
		})
		if err != nil {
			return nil, err
		}
		return events.NewBridge(client, hub), nil
	default:
		return nil, nil
	}
}

// resolveDemoCart picks the configured cart, else the first stored cart, else a new one.
func (a *App) resolveDemoCart(ctx context.Context) (string, error) {
	if id := a.cfg.DemoCartID; id != "" {
		if _, err := a.Carts.GetCart(ctx, id); err == nil {
			return id, nil
		}
		log.Printf("Configured demo cart %s not found, picking another", id)
	}

	carts, err := a.stores.Carts.GetAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list carts: %w", err)
	}
	if len(carts) > 0 {
		return carts[0].ID, nil
	}

	cart, err := a.Carts.CreateCart(ctx)
	if err != nil {
		return "", err
	}
	log.Printf("Created demo cart %s", cart.ID)
	return cart.ID, nil
}

func (a *App) newFiber(publisher events.Publisher) *fiber.App {
	engine := html.NewFileSystem(http.FS(web.Templates()), ".html")
	engine.AddFunc("money", func(v float64) string { return fmt.Sprintf("%.2f", v) })
	engine.AddFunc("lineTotal", func(p *models.Product, quantity int) float64 {
		if p == nil {
			return 0
		}
		return p.Price * float64(quantity)
	})

	app := fiber.New(fiber.Config{
		AppName:      "cannashop",
		Views:        engine,
		ErrorHandler: middleware.ErrorHandler,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(helmet.New(helmet.Config{CrossOriginEmbedderPolicy: "unsafe-none"}))
	app.Use(middleware.DemoCart(a.DemoCartID))

	app.Use("/static", filesystem.New(filesystem.Config{Root: http.FS(web.Static())}))

	// --- API Routes ---
	api := app.Group("/api")
	api.Get("/", a.handleIndex)
	handlers.NewProductHandler(a.Products, publisher).RegisterRoutes(api)
	handlers.NewCartHandler(a.Carts).RegisterRoutes(api)
	a.streams = handlers.NewEventsHandler(a.Hub)
	a.streams.RegisterRoutes(api)

	// --- Views ---
	handlers.NewViewHandler(a.Products, a.Carts).RegisterRoutes(app)

	// --- Health Check Endpoint ---
	app.Get("/health", a.handleHealth)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("route %s %s not found", c.Method(), c.Path()))
	})
	return app
}

func (a *App) handleHealth(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":      "healthy",
		"time":        time.Now().Format(time.RFC3339),
		"store":       a.cfg.StoreDriver,
		"broker":      a.cfg.EventsBroker,
		"subscribers": a.Hub.Subscribers(),
	})
}

func (a *App) handleIndex(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "success",
		"payload": fiber.Map{
			"products": []string{
				"GET /api/products",
				"GET /api/products/:pid",
				"POST /api/products",
				"PUT /api/products/:pid",
				"DELETE /api/products/:pid",
			},
			"carts": []string{
				"POST /api/carts",
				"GET /api/carts/:cid",
				"PUT /api/carts/:cid",
				"DELETE /api/carts/:cid",
				"POST /api/carts/:cid/product/:pid",
				"PUT /api/carts/:cid/product/:pid",
				"DELETE /api/carts/:cid/product/:pid",
			},
			"events":   []string{"GET /api/events"},
			"demoCart": a.DemoCartID,
		},
	})
}

// Listen serves HTTP on the configured port until Shutdown.
func (a *App) Listen() error {
	return a.Fiber.Listen(a.cfg.AppPort)
}

// Shutdown ends open event streams and stops the HTTP server.
func (a *App) Shutdown(timeout time.Duration) error {
	if a.streams != nil {
		a.streams.Close()
	}
	return a.Fiber.ShutdownWithTimeout(timeout)
}

// Close releases the broker and store connections.
func (a *App) Close() {
	a.cancel()
	if a.bridge != nil {
		if err := a.bridge.Close(); err != nil {
			log.Printf("Error closing event relay: %v", err)
		}
	}
	if err := a.stores.Close(); err != nil {
		log.Printf("Error closing stores: %v", err)
	}
}
