package handlers

import (
	"time"

	"cabin/internal/middleware"
	"cabin/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// RouterOptions tunes the middleware stack.
type RouterOptions struct {
	AllowOrigins string // CORS origins, "*" when empty
	AccessLog    bool
}

// NewFiberApp builds the Fiber app with its middleware and every route
// mounted under /api.
func NewFiberApp(inventoryService *services.InventoryService, authService *services.AuthService, opts RouterOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "cabin-inventory",
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})

	// --- Middleware ---
	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	allowOrigins := opts.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + services.PrincipalHeader,
	}))

	api := app.Group("/api")
	api.Get("/health", HandleHealth)

	NewAuthHandler(authService).RegisterRoutes(api)

	protected := api.Group("", middleware.IdentityRequired(authService))
	NewInventoryHandler(inventoryService).RegisterRoutes(protected)

	return app
}

// HandleHealth reports liveness. It needs no identity.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
