package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spf13/viper"

	"cabin/internal/config"
	"cabin/internal/handlers"
	"cabin/internal/models"
	"cabin/internal/repositories"
	"cabin/internal/services"
	"cabin/pkg/rabbitmq"
)

// App is the wired HTTP application plus the resources it must release.
type App struct {
	Fiber   *fiber.App
	Config  config.Config
	closers []func() error
}

// NewApp builds the store, services and HTTP routes described by cfg.
func NewApp(cfg config.Config) (*App, error) {
	a := &App{Config: cfg}

	// --- Initialize Repository ---
	repo, err := a.newItemRepository()
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.SeedDemoData {
		seedItems(repo)
	}

	// --- Initialize RabbitMQ Client (optional) ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		a.closers = append(a.closers, mqClient.Close)
		publisher = mqClient

		if err := mqClient.ConsumeInventoryEvents(rabbitmq.LogInventoryEvent); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	} else {
		log.Println("RABBITMQ_URL is not set. Inventory events are disabled.")
	}

	// --- Initialize Services ---
	inventoryService := services.NewInventoryService(repo, publisher)
	authService := services.NewAuthService(services.AuthConfig{
		DemoFallback: cfg.AuthDemoFallback,
		TokenSecret:  cfg.AuthTokenSecret,
	})

	// --- Initialize Fiber App ---
	a.Fiber = handlers.NewFiberApp(inventoryService, authService, handlers.RouterOptions{
		AllowOrigins: cfg.CORSAllowOrigins,
		AccessLog:    cfg.AccessLog,
	})
	return a, nil
}

func (a *App) newItemRepository() (repositories.ItemRepository, error) {
	switch a.Config.StoreBackend {
	case config.BackendSQLite:
		db, err := repositories.OpenInMemorySQLite("inventory-" + uuid.New().String())
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sql pool: %w", err)
		}
		a.closers = append(a.closers, sqlDB.Close)
		return repositories.NewGORMItemRepository(db)
	default:
		return repositories.NewMemoryItemRepository(), nil
	}
}

// Close releases every resource in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if len(errs) > 0 {
		return fmt.Errorf("errors while closing app resources: %v", errs)
	}
	return nil
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	app, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}
	defer app.Close()

	log.Printf("Cabin Inventory API running on port %s (store: %s)", cfg.Port, cfg.StoreBackend)
	log.Printf("Health check: http://localhost:%s/api/health", cfg.Port)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Fiber.Listen(cfg.ListenAddr()); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Fiber.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// seedItems populates the store with the demo user's starter items.
func seedItems(repo repositories.ItemRepository) {
	demo := models.DemoUser().UserID
	items := []models.InventoryItem{
		{Name: "Canned Beans", Quantity: 5, Unit: "cans", Category: models.CategoryPantry, Status: models.StatusEnough,
			Notes: "Good protein source", Location: "Kitchen pantry", UserID: demo},
		{Name: "Toilet Paper", Quantity: 2, Unit: "rolls", Category: models.CategoryHousehold, Status: models.StatusLow,
			Notes: "Need to buy more", Location: "Bathroom", UserID: demo},
	}

	for i := range items {
		if err := repo.Create(&items[i]); err != nil {
			log.Printf("Error seeding item %s: %v", items[i].Name, err)
		} else {
			log.Printf("Seeded item: %s (ID: %s)", items[i].Name, items[i].ID)
		}
	}
}
