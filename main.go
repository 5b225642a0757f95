package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"bookheaven/internal/cache"
	"bookheaven/internal/config"
	"bookheaven/internal/handlers"
	"bookheaven/internal/middleware"
	"bookheaven/internal/models"
	"bookheaven/internal/repositories"
	"bookheaven/internal/services"
	"bookheaven/pkg/database"
	"bookheaven/pkg/logger"
	"bookheaven/pkg/rabbitmq"
)

// store bundles the repositories of one storage backend.
type store struct {
	name       string
	products   repositories.ProductRepository
	brands     repositories.BrandRepository
	categories repositories.CategoryRepository
	close      func(ctx context.Context) error
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(logger.Config{
		IsDevelopment: cfg.IsDevelopment(),
		Encoding:      cfg.Logger.Encoding,
		Level:         cfg.Logger.Level,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	ctx := context.Background()

	// --- Storage ---
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		appLogger.Fatal("Failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	appLogger.Info("Store ready", zap.String("driver", st.name))

	if cfg.SeedDemo {
		if err := seedCatalog(ctx, st, appLogger); err != nil {
			appLogger.Error("Failed to seed demo catalog", zap.Error(err))
		}
	}

	// --- Listing cache (optional) ---
	var listingCache services.ListingCache
	if cfg.Redis.Addr != "" {
		client, err := cache.NewRedisClient(ctx, cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.CacheTTL,
		})
		if err != nil {
			appLogger.Warn("Listing cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			listingCache = cache.NewListingCache(client, cfg.Redis.CacheTTL)
		}
	}

	// --- Product events (optional) ---
	var publisher services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL}, appLogger)
		if err != nil {
			appLogger.Warn("Product events disabled", zap.Error(err))
		} else {
			defer mqClient.Close()
			publisher = mqClient

			err := mqClient.ConsumeProductEvents(func(event models.ProductEvent) error {
				appLogger.Info("Received product event",
					zap.String("type", event.Type),
					zap.String("product_id", event.ProductID),
					zap.Time("occurred_at", event.OccurredAt),
				)
				return nil
			})
			if err != nil {
				appLogger.Error("Failed to start product event consumer", zap.Error(err))
			}
		}
	}

	app := newApp(st, publisher, listingCache, cfg.Server.CORSOrigins, appLogger)

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		appLogger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := app.Listen(cfg.Server.Port); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-quit
	appLogger.Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("Error during Fiber shutdown", zap.Error(err))
	}

	closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := st.close(closeCtx); err != nil {
		appLogger.Error("Error closing store", zap.Error(err))
	}
	appLogger.Info("Server gracefully stopped")
}

// newApp wires services and handlers onto a Fiber app. publisher and
// listingCache may be nil.
func newApp(st *store, publisher services.EventPublisher, listingCache services.ListingCache, corsOrigins string, appLogger *zap.Logger) *fiber.App {
	productService := services.NewProductService(st.products, publisher, listingCache, appLogger)
	brandService := services.NewBrandService(st.brands)
	categoryService := services.NewCategoryService(st.categories)

	app := fiber.New(fiber.Config{
		AppName:      "Book Heaven",
		ErrorHandler: middleware.ErrorHandler(appLogger),
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  corsOrigins,
		AllowMethods:  "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		ExposeHeaders: handlers.TotalCountHeader,
	}))

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	handlers.NewProductHandler(productService, appLogger).RegisterRoutes(apiV1)
	handlers.NewCatalogHandler(brandService, categoryService).RegisterRoutes(apiV1)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"store":  st.name,
		})
	})

	return app
}

// openStore connects the backend selected by cfg.Driver.
func openStore(ctx context.Context, cfg config.StoreConfig) (*store, error) {
	switch cfg.Driver {
	case config.StoreMemory:
		return newMemoryStore(), nil

	case config.StoreSQLite, config.StorePostgres:
		db, err := database.OpenGORM(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sql.DB: %w", err)
		}
		return &store{
			name:       cfg.Driver,
			products:   repositories.NewGORMProductRepository(db),
			brands:     repositories.NewGORMBrandRepository(db),
			categories: repositories.NewGORMCategoryRepository(db),
			close:      func(context.Context) error { return sqlDB.Close() },
		}, nil

	case config.StoreMongo:
		client, err := database.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		return &store{
			name:       cfg.Driver,
			products:   repositories.NewMongoProductRepository(db),
			brands:     repositories.NewMongoBrandRepository(db),
			categories: repositories.NewMongoCategoryRepository(db),
			close:      client.Disconnect,
		}, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
}

func newMemoryStore() *store {
	brands := repositories.NewMemoryBrandRepository()
	categories := repositories.NewMemoryCategoryRepository()
	return &store{
		name:       config.StoreMemory,
		products:   repositories.NewMemoryProductRepository(brands, categories),
		brands:     brands,
		categories: categories,
		close:      func(context.Context) error { return nil },
	}
}

// seedCatalog fills an empty store with a few brands, categories and books.
// Stores that already hold brands are left alone.
func seedCatalog(ctx context.Context, st *store, appLogger *zap.Logger) error {
	existing, err := st.brands.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		appLogger.Debug("Catalog already seeded", zap.Int("brands", len(existing)))
		return nil
	}

	brands := map[string]*models.Brand{
		"ace":     {Name: "Ace Books"},
		"penguin": {Name: "Penguin Classics"},
	}
	for _, b := range brands {
		if err := st.brands.Create(ctx, b); err != nil {
			return err
		}
	}
	categories := map[string]*models.Category{
		"scifi":   {Name: "Science Fiction"},
		"classic": {Name: "Classics"},
	}
	for _, c := range categories {
		if err := st.categories.Create(ctx, c); err != nil {
			return err
		}
	}

	books := []struct {
		title, summary, brand, category, cover string
		price                                  float64
		stock                                  int
	}{
		{"Dune", "A desert planet and the spice that rules it.", "ace", "scifi", "/images/dune.jpg", 9.99, 12},
		{"Neuromancer", "The novel that named cyberspace.", "ace", "scifi", "/images/neuromancer.jpg", 8.49, 5},
		{"The Left Hand of Darkness", "An envoy on a world without fixed gender.", "ace", "scifi", "/images/left-hand.jpg", 10.5, 7},
		{"Pride and Prejudice", "Manners, marriage and first impressions.", "penguin", "classic", "/images/pride.jpg", 6.99, 20},
		{"Moby-Dick", "A captain's pursuit of the white whale.", "penguin", "classic", "/images/moby-dick.jpg", 7.99, 3},
	}
	for _, b := range books {
		p := models.Product{
			Title:         b.title,
			Summary:       b.summary,
			Price:         b.price,
			BrandID:       brands[b.brand].ID,
			CategoryID:    categories[b.category].ID,
			StockQuantity: b.stock,
			CoverImage:    b.cover,
		}
		if err := st.products.Create(ctx, &p); err != nil {
			return fmt.Errorf("failed to seed %q: %w", b.title, err)
		}
		appLogger.Debug("Seeded product", zap.String("title", p.Title), zap.String("id", p.ID))
	}
	appLogger.Info("Seeded demo catalog", zap.Int("products", len(books)))
	return nil
}
