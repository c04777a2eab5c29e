package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vostra/vostra-backend/config"
	"github.com/vostra/vostra-backend/internal/app/controller"
	"github.com/vostra/vostra-backend/internal/app/repository"
	"github.com/vostra/vostra-backend/internal/app/service"
	"github.com/vostra/vostra-backend/internal/db"
	"github.com/vostra/vostra-backend/internal/middleware"
	"github.com/vostra/vostra-backend/internal/router"
	"github.com/vostra/vostra-backend/internal/scheduler"
	"github.com/vostra/vostra-backend/pkg/logger"
	"github.com/vostra/vostra-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting VOSTRA Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis backs guest session liveness; the cart itself works without it
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, continuing without session registry", map[string]interface{}{
				"error": err.Error(),
			})
		}
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
	}

	// Initialize repositories
	cartRepo := repository.NewCartRepository(db.GetDB())
	stockRepo := repository.NewStockRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())

	// Initialize services
	cartService := service.NewCartService(db.GetDB(), cartRepo, stockRepo)
	catalogService := service.NewCatalogService(productRepo, stockRepo)
	stockService := service.NewStockService(stockRepo, productRepo)

	// Initialize controllers
	sessionController := controller.NewSessionController(cfg.Session.TTL)
	productController := controller.NewProductController(catalogService)
	cartController := controller.NewCartController(cartService)
	stockController := controller.NewStockController(stockService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		sessionController,
		productController,
		cartController,
		stockController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Stale anonymous cart cleanup
	var cleanup *scheduler.CartCleanupScheduler
	if cfg.Cleanup.Enabled {
		cleanup = scheduler.NewCartCleanupScheduler(cartRepo, cfg.Cleanup)
		if err := cleanup.Start(); err != nil {
			logger.Warn("Cart cleanup scheduler not running", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	if cleanup != nil {
		cleanup.Stop()
	}
	logger.Info("Server stopped successfully")
}
