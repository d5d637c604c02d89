package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Shadow52186/rs-1/internal/adapters/http/middleware"
	"github.com/Shadow52186/rs-1/internal/adapters/http/routes"
	"github.com/Shadow52186/rs-1/internal/adapters/persistence/models"
	"github.com/Shadow52186/rs-1/internal/adapters/persistence/repositories"
	"github.com/Shadow52186/rs-1/internal/config"
	"github.com/Shadow52186/rs-1/internal/core/services"

	"github.com/gofiber/fiber/v2"

	_ "github.com/Shadow52186/rs-1/docs" // Swagger docs
)

// @title RS Game Store API
// @version 1.0
// @description Storefront API for game account credentials: catalog, wallet topups and instant delivery.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@rs-shop.example.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host api.rs-shop.example.com
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed bootstrap data
	if err := config.NewSeeder(db).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed database: %v", err)
	}

	// Image storage
	assets, err := services.NewAssetService(cfg.Store.CloudinaryURL)
	if err != nil {
		log.Fatalf("❌ Failed to initialize asset storage: %v", err)
	}

	// Nightly cleanup of expired tokens and stale attempt counters
	maintenance := services.NewMaintenanceService(
		repositories.NewRefreshTokenRepository(db),
		repositories.NewLoginGuardRepository(db),
	)
	if err := maintenance.Start(); err != nil {
		log.Fatalf("❌ Failed to start maintenance scheduler: %v", err)
	}
	defer maintenance.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "RS Game Store API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg, assets)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
