package routes

import (
	"github.com/Shadow52186/rs-1/internal/adapters/http/handlers"
	"github.com/Shadow52186/rs-1/internal/adapters/http/middleware"
	"github.com/Shadow52186/rs-1/internal/adapters/persistence/repositories"
	"github.com/Shadow52186/rs-1/internal/config"
	"github.com/Shadow52186/rs-1/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, assets *services.AssetService) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	productRepo := repositories.NewProductRepository(db)
	stockRepo := repositories.NewStockRepository(db)
	purchaseRepo := repositories.NewPurchaseRepository(db)
	topupRepo := repositories.NewTopupRepository(db)
	guardRepo := repositories.NewLoginGuardRepository(db)

	// External clients
	byshop := services.NewByShopClient(cfg.Store)
	recaptcha := services.NewRecaptchaVerifier(cfg.Store.RecaptchaSecret)

	// Initialize services
	loginGuardService := services.NewLoginGuardService(guardRepo, cfg)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, loginGuardService, recaptcha, cfg)
	catalogService := services.NewCatalogService(categoryRepo, productRepo, stockRepo, assets, db)
	stockService := services.NewStockService(stockRepo, productRepo)
	purchaseService := services.NewPurchaseService(db, userRepo, productRepo, stockRepo, purchaseRepo)
	topupService := services.NewTopupService(db, userRepo, topupRepo, byshop, cfg)
	statsService := services.NewStatsService(db, purchaseRepo, topupRepo)
	userAdminService := services.NewUserAdminService(userRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	categoryHandler := handlers.NewCategoryHandler(catalogService)
	productHandler := handlers.NewProductHandler(catalogService)
	stockHandler := handlers.NewStockHandler(stockService)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService)
	topupHandler := handlers.NewTopupHandler(topupService)
	adminHandler := handlers.NewAdminHandler(userAdminService, loginGuardService, statsService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	setupAuthRoutes(apiV1.Group("/auth"), authHandler, loginGuardService, cfg)
	setupPublicCatalogRoutes(apiV1, categoryHandler, productHandler)
	setupUserRoutes(apiV1, purchaseHandler, topupHandler, cfg)
	setupAdminRoutes(apiV1.Group("/admin"), categoryHandler, productHandler, stockHandler,
		purchaseHandler, topupHandler, adminHandler, cfg)
}

// setupAuthRoutes configures authentication routes.
// Login and register sit behind both the ban check and the short-window
// rate limiter; the ban check runs first so banned IPs always see the
// same fixed message.
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, guard *services.LoginGuardService, cfg *config.Config) {
	banCheck := middleware.BanCheck(guard)

	router.Post("/register", banCheck, middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", banCheck, middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", middleware.AuthRateLimiter(), handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupPublicCatalogRoutes configures the public storefront routes
func setupPublicCatalogRoutes(router fiber.Router, categoryHandler *handlers.CategoryHandler, productHandler *handlers.ProductHandler) {
	router.Get("/categories", categoryHandler.List)
	router.Get("/categories/:id", categoryHandler.Get)
	router.Get("/categories/:id/products", categoryHandler.Products)

	router.Get("/products", productHandler.List)
	router.Get("/products/featured", productHandler.Featured)
	router.Get("/products/:id", productHandler.Get)
}

// setupUserRoutes configures routes for authenticated buyers
func setupUserRoutes(router fiber.Router, purchaseHandler *handlers.PurchaseHandler, topupHandler *handlers.TopupHandler, cfg *config.Config) {
	auth := middleware.AuthMiddleware(cfg)

	router.Post("/products/:id/buy", auth, purchaseHandler.Buy)
	router.Get("/purchases", auth, purchaseHandler.History)

	// Topups hit the payment gateway, so they get the strict limiter
	topupRoutes := router.Group("/topup")
	topupRoutes.Use(auth)
	topupRoutes.Post("/slip", middleware.PaymentRateLimiter(), topupHandler.VerifySlip)
	topupRoutes.Post("/gift", middleware.PaymentRateLimiter(), topupHandler.RedeemGiftLink)
	topupRoutes.Get("/history", topupHandler.History)
}

// setupAdminRoutes configures admin-only routes
func setupAdminRoutes(
	router fiber.Router,
	categoryHandler *handlers.CategoryHandler,
	productHandler *handlers.ProductHandler,
	stockHandler *handlers.StockHandler,
	purchaseHandler *handlers.PurchaseHandler,
	topupHandler *handlers.TopupHandler,
	adminHandler *handlers.AdminHandler,
	cfg *config.Config,
) {
	router.Use(middleware.AuthMiddleware(cfg))
	router.Use(middleware.AdminOnly())

	// Catalog management
	router.Post("/categories", categoryHandler.Create)
	router.Put("/categories/:id", categoryHandler.Update)
	router.Delete("/categories/:id", categoryHandler.Delete)

	router.Post("/products", productHandler.Create)
	router.Put("/products/:id", productHandler.Update)
	router.Delete("/products/:id", productHandler.Delete)

	// Stock management
	router.Get("/products/:id/stock", stockHandler.ListByProduct)
	router.Post("/products/:id/stock", stockHandler.Add)
	router.Post("/products/:id/stock/batch", stockHandler.AddBatch)
	router.Put("/stock/:id", stockHandler.Update)
	router.Delete("/stock/:id", stockHandler.Delete)

	// Sales & topup logs
	router.Get("/sales", purchaseHandler.SalesLog)
	router.Get("/topups", topupHandler.AllHistory)

	// User management
	router.Get("/users", adminHandler.ListUsers)
	router.Get("/users/:id", adminHandler.GetUser)
	router.Put("/users/:id", adminHandler.UpdateUser)
	router.Delete("/users/:id", adminHandler.DeleteUser)

	// Ban management
	router.Get("/banned-ips", adminHandler.ListBannedIPs)
	router.Delete("/banned-ips/:ip", adminHandler.UnbanIP)

	// Dashboard
	router.Get("/stats", adminHandler.Stats)
}
