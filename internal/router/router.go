// internal/router/router.go
package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/handlers"
	"github.com/javajoker/storefront-backend/internal/middleware"
	"github.com/javajoker/storefront-backend/internal/pricing"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

const version = "1.0.0"

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	// Initialize services
	storageService, err := services.NewStorageService(cfg.AWS)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	notificationService := services.NewNotificationService(cfg)
	calculator := pricing.NewCalculator(cfg.Pricing.TaxRate, cfg.Pricing.ShippingFlat)

	authService := services.NewAuthService(db, cfg)
	userService := services.NewUserService(db)
	productService := services.NewProductService(db, storageService)
	categoryService := services.NewCategoryService(db)
	cartService := services.NewCartService(db, calculator, cfg.Cart)
	checkoutService := services.NewCheckoutService(
		db,
		cartService,
		calculator,
		services.NewOrderNumberGenerator(db, cfg.Checkout),
		notificationService,
		cfg.Checkout,
	)
	orderService := services.NewOrderService(db)
	adminService := services.NewAdminService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService, categoryService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(checkoutService, orderService)
	adminHandler := handlers.NewAdminHandler(adminService, productService, categoryService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	limits := middleware.NewRateLimits(cfg.RateLimit)

	// Initialize Gin router
	r := gin.New()
	r.MaxMultipartMemory = 16 << 20

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(limits.General.Middleware())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": version,
		})
	})

	// Locally stored product images
	if cfg.AWS.AccessKeyID == "" && cfg.AWS.LocalUploadDir != "" {
		r.Static("/uploads", cfg.AWS.LocalUploadDir)
	}

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(limits.Auth.Middleware())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetCurrentUser)
		}

		// User routes
		users := v1.Group("/users")
		users.Use(middleware.AuthRequired())
		{
			users.GET("/profile", userHandler.GetProfile)
			users.PUT("/profile", userHandler.UpdateProfile)
			users.PUT("/password", userHandler.ChangePassword)
		}

		// Catalog routes
		products := v1.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/:id", productHandler.GetProduct)
			products.GET("/slug/:slug", productHandler.GetProductBySlug)
		}
		v1.GET("/categories", productHandler.GetCategories)

		// Cart routes
		cart := v1.Group("/cart")
		{
			cart.GET("", middleware.OptionalAuth(), cartHandler.GetCart)

			protected := cart.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("/items", cartHandler.AddItem)
				protected.PUT("/items/:id", cartHandler.UpdateItem)
				protected.DELETE("/items/:id", cartHandler.RemoveItem)
				protected.DELETE("", cartHandler.ClearCart)
			}
		}

		// Checkout and order history
		v1.POST("/checkout", middleware.AuthRequired(), orderHandler.Checkout)
		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.GET("", orderHandler.GetOrders)
			orders.GET("/:id", orderHandler.GetOrder)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/dashboard/stats", adminHandler.GetDashboardStats)

			// Product management
			admin.GET("/products", adminHandler.GetProducts)
			admin.POST("/products", adminHandler.CreateProduct)
			admin.GET("/products/:id", adminHandler.GetProduct)
			admin.PUT("/products/:id", adminHandler.UpdateProduct)
			admin.DELETE("/products/:id", adminHandler.DeleteProduct)
			admin.POST("/products/:id/images", adminHandler.UploadProductImage)
			admin.DELETE("/products/:id/images", adminHandler.RemoveProductImage)

			// Category management
			admin.GET("/categories", adminHandler.GetCategories)
			admin.POST("/categories", adminHandler.CreateCategory)
			admin.PUT("/categories/:id", adminHandler.UpdateCategory)
			admin.DELETE("/categories/:id", adminHandler.DeleteCategory)

			// Orders, customers and audit trail
			admin.GET("/orders", adminHandler.GetOrders)
			admin.GET("/orders/:id", adminHandler.GetOrder)
			admin.GET("/users", adminHandler.GetUsers)
			admin.GET("/audit-logs", adminHandler.GetAuditLogs)
		}
	}

	// 404 handler
	r.NoRoute(func(c *gin.Context) {
		utils.NotFoundResponse(c, "route")
	})

	return r, nil
}
