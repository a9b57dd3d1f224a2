// internal/router/router.go
package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fieldserve/fieldserve-backend/internal/config"
	"github.com/fieldserve/fieldserve-backend/internal/handlers"
	"github.com/fieldserve/fieldserve-backend/internal/middleware"
	"github.com/fieldserve/fieldserve-backend/internal/services"
	"github.com/fieldserve/fieldserve-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	// Initialize services
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	authService := services.NewAuthService(db, cfg)
	reportService := services.NewReportService(db, storageService)
	requestService := services.NewRequestService(db)
	productService := services.NewProductService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	reportHandler := handlers.NewReportHandler(reportService)
	requestHandler := handlers.NewRequestHandler(requestService)
	productHandler := handlers.NewProductHandler(productService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Locally stored uploads when no object store is configured.
	if cfg.Environment == "development" && cfg.AWS.AccessKeyID == "" {
		r.Static("/uploads", "./uploads")
	}

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		// Service report routes
		reports := v1.Group("/reports")
		reports.Use(middleware.AuthRequired())
		{
			reports.GET("", reportHandler.ListReports)
			reports.GET("/new", reportHandler.NewReportForm)
			reports.POST("", middleware.SubmissionRateLimit(), reportHandler.CreateReport)
			reports.GET("/:id", reportHandler.GetReport)
			reports.PUT("/:id", middleware.SubmissionRateLimit(), reportHandler.UpdateReport)
		}

		// Maintenance request routes
		requests := v1.Group("/requests")
		requests.Use(middleware.AuthRequired())
		{
			requests.GET("", requestHandler.ListRequests)
			requests.POST("", requestHandler.CreateRequest)
			requests.GET("/:id", requestHandler.GetRequest)
			requests.PUT("/:id", requestHandler.UpdateRequest)
		}

		// Product catalog routes
		products := v1.Group("/products")
		products.Use(middleware.AuthRequired())
		{
			products.GET("", productHandler.ListProducts)
			products.POST("", productHandler.CreateProduct)
			products.POST("/create-ajax", productHandler.CreateProductAjax)
			products.GET("/:id", productHandler.GetProduct)
			products.PUT("/:id", productHandler.UpdateProduct)
			products.DELETE("/:id", middleware.StaffRequired(), productHandler.DeleteProduct)
		}
	}

	return r, nil
}
