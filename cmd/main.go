package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"stocktrail/internal/caching"
	"stocktrail/internal/handlers"
	"stocktrail/internal/importer"
	"stocktrail/internal/jobs"
	"stocktrail/internal/middleware"
	"stocktrail/internal/models"
	"stocktrail/internal/repositories"
	"stocktrail/internal/services"
	"stocktrail/pkg/database"
)

func main() {
	ctx := context.Background()

	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(ctx, databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret: %s", jwtSecret)
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin" // Default for development
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin" // Default for development
	}
	minioUseSSL := os.Getenv("MINIO_USE_SSL") == "true"

	// Create repositories
	itemRepo := repositories.NewItemRepo(pool)
	locationRepo := repositories.NewLocationRepo(pool)
	stockRepo := repositories.NewStockRepo(pool)
	movementRepo := repositories.NewMovementRepo(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create services
	movementSvc := services.NewMovementService(pool, itemRepo, locationRepo, stockRepo, movementRepo, cacheSvc)
	stockSvc := services.NewStockService(stockRepo, cacheSvc)
	locationSvc := services.NewLocationService(locationRepo)
	itemSvc := services.NewItemService(itemRepo, stockRepo, movementSvc, cacheSvc)

	attachmentSvc, err := services.NewAttachmentService(minioEndpoint, minioAccessKey, minioSecretKey, minioUseSSL, movementRepo)
	if err != nil {
		log.Fatalf("Failed to initialize attachment service: %v", err)
	}

	csvImporter := importer.NewCSVImporter(itemSvc, locationSvc, itemRepo, locationRepo)

	// Create handlers
	movementHandlers := handlers.NewMovementHandlers(movementSvc, attachmentSvc)
	itemHandlers := handlers.NewItemHandlers(itemSvc, csvImporter)
	locationHandlers := handlers.NewLocationHandlers(locationSvc)
	stockHandlers := handlers.NewStockHandlers(stockSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// Background jobs
	sweepInterval := 30 * time.Minute
	if intervalStr := os.Getenv("LOW_STOCK_SWEEP_INTERVAL"); intervalStr != "" {
		if parsed, err := time.ParseDuration(intervalStr); err == nil {
			sweepInterval = parsed
		}
	}
	sweeper, err := jobs.NewLowStockSweeper(stockRepo, itemRepo, sweepInterval)
	if err != nil {
		log.Fatalf("Failed to create low stock sweeper: %v", err)
	}
	if err := sweeper.Start(); err != nil {
		log.Fatalf("Failed to start low stock sweeper: %v", err)
	}
	defer sweeper.Stop()

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	// API routes
	v1 := e.Group("/v1")
	v1.Use(versionMiddleware.VersionHeader("v1"))

	jwtConfig := echojwt.Config{
		SigningKey: []byte(jwtSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(middleware.AuthClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(401, "Invalid token")
		},
	}

	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(jwtConfig))
	protected.Use(middleware.ResolveIdentity())

	managerOrAdmin := middleware.RequireRole(models.RoleAdmin, models.RoleManager)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	// Movement routes
	protected.POST("/stock-movements", movementHandlers.SubmitMovement)
	protected.GET("/stock-movements", movementHandlers.ListMovements)
	protected.GET("/stock-movements/pending", movementHandlers.ListPendingMovements, managerOrAdmin)
	protected.PATCH("/stock-movements/:id", movementHandlers.ResolveMovement, managerOrAdmin)
	protected.GET("/stock-movements/item/:id", movementHandlers.ItemMovementHistory)
	protected.POST("/stock-movements/:id/attachment", movementHandlers.AttachFile)
	protected.GET("/stock-movements/:id/attachment", movementHandlers.AttachmentURL)

	// Item routes
	protected.GET("/items", itemHandlers.ListItems)
	protected.POST("/items", itemHandlers.CreateItem, managerOrAdmin)
	protected.GET("/items/categories", itemHandlers.ListCategories)
	protected.GET("/items/:id", itemHandlers.GetItem)
	protected.PUT("/items/:id", itemHandlers.UpdateItem, managerOrAdmin)
	protected.DELETE("/items/:id", itemHandlers.DeleteItem, adminOnly)
	protected.GET("/items/:id/stock", stockHandlers.ItemAllocations)
	protected.POST("/items/import", itemHandlers.ImportCSV, managerOrAdmin)

	// Location routes
	protected.GET("/locations", locationHandlers.ListLocations)
	protected.POST("/locations", locationHandlers.CreateLocation, managerOrAdmin)
	protected.GET("/locations/:id", locationHandlers.GetLocation)
	protected.PUT("/locations/:id", locationHandlers.UpdateLocation, managerOrAdmin)
	protected.DELETE("/locations/:id", locationHandlers.DeleteLocation, adminOnly)

	// Stock routes
	protected.GET("/stock/low", stockHandlers.LowStock)
	protected.GET("/stock/:item_id/:location_id", stockHandlers.GetQuantity)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("Stocktrail server starting on port %d", port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
