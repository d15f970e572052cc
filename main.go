package main

import (
	"log"

	"github.com/A25-CS060-teamAsah/backend/config"
	"github.com/A25-CS060-teamAsah/backend/database"
	"github.com/A25-CS060-teamAsah/backend/handlers"
	"github.com/A25-CS060-teamAsah/backend/jobs"
	"github.com/A25-CS060-teamAsah/backend/middleware"
	"github.com/A25-CS060-teamAsah/backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load config
	cfg := config.LoadConfig()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	// Connect to database
	if err := database.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// Core services
	cacheStore := services.NewCacheStore(cfg.CacheDefaultTTL, cfg.CacheCheckInterval, config.PendingTTL)
	defer cacheStore.Stop()

	scoringGateway := services.NewScoringGateway(cfg.MLServiceURL, cfg.MLServiceTimeout)
	customerService := services.NewCustomerService(database.DB)
	predictionService := services.NewPredictionService(database.DB)
	csvService := services.NewCSVService()
	userService := services.NewUserService(database.DB)

	autoPredictService := services.NewAutoPredictService(
		customerService,
		predictionService,
		scoringGateway,
		cacheStore,
		cfg.AutoPredictBatchSize,
	)

	// Background scheduler
	autoPredictJob := jobs.NewAutoPredictJob(autoPredictService, cacheStore, scoringGateway, cfg.AutoPredictSchedule, cfg.AutoPredictEnabled)
	if cfg.AutoPredictEnabled {
		autoPredictJob.Start()
		defer autoPredictJob.Stop()
	} else {
		logrus.Info("Auto-predict job disabled by configuration")
	}

	// Handlers
	customerHandler := handlers.NewCustomerHandler(customerService, cacheStore, autoPredictService)
	uploadHandler := handlers.NewUploadHandler(csvService, customerService, autoPredictService)
	predictionHandler := handlers.NewPredictionHandler(predictionService)
	autoPredictHandler := handlers.NewAutoPredictHandler(autoPredictJob, cacheStore, scoringGateway)
	authHandler := handlers.NewAuthHandler(userService, cfg.JWTSecret)
	healthHandler := handlers.NewHealthHandler(scoringGateway)

	// Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	// Health check endpoint
	app.Get("/health", healthHandler.Health)

	// Routes
	api := app.Group("/api/v1")

	// Auth Routes
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	protected := middleware.Protected(cfg.JWTSecret)

	// Customer Routes
	api.Get("/customers", protected, customerHandler.GetCustomers)
	api.Post("/customers", protected, customerHandler.CreateCustomer)
	api.Get("/customers/template", protected, uploadHandler.DownloadTemplate)
	api.Post("/customers/upload", protected, uploadHandler.UploadCustomers)
	api.Get("/customers/:id", protected, customerHandler.GetCustomerByID)
	api.Put("/customers/:id", protected, customerHandler.UpdateCustomer)
	api.Delete("/customers/:id", protected, customerHandler.DeleteCustomer)
	api.Post("/customers/:id/predict", protected, customerHandler.PredictCustomer)

	// Prediction Routes
	api.Get("/customers/:id/predictions", protected, predictionHandler.GetHistoryForCustomer)
	api.Get("/customers/:id/predictions/latest", protected, predictionHandler.GetLatestForCustomer)
	api.Get("/predictions/stats", protected, predictionHandler.GetStats)

	// Auto-predict Routes
	api.Get("/autopredict/status", protected, autoPredictHandler.GetStatus)
	api.Post("/autopredict/trigger", protected, autoPredictHandler.TriggerSweep)

	// Cache and metrics Routes
	api.Get("/cache/stats", protected, autoPredictHandler.GetCacheStats)
	api.Get("/metrics/gateway", protected, autoPredictHandler.GetGatewayMetrics)

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
