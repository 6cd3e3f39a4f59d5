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
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/testpulse/testpulse/config"
	"github.com/testpulse/testpulse/handlers"
	"github.com/testpulse/testpulse/middleware"
	"github.com/testpulse/testpulse/services"
	"github.com/testpulse/testpulse/store"
	"github.com/testpulse/testpulse/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Validate configuration
	if errors := cfg.Validate(); len(errors) > 0 {
		log.Fatal("Configuration validation failed:", errors)
	}

	// Initialize logger
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
	logger := utils.GetLogger()
	logger.Info("Starting TestPulse Backend", map[string]interface{}{
		"version":     "1.0.0",
		"environment": cfg.Environment,
		"port":        cfg.Port,
		"results_dir": cfg.ResultsDir,
		"archive_dir": cfg.ArchiveDir,
	})

	// Create Fiber app with configuration
	app := createFiberApp(logger)

	// Setup middleware
	setupMiddleware(app, cfg)

	// Setup routes
	setupRoutes(app, cfg, logger)

	// Start server with graceful shutdown
	startServerWithGracefulShutdown(app, cfg, logger)
}

// createFiberApp creates and configures the Fiber application
func createFiberApp(logger *utils.Logger) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      "TestPulse Backend v1.0.0",
		ServerHeader: "TestPulse",
		ErrorHandler: createErrorHandler(logger),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    10 * 1024 * 1024, // 10MB
	})
}

// setupMiddleware configures all middleware for the application
func setupMiddleware(app *fiber.App, cfg *config.Config) {
	// Recovery middleware (should be first)
	app.Use(recover.New(recover.Config{
		EnableStackTrace: cfg.IsDevelopment(),
	}))

	// Correlation ID middleware
	app.Use(middleware.CorrelationID())

	// CORS middleware
	corsOrigins := []string{cfg.FrontendURL}
	if cfg.IsDevelopment() {
		corsOrigins = append(corsOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}
	app.Use(middleware.CORSWithOrigins(corsOrigins))

	// Request logging middleware
	app.Use(middleware.RequestLogging())
}

// setupRoutes configures all routes for the application
func setupRoutes(app *fiber.App, cfg *config.Config, logger *utils.Logger) {
	// Health check endpoint
	app.Get("/health", healthCheckHandler(cfg))

	// API version group
	api := app.Group("/api")

	// Initialize storage and services
	st := store.NewDiskStore()
	resultsService := services.NewResultsService(cfg, st, logger)
	archiveService := services.NewArchiveService(cfg, st, logger)
	flakyService := services.NewFlakyService(cfg, st, logger)
	testCaseService := services.NewTestCaseService(cfg, st, logger)
	coverageService := services.NewCoverageService(cfg, st, logger)
	caseTimesService := services.NewCaseTimesService(cfg, st, logger)

	// Initialize handlers
	resultsHandler := handlers.NewResultsHandler(resultsService, archiveService)
	flakyHandler := handlers.NewFlakyHandler(flakyService)
	testCaseHandler := handlers.NewTestCaseHandler(testCaseService)
	coverageHandler := handlers.NewCoverageHandler(coverageService)
	caseTimesHandler := handlers.NewCaseTimesHandler(caseTimesService)

	// Setup results routes
	setupResultsRoutes(api, resultsHandler)

	// Flaky test detection
	api.Get("/flaky-tests", flakyHandler.GetFlakyTests)

	// Test case catalog
	api.Get("/test-cases", testCaseHandler.GetTestCases)

	// Coverage routes
	coverage := api.Group("/coverage")
	coverage.Get("/files", coverageHandler.GetFiles)

	// Case timing routes
	caseTimes := api.Group("/case-times")
	caseTimes.Get("/files", caseTimesHandler.GetFiles)
	caseTimes.Get("/history", caseTimesHandler.GetHistory)

	// Basic API info endpoint
	api.Get("/", func(c *fiber.Ctx) error {
		return utils.SuccessResponse(c, "TestPulse API", fiber.Map{
			"version":     "1.0.0",
			"environment": cfg.Environment,
			"endpoints": []string{
				"GET /health - Health check",
				"GET /api - API information",
				"GET /api/results - Latest (or dated) test results",
				"GET /api/results/all - All live result files",
				"GET /api/results/dates - Available result dates",
				"GET /api/results/history - Per-date run summaries",
				"GET /api/results/trends - Pass/fail trend series",
				"GET /api/results/suite-durations - Suite duration series",
				"POST /api/results/archive - Archive live result files",
				"GET /api/flaky-tests - Flaky test analysis",
				"GET /api/test-cases - Parsed test case catalog",
				"GET /api/coverage/files - Spec file coverage analysis",
				"GET /api/case-times/files - Tests grouped per spec file",
				"GET /api/case-times/history - Per-test duration history",
			},
		})
	})

	logger.Info("Routes configured successfully", map[string]interface{}{
		"health_endpoint": "/health",
		"api_base":        "/api",
	})
}

// setupResultsRoutes configures test-result routes
func setupResultsRoutes(api fiber.Router, resultsHandler *handlers.ResultsHandler) {
	// Results routes group
	results := api.Group("/results")

	results.Get("/", resultsHandler.GetResults)
	results.Get("/all", resultsHandler.GetAllResults)
	results.Get("/dates", resultsHandler.GetDates)
	results.Get("/history", resultsHandler.GetHistory)
	results.Get("/trends", resultsHandler.GetTrends)
	results.Get("/suite-durations", resultsHandler.GetSuiteDurations)
	results.Post("/archive", resultsHandler.ArchiveResults)
}

// healthCheckHandler creates the health check endpoint handler
func healthCheckHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := fiber.Map{
			"status":      "healthy",
			"message":     "TestPulse Backend is running",
			"version":     "1.0.0",
			"environment": cfg.Environment,
			"timestamp":   time.Now().UTC(),
			"uptime":      time.Since(startTime).String(),
			"checks": fiber.Map{
				"server": "ok",
				"config": "ok",
			},
		}

		return utils.SuccessResponse(c, "Health check passed", health)
	}
}

// createErrorHandler creates a custom error handler for Fiber
func createErrorHandler(logger *utils.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		// Default to 500 server error
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		// Check if it's a Fiber error
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		}

		// Log the error
		traceID := utils.GetTraceID(c)
		logger.WithTraceID(traceID).WithSource("error_handler").Error(
			"Request error", err, map[string]interface{}{
				"method":     c.Method(),
				"path":       c.Path(),
				"status":     code,
				"ip":         c.IP(),
				"user_agent": c.Get("User-Agent"),
			})

		// Return error response
		return utils.ErrorResponse(c, code, "REQUEST_ERROR", message, nil)
	}
}

// startServerWithGracefulShutdown starts the server with graceful shutdown handling
func startServerWithGracefulShutdown(app *fiber.App, cfg *config.Config, logger *utils.Logger) {
	// Channel to listen for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		address := ":" + cfg.Port
		logger.Info("Server starting", map[string]interface{}{
			"address":     address,
			"environment": cfg.Environment,
		})

		fmt.Printf("Server starting on port %s\n", cfg.Port)
		fmt.Printf("Health check available at: http://localhost:%s/health\n", cfg.Port)

		if err := app.Listen(address); err != nil {
			logger.Error("Server failed to start", err, map[string]interface{}{
				"address": address,
			})
			log.Fatal("Server failed to start:", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	logger.Info("Shutdown signal received, starting graceful shutdown...")

	// Create a context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server forced to shutdown", err, nil)
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server shutdown completed successfully")
}

// Global variable to track server start time for uptime calculation
var startTime = time.Now()
