package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/topoguide/topoguide/internal/config"
	"github.com/topoguide/topoguide/internal/database"
	"github.com/topoguide/topoguide/internal/handlers"
	"github.com/topoguide/topoguide/internal/middleware"
	"github.com/topoguide/topoguide/internal/services"
	"github.com/topoguide/topoguide/internal/types"

	_ "github.com/topoguide/topoguide/docs/api" // Swagger docs
)

// @title Topoguide API
// @version 1.0.0
// @description Collaborative versioned documents for outdoor activities
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/topoguide/topoguide

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("topoguide")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Health endpoint
	app.Get("/healthz", func(c *fiber.Ctx) error {
		result := services.HealthCheck(cfg, db)
		status := fiber.StatusOK
		if result.Status != "healthy" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(result)
	})

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Document routes
	documents := api.Group("/documents")

	// Create handlers
	waypointHandler := &handlers.WaypointHandler{Service: services.NewWaypointService(db)}
	routeHandler := &handlers.RouteHandler{Service: services.NewRouteService(db)}
	imageHandler := &handlers.ImageHandler{Service: services.NewImageService(db)}

	// Waypoint routes (public GET, contributor POST/PUT)
	documents.Get("/waypoints", waypointHandler.ListWaypoints)
	documents.Get("/waypoints/:id", waypointHandler.GetWaypoint)
	documents.Get("/waypoints/:id/history", waypointHandler.GetWaypointHistory)
	documents.Post("/waypoints", middleware.AuthContributor(), waypointHandler.CreateWaypoint)
	documents.Put("/waypoints/:id", middleware.AuthContributor(), waypointHandler.UpdateWaypoint)

	// Route routes
	documents.Get("/routes", routeHandler.ListRoutes)
	documents.Get("/routes/:id", routeHandler.GetRoute)
	documents.Get("/routes/:id/history", routeHandler.GetRouteHistory)
	documents.Post("/routes", middleware.AuthContributor(), routeHandler.CreateRoute)
	documents.Put("/routes/:id", middleware.AuthContributor(), routeHandler.UpdateRoute)

	// Image routes
	documents.Get("/images", imageHandler.ListImages)
	documents.Get("/images/:id", imageHandler.GetImage)
	documents.Get("/images/:id/history", imageHandler.GetImageHistory)
	documents.Post("/images", middleware.AuthContributor(), imageHandler.CreateImage)
	documents.Put("/images/:id", middleware.AuthContributor(), imageHandler.UpdateImage)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Authorizer is initialized lazily by the auth middleware
	log.Printf("Authorizer will be initialized on first authenticated request")

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"
	field := ""

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Check if it's one of ours
	if e, ok := err.(*types.CustomError); ok {
		code = e.Code
		message = e.Message
		errorType = e.Type
		field = e.Field
	}

	// Check for version errors
	versionError := false
	if code == fiber.StatusConflict || (message != "" && len(message) >= 9 && message[:9] == "E_VERSION") {
		versionError = true
		errorType = "version"
		code = fiber.StatusConflict
	}

	body := fiber.Map{
		"status":       code,
		"message":      message,
		"ok":           false,
		"versionError": versionError,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"url":          c.OriginalURL(),
		"type":         errorType,
	}
	if field != "" {
		body["field"] = field
	}
	return c.Status(code).JSON(body)
}
