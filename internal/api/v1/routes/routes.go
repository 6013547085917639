package v1

import (
	"github.com/thc-edge/vetbot/internal/api/v1/handlers"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all the v1 routes
func SetupRoutes(router fiber.Router, handler *handlers.InteractionHandler) {
	// Interactions webhook - the single inbound endpoint
	interactions := router.Group("/interactions")
	interactions.Post("/", handler.HandleInteraction).Name("interactions.handle")
}

// Register registers the v1 routes and the health probe
func Register(app *fiber.App, handler *handlers.InteractionHandler) {
	app.Get("/health", handlers.HealthCheck).Name("health")

	// API v1 routes
	v1Group := app.Group("/api/v1")
	SetupRoutes(v1Group, handler)
}
