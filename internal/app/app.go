// Package app assembles the HTTP surface of the bot.
package app

import (
	"github.com/gofiber/fiber/v2"

	"github.com/thc-edge/vetbot/internal/api/v1/handlers"
	"github.com/thc-edge/vetbot/internal/api/v1/middleware"
	v1 "github.com/thc-edge/vetbot/internal/api/v1/routes"
)

// New builds the fiber application: error handling, request logging,
// and the versioned routes.
func New(handler *handlers.InteractionHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})

	// Middleware
	app.Use(middleware.Logger())

	// Register versioned routes
	v1.Register(app, handler)

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
