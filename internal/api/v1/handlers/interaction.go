// Package handlers terminates the inbound webhook surface: signature
// check, payload parsing, and the liveness probe.
package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/thc-edge/vetbot/internal/discord"
	"github.com/thc-edge/vetbot/internal/services"
)

// InteractionHandler handles interaction webhook requests.
type InteractionHandler struct {
	verifier *discord.Verifier
	router   *services.Router
}

// NewInteractionHandler creates a handler that authenticates requests
// with the verifier and dispatches them through the router.
func NewInteractionHandler(verifier *discord.Verifier, router *services.Router) *InteractionHandler {
	return &InteractionHandler{
		verifier: verifier,
		router:   router,
	}
}

// HandleInteraction processes a single interaction request. The
// signature covers the raw body, so it is checked before any parsing.
func (h *InteractionHandler) HandleInteraction(c *fiber.Ctx) error {
	signature := c.Get(discord.HeaderSignature)
	timestamp := c.Get(discord.HeaderTimestamp)
	if !h.verifier.Verify(signature, timestamp, c.Body()) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid request signature",
		})
	}

	var interaction discord.Interaction
	if err := json.Unmarshal(c.Body(), &interaction); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "malformed interaction payload",
		})
	}

	resp, err := h.router.Route(c.Context(), &interaction)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to route interaction: %v", err),
		})
	}

	return c.JSON(resp)
}

// HealthCheck reports service liveness.
func HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}
