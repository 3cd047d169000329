package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stakevault/stakevault/internal/mint"
)

// RegisterTokenRoutes wires the token issuance surface.
func RegisterTokenRoutes(router fiber.Router, h *mint.Handler) {
	group := router.Group("/tokens")
	group.Post("/mints", h.CreateMint)
	group.Post("/accounts", h.CreateAccount)
	group.Post("/mint", h.MintTo)
	group.Post("/transfer", h.Transfer)
}
