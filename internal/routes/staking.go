package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stakevault/stakevault/internal/stake"
)

// RegisterStakingRoutes wires the staking surface.
func RegisterStakingRoutes(router fiber.Router, h *stake.Handler) {
	group := router.Group("/staking")
	group.Post("/initialize", h.Initialize)
	group.Post("/deposit", h.Deposit)
	group.Post("/withdraw", h.Withdraw)
	group.Get("/positions/:owner", h.Position)
}
