package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stakevault/stakevault/internal/admin"
)

// RegisterAdminRoutes wires administrator-only endpoints.
func RegisterAdminRoutes(router fiber.Router, h *admin.Handler) {
	router.Post("/admin/action", h.Action)
}
