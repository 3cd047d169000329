// Package admin gates operations behind the fixed administrator identity.
package admin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/stakevault/stakevault/internal/identity"
)

// ErrNotAuthorized occurs when a caller other than the administrator invokes
// an admin-only operation.
var ErrNotAuthorized = errors.New("you are not authorized to perform this action")

// Service runs administrator-restricted actions against the identity resolved
// once at startup.
type Service struct {
	admin  identity.Identity
	logger *slog.Logger
}

// NewService builds the admin service.
func NewService(admin identity.Identity, logger *slog.Logger) *Service {
	return &Service{admin: admin, logger: logger}
}

// AdminOnlyAction succeeds only for the administrator identity.
func (s *Service) AdminOnlyAction(_ context.Context, caller identity.Identity) error {
	if caller != s.admin {
		return ErrNotAuthorized
	}
	s.logger.Info("admin access granted", slog.String("caller", caller.String()))
	return nil
}

// Handler exposes the admin HTTP endpoint.
type Handler struct {
	service *Service
}

// NewHandler builds an admin HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type actionRequest struct {
	Caller string `json:"caller"`
}

// Action runs the admin-only operation.
func (h *Handler) Action(c *fiber.Ctx) error {
	var req actionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	caller, err := identity.Parse(req.Caller)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.AdminOnlyAction(c.UserContext(), caller); err != nil {
		if errors.Is(err, ErrNotAuthorized) {
			return fiber.NewError(http.StatusForbidden, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "admin access granted"})
}
