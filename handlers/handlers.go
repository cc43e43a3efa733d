// handlers/handlers.go - Shared handler wiring.
package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"mediahub/realtime"
	"mediahub/services"
)

var (
	svc      *services.Service
	hub      *realtime.Hub
	validate = validator.New()
)

// Init hands the handlers their collaborators. Must run before any route is
// served.
func Init(s *services.Service, h *realtime.Hub) {
	svc = s
	hub = h
}

// parseBody decodes and validates a request DTO in one step.
func parseBody(c *fiber.Ctx, dest interface{}) error {
	if err := c.BodyParser(dest); err != nil {
		return fiber.NewError(400, "Invalid request body")
	}
	if err := validate.Struct(dest); err != nil {
		return fiber.NewError(400, err.Error())
	}
	return nil
}

// serviceError maps a core error onto an HTTP response without leaking
// internals on data-access failures.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case services.IsValidation(err):
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrNotificationNotFound):
		return c.Status(404).JSON(fiber.Map{"success": false, "error": err.Error()})
	default:
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Something went wrong. Please try again."})
	}
}
