package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/storepulse/storepulse/internal/pkg/apperrors"
)

// errorResponse maps a domain error onto the JSON error envelope.
func errorResponse(c *fiber.Ctx, err error) error {
	status := apperrors.HTTPStatus(err)
	return c.Status(status).JSON(fiber.Map{"error": errorSlug(status), "message": err.Error()})
}

func errorSlug(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "validation_error"
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusBadGateway:
		return "upstream_error"
	default:
		return "internal_server_error"
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": message})
}
