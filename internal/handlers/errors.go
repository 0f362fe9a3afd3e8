package handlers

import (
	"errors"
	"log"

	"cabin/internal/apperrors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the single place where errors become HTTP responses.
// It is installed as the Fiber app's ErrorHandler, so handlers just return.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var validationErr *apperrors.ValidationError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &validationErr):
		body := fiber.Map{"error": validationErr.Message}
		if len(validationErr.Fields) > 0 {
			body["fields"] = validationErr.Fields
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case errors.Is(err, apperrors.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Item not found"})
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	case errors.As(err, &fiberErr):
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}

	log.Printf("Unexpected error on %s %s: %v", c.Method(), c.Path(), err)
	message := err.Error()
	if message == "" {
		message = "Internal server error"
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": message})
}
