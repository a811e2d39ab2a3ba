package api

import (
	"github.com/gofiber/fiber/v2"
)

type toast struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
	Variant     string `json:"variant,omitempty"`
}

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// apiToastError reports a user-actionable failure with a dismissible
// notification payload.
func apiToastError(c *fiber.Ctx, status int, message string, notification toast) error {
	notification.Variant = "destructive"
	return c.Status(status).JSON(fiber.Map{"error": message, "toast": notification})
}
