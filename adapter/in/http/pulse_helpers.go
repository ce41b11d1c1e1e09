package http

import (
	"pulse_server/infra/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GetUserID extracts the authenticated user from the fiber context.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	return middleware.GetUserID(c)
}
