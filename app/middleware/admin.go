package middleware

import (
	"github.com/gofiber/fiber/v2"

	"lubd/app/database"
)

func AdminMiddleware(c *fiber.Ctx) error {
	user := c.Locals("user").(database.User)

	if !user.IsStaff {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
		})
	}

	return c.Next()
}
