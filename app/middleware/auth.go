package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lubd/app/auth"
	"lubd/app/config"
	"lubd/app/database"
)

const (
	AuthProviderJWT     = "jwt"
	AuthProviderSession = "session"
)

const (
	HeaderXSessionToken = "X-Session-Token"
)

func AuthMiddleware(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	db := c.Locals("db").(*gorm.DB)

	sessionToken := c.Get(HeaderXSessionToken)
	if sessionToken != "" {
		var session database.Session
		result := db.Where("session_token = ?", sessionToken).First(&session)
		if result.Error != nil || session.IsExpired() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthorized",
			})
		}

		var user database.User
		result = db.Where("id = ?", session.UserID).Preload("Properties").First(&user)
		if result.Error != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Internal server error",
			})
		}

		c.Locals("auth_provider", AuthProviderSession)
		c.Locals("user", user)

		return c.Next()
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
		})
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
		})
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")

	claims, err := auth.VerifyJWT(cfg.JWTSecret, token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
		})
	}

	var user database.User
	result := db.Where("id = ?", claims.UserID).Preload("Properties").First(&user)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthorized",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	c.Locals("auth_provider", AuthProviderJWT)
	c.Locals("user", user)

	return c.Next()
}
