package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"lubd/app/config"
	psession "lubd/app/platform/session"
)

// Login runs the full sign-in flow against the upstream identity
// provider and returns the materialized session object.
func Login(c *fiber.Ctx) error {
	sessions := c.Locals("sessions").(*psession.Service)

	type LoginInput struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	userSession, err := sessions.Login(c.Context(), input.Username, input.Password)
	if err != nil {
		if errors.Is(err, psession.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid credentials"})
		}
		if errors.Is(err, psession.ErrMalformedTokenResponse) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "Identity provider returned an unusable response"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(userSession)
}

// GetSession resolves a session token back into the session object.
func GetSession(c *fiber.Ctx) error {
	sessions := c.Locals("sessions").(*psession.Service)

	token := c.Get("X-Session-Token")
	if token == "" {
		token = c.Query("session_token")
	}
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Missing session token"})
	}

	userSession, err := sessions.Get(token)
	if err != nil {
		if errors.Is(err, psession.ErrSessionNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(userSession)
}

// RefreshSession rotates the upstream access token for a session.
func RefreshSession(c *fiber.Ctx) error {
	sessions := c.Locals("sessions").(*psession.Service)

	type RefreshInput struct {
		SessionToken string `json:"session_token" validate:"required"`
	}

	var input RefreshInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	userSession, err := sessions.Refresh(c.Context(), input.SessionToken)
	if err != nil {
		if errors.Is(err, psession.ErrSessionNotFound) || errors.Is(err, psession.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(userSession)
}

// Logout drops the session row. Idempotent.
func Logout(c *fiber.Ctx) error {
	sessions := c.Locals("sessions").(*psession.Service)

	token := c.Get("X-Session-Token")
	if token == "" {
		type LogoutInput struct {
			SessionToken string `json:"session_token"`
		}
		var input LogoutInput
		if err := c.BodyParser(&input); err == nil {
			token = input.SessionToken
		}
	}
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Missing session token"})
	}

	if err := sessions.Logout(token); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// AuthCheck reports whether the presented credentials resolve to a user.
func AuthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"authenticated": true})
}
