package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"lubd/app/auth"
	"lubd/app/config"
	"lubd/app/database"
	"lubd/app/logs"
	"lubd/app/mail"
	puser "lubd/app/platform/user"
	"lubd/pkg/utils"
)

// ObtainTokenPair verifies the username and password against the local
// user table and issues an access/refresh pair. The response shape
// matches what the session gateway consumes.
func ObtainTokenPair(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	db := c.Locals("db").(*gorm.DB)

	userService := puser.NewService(db)

	type TokenInput struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	var input TokenInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	user, err := userService.GetUserByUsername(input.Username)
	if err != nil {
		if errors.Is(err, puser.ErrUserNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "No active account found with the given credentials"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	if user.PasswordHash == "" || !utils.VerifyPassword(input.Password, user.PasswordHash) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "No active account found with the given credentials"})
	}

	access, refresh, err := auth.GenerateTokenPair(cfg.JWTSecret, user.ID, user.Username)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(fiber.Map{"access": access, "refresh": refresh})
}

// RefreshTokenPair exchanges a refresh token for a fresh access token.
func RefreshTokenPair(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	db := c.Locals("db").(*gorm.DB)

	userService := puser.NewService(db)

	type RefreshInput struct {
		Refresh string `json:"refresh" validate:"required"`
	}

	var input RefreshInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	claims, err := auth.VerifyJWT(cfg.JWTSecret, input.Refresh)
	if err != nil || claims.TokenType != auth.TokenTypeRefresh {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Token is invalid or expired"})
	}

	user, err := userService.GetUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, puser.ErrUserNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Token is invalid or expired"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	access, refresh, err := auth.GenerateTokenPair(cfg.JWTSecret, user.ID, user.Username)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(fiber.Map{"access": access, "refresh": refresh})
}

// Register creates a local account.
func Register(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	userService := puser.NewService(db)

	type RegisterInput struct {
		Username string `json:"username" validate:"required,min=3"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}

	var input RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if _, err := userService.GetUserByUsername(input.Username); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Username already taken"})
	}

	user := database.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        &input.Email,
		Positions:    "User",
		PasswordHash: utils.HashPassword(input.Password),
	}

	if err := userService.Create(&user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// ForgotPassword mails a reset key to the account holder.
func ForgotPassword(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	db := c.Locals("db").(*gorm.DB)

	userService := puser.NewService(db)

	type ForgotPasswordInput struct {
		Email string `json:"email" validate:"required,email"`
	}

	var input ForgotPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	user, err := userService.GetUserByEmail(input.Email)
	if err != nil {
		if errors.Is(err, puser.ErrUserNotFound) {
			// Do not reveal whether the address exists
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "server_error"})
	}

	resetKey := database.ResetKey{
		Key:    uuid.NewString(),
		UserID: user.ID,
	}

	if err := db.Create(&resetKey).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "server_error"})
	}

	mailer := mail.NewMailer(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunAPIBase)
	if err := mailer.SendPasswordReset(input.Email, resetKey.Key); err != nil {
		logs.Logger.WithError(err).Warn(fmt.Sprintf("failed to send reset mail for user %s", user.ID))
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ResetPassword sets a new password from a reset key.
func ResetPassword(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	userService := puser.NewService(db)

	type ResetPasswordInput struct {
		ResetKey    string `json:"reset_key" validate:"required"`
		NewPassword string `json:"new_password" validate:"required,min=6"`
	}

	var input ResetPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	var resetKey database.ResetKey
	result := db.First(&resetKey, "key = ?", input.ResetKey)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_reset_key"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "server_error"})
	}

	user, err := userService.GetUserByID(resetKey.UserID)
	if err != nil {
		if errors.Is(err, puser.ErrUserNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_reset_key"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "server_error"})
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := puser.NewService(tx).UpdatePassword(user, input.NewPassword); err != nil {
			return err
		}
		return tx.Where("user_id = ?", user.ID).Delete(&database.ResetKey{}).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "server_error"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
