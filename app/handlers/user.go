package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lubd/app/database"
	puser "lubd/app/platform/user"
)

func GetCurrentUser(c *fiber.Ctx) error {
	user := c.Locals("user").(database.User)

	return c.JSON(user)
}

// GetUserProfile serves the profile endpoint the session gateway reads,
// including the property relation.
func GetUserProfile(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	userService := puser.NewService(db)

	user, err := userService.GetUserByID(c.Params("user_id"))
	if err != nil {
		if errors.Is(err, puser.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(user)
}

func UpdateCurrentUser(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)
	user := c.Locals("user").(database.User)

	var input database.User
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	updateNullableString := func(target **string, value *string) {
		if value != nil {
			if *value != "" {
				*target = value
			} else {
				*target = nil
			}
		}
	}

	updateNullableString(&user.Email, input.Email)
	updateNullableString(&user.ProfileImage, input.ProfileImage)
	if input.Positions != "" {
		user.Positions = input.Positions
	}

	result := db.Save(&user)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(user)
}

// AddUserProperty links a property to a user profile. Repeating the
// call for the same pair is a no-op.
func AddUserProperty(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	userService := puser.NewService(db)

	userID := c.Params("user_id")
	propertyID, err := strconv.ParseUint(c.Params("property_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid property id"})
	}

	var property database.Property
	if err := db.First(&property, uint(propertyID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Property not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	if err := userService.AddProperty(userID, uint(propertyID)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveUserProperty drops the link between a user and a property.
func RemoveUserProperty(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	userService := puser.NewService(db)

	userID := c.Params("user_id")
	propertyID, err := strconv.ParseUint(c.Params("property_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid property id"})
	}

	if err := userService.RemoveProperty(userID, uint(propertyID)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
