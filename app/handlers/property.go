package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lubd/app/config"
	"lubd/app/database"
)

// GetProperties lists the properties linked to the current user. Staff
// accounts see everything.
func GetProperties(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)
	user := c.Locals("user").(database.User)

	var properties []database.Property

	query := db.Preload("Rooms").Order("id")
	if !user.IsStaff {
		query = query.Joins("JOIN user_properties up ON up.property_id = properties.id").
			Where("up.user_id = ?", user.ID)
	}

	if err := query.Find(&properties).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(fiber.Map{"results": properties, "count": len(properties)})
}

func GetProperty(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var property database.Property
	result := db.Preload("Rooms").Where("property_id = ?", c.Params("property_id")).First(&property)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Property not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(property)
}

func CreateProperty(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	type PropertyInput struct {
		Name        string  `json:"name" validate:"required"`
		Description *string `json:"description"`
	}

	var input PropertyInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	property := database.Property{
		Name:        input.Name,
		Description: input.Description,
	}

	if err := db.Create(&property).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(property)
}

func UpdateProperty(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var property database.Property
	result := db.Where("property_id = ?", c.Params("property_id")).First(&property)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Property not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	type PropertyInput struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}

	var input PropertyInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if input.Name != nil {
		property.Name = *input.Name
	}
	if input.Description != nil {
		property.Description = input.Description
	}

	if err := db.Save(&property).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(property)
}

func DeleteProperty(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	result := db.Where("property_id = ?", c.Params("property_id")).Delete(&database.Property{})
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Property not found"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
