package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lubd/app/config"
	"lubd/app/database"
)

func GetRooms(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var rooms []database.Room

	query := db.Order("id")
	if roomType := c.Query("room_type"); roomType != "" {
		query = query.Where("room_type = ?", roomType)
	}
	if c.QueryBool("active_only") {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Find(&rooms).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(fiber.Map{"results": rooms, "count": len(rooms)})
}

func GetRoom(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var room database.Room
	result := db.First(&room, c.Params("room_id"))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Room not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(room)
}

func CreateRoom(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	type RoomInput struct {
		Name     string `json:"name" validate:"required"`
		RoomType string `json:"room_type"`
	}

	var input RoomInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	room := database.Room{
		Name:     input.Name,
		RoomType: input.RoomType,
		IsActive: true,
	}

	if err := db.Create(&room).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(room)
}

func UpdateRoom(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var room database.Room
	result := db.First(&room, c.Params("room_id"))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Room not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	type RoomInput struct {
		Name     *string `json:"name"`
		RoomType *string `json:"room_type"`
		IsActive *bool   `json:"is_active"`
	}

	var input RoomInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if input.Name != nil {
		room.Name = *input.Name
	}
	if input.RoomType != nil {
		room.RoomType = *input.RoomType
	}
	if input.IsActive != nil {
		room.IsActive = *input.IsActive
	}

	if err := db.Save(&room).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(room)
}

func DeleteRoom(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	result := db.Delete(&database.Room{}, c.Params("room_id"))
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Room not found"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
