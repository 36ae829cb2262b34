package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lubd/app/config"
	"lubd/app/database"
)

func GetTopics(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var topics []database.Topic
	if err := db.Order("id").Find(&topics).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(fiber.Map{"results": topics, "count": len(topics)})
}

func GetTopic(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var topic database.Topic
	result := db.First(&topic, c.Params("topic_id"))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Topic not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(topic)
}

func CreateTopic(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	type TopicInput struct {
		Title       string  `json:"title" validate:"required"`
		Description *string `json:"description"`
	}

	var input TopicInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	topic := database.Topic{
		Title:       input.Title,
		Description: input.Description,
	}

	if err := db.Create(&topic).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(topic)
}

func UpdateTopic(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var topic database.Topic
	result := db.First(&topic, c.Params("topic_id"))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Topic not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	type TopicInput struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}

	var input TopicInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if input.Title != nil {
		topic.Title = *input.Title
	}
	if input.Description != nil {
		topic.Description = input.Description
	}

	if err := db.Save(&topic).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(topic)
}

func DeleteTopic(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	result := db.Delete(&database.Topic{}, c.Params("topic_id"))
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Topic not found"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
