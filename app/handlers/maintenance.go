package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	pjob "lubd/app/platform/job"
)

// Preventive maintenance endpoints share the job filters and always
// scope to jobs flagged for maintenance.

func GetMaintenanceJobs(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	jobService := pjob.NewService(db)

	jobs, err := jobService.GetMaintenanceJobs(jobOptionsFromQuery(c))
	if err != nil {
		return jobError(c, err)
	}

	return c.JSON(fiber.Map{"jobs": jobs, "count": len(jobs)})
}

func GetMaintenanceRooms(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	jobService := pjob.NewService(db)

	rooms, err := jobService.GetMaintenanceRooms()
	if err != nil {
		return jobError(c, err)
	}

	return c.JSON(fiber.Map{"results": rooms, "count": len(rooms)})
}

func GetMaintenanceTopics(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	jobService := pjob.NewService(db)

	topics, err := jobService.GetMaintenanceTopics()
	if err != nil {
		return jobError(c, err)
	}

	return c.JSON(fiber.Map{"results": topics, "count": len(topics)})
}

func GetMaintenanceData(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	jobService := pjob.NewService(db)

	data, err := jobService.GetMaintenanceData(jobOptionsFromQuery(c))
	if err != nil {
		return jobError(c, err)
	}

	return c.JSON(data)
}
