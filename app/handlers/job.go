package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lubd/app/config"
	"lubd/app/database"
	pjob "lubd/app/platform/job"
)

func jobOptionsFromQuery(c *fiber.Ctx) pjob.GetAllJobsOptions {
	return pjob.GetAllJobsOptions{
		Status:   c.Query("status"),
		Property: c.Query("property"),
		Limit:    c.QueryInt("limit"),
		Offset:   c.QueryInt("offset"),
	}
}

func jobError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, pjob.ErrJobNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Job not found"})
	case errors.Is(err, pjob.ErrInvalidStatus), errors.Is(err, pjob.ErrInvalidPriority),
		errors.Is(err, pjob.ErrMaintenanceNeedsScope):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
}

func GetJobs(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)
	user := c.Locals("user").(database.User)

	jobService := pjob.NewService(db)

	options := jobOptionsFromQuery(c)
	if !user.IsStaff && c.QueryBool("mine") {
		options.UserID = user.ID
	}

	jobs, err := jobService.GetAllJobs(options)
	if err != nil {
		return jobError(c, err)
	}

	return c.JSON(fiber.Map{"jobs": jobs, "count": len(jobs)})
}

func GetJob(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	jobService := pjob.NewService(db)

	job, err := jobService.GetJobByJobID(c.Params("job_id"))
	if err != nil {
		return jobError(c, err)
	}

	return c.JSON(job)
}

func CreateJob(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)
	user := c.Locals("user").(database.User)

	jobService := pjob.NewService(db)

	var input pjob.CreateJobInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	job, err := jobService.CreateJob(user.ID, input)
	if err != nil {
		return jobError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(job)
}

func UpdateJob(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)
	user := c.Locals("user").(database.User)

	jobService := pjob.NewService(db)

	var input pjob.UpdateJobInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	job, err := jobService.UpdateJob(c.Params("job_id"), user.ID, input)
	if err != nil {
		return jobError(c, err)
	}

	return c.JSON(job)
}

func DeleteJob(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	jobService := pjob.NewService(db)

	if err := jobService.DeleteJob(c.Params("job_id")); err != nil {
		return jobError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// UpdateJobStatus transitions a job through the status workflow.
func UpdateJobStatus(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)
	user := c.Locals("user").(database.User)

	jobService := pjob.NewService(db)

	type StatusInput struct {
		Status string `json:"status" validate:"required"`
	}

	var input StatusInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	job, err := jobService.UpdateStatus(c.Params("job_id"), user.ID, database.JobStatus(input.Status))
	if err != nil {
		return jobError(c, err)
	}

	return c.JSON(job)
}

func GetJobStats(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	jobService := pjob.NewService(db)

	stats, err := jobService.GetStats()
	if err != nil {
		return jobError(c, err)
	}

	return c.JSON(stats)
}
