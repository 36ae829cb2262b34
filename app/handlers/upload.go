package handlers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lubd/app/config"
	"lubd/app/database"
	pjob "lubd/app/platform/job"
	"lubd/app/platform/storage"
)

// UploadJobImages stores one or more images for a job and records a
// JobImage row per stored file.
func UploadJobImages(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	db := c.Locals("db").(*gorm.DB)
	user := c.Locals("user").(database.User)

	jobService := pjob.NewService(db)
	storageService := storage.NewStorageService(cfg.Storage())

	jobID := c.Params("job_id")
	if _, err := jobService.GetJobByJobID(jobID); err != nil {
		return jobError(c, err)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	files := form.File["images"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "No images provided"})
	}

	var images []database.JobImage
	for _, file := range files {
		if !storageService.IsImageExtensionAllowed(file.Filename) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": fmt.Sprintf("File type not allowed: %s", file.Filename)})
		}

		ext := strings.ToLower(filepath.Ext(file.Filename))
		key := fmt.Sprintf("jobs/%s/%s%s", jobID, storageService.GenerateKeyName(), ext)

		if err := storageService.SaveFile(file, key, c); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
		}

		url := fmt.Sprintf("%s/%s/%s", cfg.S3Endpoint, cfg.S3Bucket, key)
		image, err := jobService.AttachImage(jobID, key, url, user.ID)
		if err != nil {
			return jobError(c, err)
		}
		images = append(images, *image)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"images": images, "count": len(images)})
}
