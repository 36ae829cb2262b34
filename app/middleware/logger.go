package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"lubd/app/logs"
)

// LoggerMiddleware writes a structured entry per request.
func LoggerMiddleware(c *fiber.Ctx) error {
	start := time.Now()

	err := c.Next()

	entry := logs.Logger.WithFields(logrus.Fields{
		"method":     c.Method(),
		"path":       c.Path(),
		"status":     c.Response().StatusCode(),
		"duration":   time.Since(start).String(),
		"request_id": c.Locals("requestid"),
	})

	if err != nil {
		entry.WithError(err).Error("request failed")
	} else {
		entry.Info("request")
	}

	return err
}
