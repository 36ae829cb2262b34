package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"lubd/app/config"
	"lubd/app/database"
	"lubd/app/handlers"
	"lubd/app/logs"
	"lubd/app/middleware"
	psession "lubd/app/platform/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logs.Init(logs.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}

	sessions := psession.NewService(db, cfg.UpstreamAPIURL, logs.Logger)

	app := fiber.New()

	app.Use(compress.New())
	app.Use(helmet.New())
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(healthcheck.New())
	app.Use(middleware.LoggerMiddleware)

	app.Use(func(c *fiber.Ctx) error {
		c.Locals("config", cfg)
		c.Locals("db", db)
		c.Locals("sessions", sessions)
		return c.Next()
	})

	api := app.Group("/api")

	// Identity provider surface; the same contract the session gateway
	// consumes, so the gateway can point at this server or an external one.
	api.Post("/token/", handlers.ObtainTokenPair)
	api.Post("/token/refresh/", handlers.RefreshTokenPair)

	auth := api.Group("/auth")
	auth.Post("/register", handlers.Register)
	auth.Post("/login", handlers.Login)
	auth.Post("/logout", handlers.Logout)
	auth.Get("/session", handlers.GetSession)
	auth.Post("/session/refresh", handlers.RefreshSession)
	auth.Get("/check", middleware.AuthMiddleware, handlers.AuthCheck)
	auth.Post("/forgot-password", handlers.ForgotPassword)
	auth.Post("/reset-password", handlers.ResetPassword)

	profiles := api.Group("/user-profiles", middleware.AuthMiddleware)
	profiles.Get("/me/", handlers.GetCurrentUser)
	profiles.Put("/me/", handlers.UpdateCurrentUser)
	profiles.Get("/:user_id/", handlers.GetUserProfile)
	profiles.Post("/:user_id/add_property/:property_id/", handlers.AddUserProperty)
	profiles.Post("/:user_id/remove_property/:property_id/", handlers.RemoveUserProperty)

	properties := api.Group("/properties", middleware.AuthMiddleware)
	properties.Get("/", handlers.GetProperties)
	properties.Post("/", middleware.AdminMiddleware, handlers.CreateProperty)
	properties.Get("/:property_id/", handlers.GetProperty)
	properties.Put("/:property_id/", middleware.AdminMiddleware, handlers.UpdateProperty)
	properties.Delete("/:property_id/", middleware.AdminMiddleware, handlers.DeleteProperty)

	rooms := api.Group("/rooms", middleware.AuthMiddleware)
	rooms.Get("/", handlers.GetRooms)
	rooms.Post("/", handlers.CreateRoom)
	rooms.Get("/:room_id/", handlers.GetRoom)
	rooms.Put("/:room_id/", handlers.UpdateRoom)
	rooms.Delete("/:room_id/", handlers.DeleteRoom)

	topics := api.Group("/topics", middleware.AuthMiddleware)
	topics.Get("/", handlers.GetTopics)
	topics.Post("/", handlers.CreateTopic)
	topics.Get("/:topic_id/", handlers.GetTopic)
	topics.Put("/:topic_id/", handlers.UpdateTopic)
	topics.Delete("/:topic_id/", handlers.DeleteTopic)

	jobs := api.Group("/jobs", middleware.AuthMiddleware)
	jobs.Get("/", handlers.GetJobs)
	jobs.Post("/", handlers.CreateJob)
	jobs.Get("/stats/", handlers.GetJobStats)
	jobs.Get("/:job_id/", handlers.GetJob)
	jobs.Put("/:job_id/", handlers.UpdateJob)
	jobs.Delete("/:job_id/", handlers.DeleteJob)
	jobs.Patch("/:job_id/update_status/", handlers.UpdateJobStatus)
	jobs.Post("/:job_id/images/", handlers.UploadJobImages)

	maintenance := api.Group("/preventive-maintenance", middleware.AuthMiddleware)
	maintenance.Get("/jobs/", handlers.GetMaintenanceJobs)
	maintenance.Get("/rooms/", handlers.GetMaintenanceRooms)
	maintenance.Get("/topics/", handlers.GetMaintenanceTopics)
	maintenance.Get("/data/", handlers.GetMaintenanceData)

	diag := api.Group("/diag")
	diag.Get("/ip", handlers.GetIP)
	diag.Get("/headers", handlers.GetHeaders)

	app.Use(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})

	log.Fatal(app.Listen(fmt.Sprintf(":%d", cfg.ServerPort)))
}
