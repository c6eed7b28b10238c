package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/turuapp/backend/api/http/handlers"
)

// Register wires all HTTP routes onto given Fiber app.
func Register(app *fiber.App, accounts *handlers.AccountHandler, health *handlers.HealthHandler) {
	api := app.Group("/api")

	// Health and readiness endpoints for probes/monitoring
	api.Get("/ping", health.Ping)
	api.Get("/ready", health.Ready)

	api.Post("/login", accounts.Login)
	api.Post("/register", accounts.Register)

	u := api.Group("/user")
	u.Get("/:id", accounts.Profile)
	u.Put("/:id", accounts.UpdateProfile)
	u.Put("/:id/password", accounts.ChangePassword)
	u.Post("/:id/profile-picture", accounts.UploadPicture)
}
