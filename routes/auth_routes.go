package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hospitalhq/hospital_ops/handlers"
)

func AuthRoutes(app *fiber.App) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/login", handlers.LoginUser)
}
