package routes

import (
	"github.com/gofiber/fiber/v2"

	"orgsite-backend/internal/controllers"
	"orgsite-backend/internal/middleware"
	"orgsite-backend/internal/services"
)

func SetupRoutesUser(api fiber.Router, svc *services.AuthService) {
	users := api.Group("/users")

	users.Post("/register", controllers.RegisterUserHandler(svc))
	users.Post("/login", controllers.LoginHandler(svc))
	users.Get("/me", middleware.RequireAuth(), controllers.MeHandler(svc))
}
