package routes

import (
	"github.com/gofiber/fiber/v2"

	"orgsite-backend/internal/controllers"
	"orgsite-backend/internal/middleware"
	"orgsite-backend/internal/services"
)

func SetupRoutesEvent(api fiber.Router, svc *services.EventService) {
	events := api.Group("/events")

	events.Post("/", middleware.AdminOnly(), controllers.CreateEventHandler(svc))
	events.Get("/:uid", controllers.GetEventHandler(svc))
	events.Delete("/:uid", middleware.AdminOnly(), controllers.DeleteEventHandler(svc))
}
