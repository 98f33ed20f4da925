package routes

import (
	"github.com/gofiber/fiber/v2"

	"orgsite-backend/internal/controllers"
	"orgsite-backend/internal/middleware"
	"orgsite-backend/internal/services"
)

func SetupRoutesForm(api fiber.Router, svc *services.FormService) {
	forms := api.Group("/forms")
	admin := middleware.AdminOnly()

	// public registration page
	forms.Get("/event/:eventUid", controllers.ActiveFormForEventHandler(svc))

	forms.Post("/", admin, controllers.CreateFormHandler(svc))
	forms.Get("/", admin, controllers.ListFormsHandler(svc))
	forms.Get("/:uid", admin, controllers.GetFormHandler(svc))
	forms.Put("/:uid", admin, controllers.UpdateFormHandler(svc))
	forms.Delete("/:uid", admin, controllers.DeleteFormHandler(svc))
	forms.Patch("/:uid/toggle", admin, controllers.ToggleFormHandler(svc))
}
