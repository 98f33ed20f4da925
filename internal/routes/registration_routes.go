package routes

import (
	"github.com/gofiber/fiber/v2"

	"orgsite-backend/internal/controllers"
	"orgsite-backend/internal/middleware"
	"orgsite-backend/internal/services"
)

func SetupRoutesRegistration(api fiber.Router, svc *services.RegistrationService) {
	reg := api.Group("/registrations")
	admin := middleware.AdminOnly()

	// Anonymous submits are allowed; a logged in caller becomes the owner.
	reg.Post("/event/:eventUid", controllers.SubmitRegistrationHandler(svc))

	reg.Get("/my", middleware.RequireAuth(), controllers.MyRegistrationsHandler(svc))
	reg.Patch("/my/:uid/cancel", middleware.RequireAuth(), controllers.CancelMyRegistrationHandler(svc))

	reg.Get("/event/:eventUid/list", admin, controllers.EventRegistrationsHandler(svc))
	reg.Get("/event/:eventUid/export", admin, controllers.ExportRegistrationsHandler(svc))
	reg.Get("/form/:formUid", admin, controllers.FormRegistrationsHandler(svc))

	// /:uid last so the static prefixes above win
	reg.Get("/:uid", admin, controllers.GetRegistrationHandler(svc))
	reg.Patch("/:uid/status", admin, controllers.UpdateRegistrationStatusHandler(svc))
	reg.Delete("/:uid", admin, controllers.DeleteRegistrationHandler(svc))
}
