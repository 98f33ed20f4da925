package routes

import (
	"github.com/gofiber/fiber/v2"

	"orgsite-backend/internal/services"
)

type Services struct {
	Events        *services.EventService
	Forms         *services.FormService
	Registrations *services.RegistrationService
	Auth          *services.AuthService
}

// SetupRoutes mounts every API group under /api. The caller middleware
// (JWTOptional) must already be installed on app.
func SetupRoutes(app *fiber.App, svc Services) {
	api := app.Group("/api")
	SetupRoutesRegistration(api, svc.Registrations)
	SetupRoutesForm(api, svc.Forms)
	SetupRoutesEvent(api, svc.Events)
	SetupRoutesUser(api, svc.Auth)
}
