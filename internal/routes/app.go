package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"

	"orgsite-backend/internal/middleware"
)

type AppOptions struct {
	JWTSecret   string
	CORSOrigins string
	// AccessLog enables the request logger middleware.
	AccessLog bool
}

// errorHandler renders fiber errors (middleware rejections, unknown routes) in
// the same {"error": ...} shape the controllers use.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

// NewApp builds the fiber app with health, docs and every /api route.
func NewApp(opts AppOptions, svc Services) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "orgsite-backend",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	origins := opts.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Swagger API document
	app.Get("/docs/*", swagger.HandlerDefault)

	// Health
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	app.Use(middleware.JWTOptional(opts.JWTSecret))
	SetupRoutes(app, svc)
	return app
}
