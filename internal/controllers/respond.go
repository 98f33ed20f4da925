package controllers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"orgsite-backend/internal/services"
)

const requestTimeout = 5 * time.Second

func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), requestTimeout)
}

var (
	notFoundErrs = []error{
		services.ErrFormNotFound,
		services.ErrFormMissing,
		services.ErrEventNotFound,
		services.ErrRegistrationNotFound,
		services.ErrNoRegistrations,
		services.ErrUserNotFound,
	}
	badRequestErrs = []error{
		services.ErrDeadlinePassed,
		services.ErrAlreadyRegistered,
		services.ErrLimitReached,
		services.ErrInvalidStatus,
		services.ErrFormExists,
		services.ErrSlugTaken,
		services.ErrEmailTaken,
		services.ErrUsernameTaken,
		services.ErrInvalidCredentials,
	}
)

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

func statusFor(err error) int {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest
	case isAny(err, notFoundErrs):
		return fiber.StatusNotFound
	case isAny(err, badRequestErrs):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	}
	return fiber.StatusInternalServerError
}

// respondError maps service errors to a status and an {"error": ...} body.
// Unexpected errors are logged and hidden from the client.
func respondError(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	msg := err.Error()
	switch code {
	case fiber.StatusInternalServerError:
		log.Printf("%s %s: %v", c.Method(), c.Path(), err)
		msg = "internal server error"
	case fiber.StatusGatewayTimeout:
		log.Printf("%s %s: %v", c.Method(), c.Path(), err)
		msg = "request timed out"
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
}
