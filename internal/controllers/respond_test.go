package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"orgsite-backend/internal/services"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrFormNotFound, fiber.StatusNotFound},
		{services.ErrEventNotFound, fiber.StatusNotFound},
		{services.ErrNoRegistrations, fiber.StatusNotFound},
		{fmt.Errorf("cancel: %w", services.ErrRegistrationNotFound), fiber.StatusNotFound},
		{services.ErrDeadlinePassed, fiber.StatusBadRequest},
		{services.ErrLimitReached, fiber.StatusBadRequest},
		{services.ErrAlreadyRegistered, fiber.StatusBadRequest},
		{&services.ValidationError{Reason: "name is required"}, fiber.StatusBadRequest},
		{services.ErrUnauthorized, fiber.StatusUnauthorized},
		{services.ErrForbidden, fiber.StatusForbidden},
		{fmt.Errorf("list: %w", context.DeadlineExceeded), fiber.StatusGatewayTimeout},
		{errors.New("disk on fire"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRespondErrorHidesInternalErrors(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error { return respondError(c, errors.New("dial tcp 10.0.0.1: refused")) })
	app.Get("/limit", func(c *fiber.Ctx) error { return respondError(c, services.ErrLimitReached) })

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusInternalServerError || strings.Contains(string(body), "10.0.0.1") {
		t.Fatalf("boom = %d %s", resp.StatusCode, body)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/limit", nil))
	if err != nil {
		t.Fatal(err)
	}
	body, _ = io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusBadRequest || string(body) != `{"error":"registration limit reached"}` {
		t.Fatalf("limit = %d %s", resp.StatusCode, body)
	}
}
