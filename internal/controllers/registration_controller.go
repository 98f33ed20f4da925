package controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"orgsite-backend/dto"
	"orgsite-backend/internal/middleware"
	"orgsite-backend/internal/services"
)

// SubmitRegistrationHandler godoc
// @Summary Submit a registration
// @Description Register for an event through its active form. A bearer token is optional; when present the registration is linked to the user.
// @Tags registrations
// @Accept json
// @Produce json
// @Param eventUid path string true "Event UID"
// @Param body body dto.RegistrationSubmitDTO true "Registration"
// @Success 201 {object} dto.RegistrationSubmitResult
// @Failure 400 {object} dto.ErrorResponse "Deadline passed, limit reached, already registered or invalid input"
// @Failure 404 {object} dto.ErrorResponse "Form or event not found"
// @Router /api/registrations/event/{eventUid} [post]
func SubmitRegistrationHandler(svc *services.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body dto.RegistrationSubmitDTO
		if err := c.BodyParser(&body); err != nil {
			return badBody(c)
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := svc.Submit(ctx, c.Params("eventUid"), services.SubmissionInput{
			Name:        body.Name,
			Email:       body.Email,
			Phone:       body.Phone,
			Nationality: body.Nationality,
			School:      body.School,
			Department:  body.Department,
			StudentID:   body.StudentID,
			Responses:   body.CustomResponses,
		}, middleware.CallerFrom(c))
		if err != nil {
			return respondError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(dto.RegistrationSubmitResult{
			Message:             "Registration submitted successfully",
			Registration:        res.Registration,
			ConfirmationMessage: res.ConfirmationMessage,
		})
	}
}

// MyRegistrationsHandler godoc
// @Summary List my registrations
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Registration
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/registrations/my [get]
func MyRegistrationsHandler(svc *services.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		regs, err := svc.ListForOwner(ctx, middleware.CallerFrom(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(regs)
	}
}

// CancelMyRegistrationHandler godoc
// @Summary Cancel one of my registrations
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param uid path string true "Registration UID"
// @Success 200 {object} dto.RegistrationResult
// @Failure 404 {object} dto.ErrorResponse "Not found or not yours"
// @Router /api/registrations/my/{uid}/cancel [patch]
func CancelMyRegistrationHandler(svc *services.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		reg, err := svc.CancelOwn(ctx, c.Params("uid"), middleware.CallerFrom(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.RegistrationResult{Message: "Registration cancelled successfully", Registration: reg})
	}
}

// EventRegistrationsHandler godoc
// @Summary List registrations for an event
// @Description Newest first.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventUid path string true "Event UID"
// @Success 200 {array} models.Registration
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/registrations/event/{eventUid}/list [get]
func EventRegistrationsHandler(svc *services.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		regs, err := svc.ListForEvent(ctx, c.Params("eventUid"), middleware.CallerFrom(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(regs)
	}
}

// ExportRegistrationsHandler godoc
// @Summary Export registrations as CSV
// @Tags registrations
// @Produce text/csv
// @Security BearerAuth
// @Param eventUid path string true "Event UID"
// @Success 200 {file} file
// @Failure 404 {object} dto.ErrorResponse "No registrations found"
// @Router /api/registrations/event/{eventUid}/export [get]
func ExportRegistrationsHandler(svc *services.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		eventUID := c.Params("eventUid")
		data, err := svc.Export(ctx, eventUID, middleware.CallerFrom(c))
		if err != nil {
			return respondError(c, err)
		}

		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="registrations-%s-%d.csv"`, eventUID, time.Now().UnixMilli()))
		return c.Send(data)
	}
}

// FormRegistrationsHandler godoc
// @Summary List registrations for a form
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param formUid path string true "Form UID"
// @Success 200 {array} models.Registration
// @Router /api/registrations/form/{formUid} [get]
func FormRegistrationsHandler(svc *services.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		regs, err := svc.ListForForm(ctx, c.Params("formUid"), middleware.CallerFrom(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(regs)
	}
}

// GetRegistrationHandler godoc
// @Summary Get a registration
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param uid path string true "Registration UID"
// @Success 200 {object} models.Registration
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/registrations/{uid} [get]
func GetRegistrationHandler(svc *services.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		reg, err := svc.Get(ctx, c.Params("uid"), middleware.CallerFrom(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(reg)
	}
}

// UpdateRegistrationStatusHandler godoc
// @Summary Update registration status
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uid path string true "Registration UID"
// @Param body body dto.RegistrationStatusDTO true "pending, confirmed or cancelled"
// @Success 200 {object} models.Registration
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/registrations/{uid}/status [patch]
func UpdateRegistrationStatusHandler(svc *services.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body dto.RegistrationStatusDTO
		if err := c.BodyParser(&body); err != nil {
			return badBody(c)
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		reg, err := svc.UpdateStatus(ctx, c.Params("uid"), body.Status, middleware.CallerFrom(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(reg)
	}
}

// DeleteRegistrationHandler godoc
// @Summary Delete a registration
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param uid path string true "Registration UID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/registrations/{uid} [delete]
func DeleteRegistrationHandler(svc *services.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		if err := svc.Delete(ctx, c.Params("uid"), middleware.CallerFrom(c)); err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.MessageResponse{Message: "Registration deleted successfully"})
	}
}
