package controllers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"orgsite-backend/dto"
	"orgsite-backend/internal/services"
)

// ActiveFormForEventHandler godoc
// @Summary Get the active registration form of an event
// @Tags forms
// @Produce json
// @Param eventUid path string true "Event UID"
// @Success 200 {object} models.RegistrationForm
// @Failure 404 {object} dto.ErrorResponse "Form not found or inactive"
// @Router /api/forms/event/{eventUid} [get]
func ActiveFormForEventHandler(svc *services.FormService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		form, err := svc.ActiveForEvent(ctx, c.Params("eventUid"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(form)
	}
}

// CreateFormHandler godoc
// @Summary Create a registration form
// @Description One form per event. Fields without an id get one assigned.
// @Tags forms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.FormCreateDTO true "Form"
// @Success 201 {object} dto.FormResult
// @Failure 400 {object} dto.ErrorResponse "Invalid fields or form already exists"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /api/forms [post]
func CreateFormHandler(svc *services.FormService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body dto.FormCreateDTO
		if err := c.BodyParser(&body); err != nil {
			return badBody(c)
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		form, err := svc.Create(ctx, services.FormInput{
			EventUID:             body.EventUID,
			CustomFields:         body.CustomFields,
			MaxRegistrations:     body.MaxRegistrations,
			RegistrationDeadline: body.RegistrationDeadline,
			ConfirmationMessage:  body.ConfirmationMessage,
			IsActive:             body.IsActive,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(dto.FormResult{Message: "Form created successfully", Form: form})
	}
}

// ListFormsHandler godoc
// @Summary List registration forms
// @Description Newest first.
// @Tags forms
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.RegistrationForm
// @Router /api/forms [get]
func ListFormsHandler(svc *services.FormService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		forms, err := svc.List(ctx)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(forms)
	}
}

// GetFormHandler godoc
// @Summary Get a registration form
// @Tags forms
// @Produce json
// @Security BearerAuth
// @Param uid path string true "Form UID"
// @Success 200 {object} models.RegistrationForm
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/forms/{uid} [get]
func GetFormHandler(svc *services.FormService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		form, err := svc.Get(ctx, c.Params("uid"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(form)
	}
}

func formUpdateFromDTO(body dto.FormUpdateDTO) (services.FormUpdate, error) {
	upd := services.FormUpdate{
		CustomFields:        body.CustomFields,
		MaxRegistrations:    body.MaxRegistrations,
		ConfirmationMessage: body.ConfirmationMessage,
		IsActive:            body.IsActive,
	}
	if body.RegistrationDeadline != nil {
		raw := strings.TrimSpace(*body.RegistrationDeadline)
		if raw == "" {
			upd.ClearDeadline = true
		} else {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return upd, fiber.NewError(fiber.StatusBadRequest, "registrationDeadline must be an RFC 3339 timestamp")
			}
			upd.RegistrationDeadline = &t
		}
	}
	return upd, nil
}

// UpdateFormHandler godoc
// @Summary Update a registration form
// @Description Partial update. The event of a form cannot be changed.
// @Tags forms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uid path string true "Form UID"
// @Param body body dto.FormUpdateDTO true "Fields to change"
// @Success 200 {object} dto.FormResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/forms/{uid} [put]
func UpdateFormHandler(svc *services.FormService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body dto.FormUpdateDTO
		if err := c.BodyParser(&body); err != nil {
			return badBody(c)
		}
		upd, err := formUpdateFromDTO(body)
		if err != nil {
			return err
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if body.EventUID != "" {
			current, err := svc.Get(ctx, c.Params("uid"))
			if err != nil {
				return respondError(c, err)
			}
			if current.EventUID != body.EventUID {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "eventUid cannot be changed"})
			}
		}

		form, err := svc.Update(ctx, c.Params("uid"), upd)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.FormResult{Message: "Form updated successfully", Form: form})
	}
}

// DeleteFormHandler godoc
// @Summary Delete a registration form
// @Description Registrations of the form are kept.
// @Tags forms
// @Produce json
// @Security BearerAuth
// @Param uid path string true "Form UID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/forms/{uid} [delete]
func DeleteFormHandler(svc *services.FormService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		if err := svc.Delete(ctx, c.Params("uid")); err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.MessageResponse{Message: "Form deleted successfully"})
	}
}

// ToggleFormHandler godoc
// @Summary Toggle a form between active and inactive
// @Tags forms
// @Produce json
// @Security BearerAuth
// @Param uid path string true "Form UID"
// @Success 200 {object} dto.FormResult
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/forms/{uid}/toggle [patch]
func ToggleFormHandler(svc *services.FormService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		form, err := svc.Toggle(ctx, c.Params("uid"))
		if err != nil {
			return respondError(c, err)
		}
		msg := "Form deactivated"
		if form.IsActive {
			msg = "Form activated"
		}
		return c.JSON(dto.FormResult{Message: msg, Form: form})
	}
}
