package controllers

import (
	"github.com/gofiber/fiber/v2"

	"orgsite-backend/dto"
	"orgsite-backend/internal/services"
)

// CreateEventHandler godoc
// @Summary Create an event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.EventCreateDTO true "Event"
// @Success 201 {object} models.Event
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/events [post]
func CreateEventHandler(svc *services.EventService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body dto.EventCreateDTO
		if err := c.BodyParser(&body); err != nil {
			return badBody(c)
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		event, err := svc.Create(ctx, services.EventInput{
			Title:           body.Title,
			Slug:            body.Slug,
			Description:     body.Description,
			Date:            body.Date,
			Location:        body.Location,
			MaxParticipants: body.MaxParticipants,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(event)
	}
}

// GetEventHandler godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Param uid path string true "Event UID"
// @Success 200 {object} models.Event
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/events/{uid} [get]
func GetEventHandler(svc *services.EventService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		event, err := svc.Get(ctx, c.Params("uid"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(event)
	}
}

// DeleteEventHandler godoc
// @Summary Delete an event
// @Description Also deletes the event's form and registrations.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param uid path string true "Event UID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/events/{uid} [delete]
func DeleteEventHandler(svc *services.EventService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		if err := svc.Delete(ctx, c.Params("uid")); err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.MessageResponse{Message: "Event deleted successfully"})
	}
}
