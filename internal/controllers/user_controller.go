package controllers

import (
	"github.com/gofiber/fiber/v2"

	"orgsite-backend/dto"
	"orgsite-backend/internal/middleware"
	"orgsite-backend/internal/services"
)

// RegisterUserHandler godoc
// @Summary Create a local account
// @Tags users
// @Accept json
// @Produce json
// @Param body body dto.UserRegisterDTO true "Account"
// @Success 201 {object} models.User
// @Failure 400 {object} dto.ErrorResponse "Missing fields, email or username taken"
// @Router /api/users/register [post]
func RegisterUserHandler(svc *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body dto.UserRegisterDTO
		if err := c.BodyParser(&body); err != nil {
			return badBody(c)
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		user, err := svc.Register(ctx, services.RegisterInput{
			Username: body.Username,
			Name:     body.Name,
			Email:    body.Email,
			Password: body.Password,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

// LoginHandler godoc
// @Summary Log in with email or username
// @Tags users
// @Accept json
// @Produce json
// @Param body body dto.UserLoginDTO true "Credentials"
// @Success 200 {object} dto.UserLoginResult
// @Failure 400 {object} dto.ErrorResponse "Invalid credentials"
// @Router /api/users/login [post]
func LoginHandler(svc *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body dto.UserLoginDTO
		if err := c.BodyParser(&body); err != nil {
			return badBody(c)
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := svc.Login(ctx, body.Email, body.Password)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.UserLoginResult{Message: "Login successful", Token: res.Token, User: res.User})
	}
}

// MeHandler godoc
// @Summary Current user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/users/me [get]
func MeHandler(svc *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		user, err := svc.Me(ctx, middleware.CallerFrom(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(user)
	}
}
