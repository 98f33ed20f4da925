package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"orgsite-backend/internal/models"
	"orgsite-backend/internal/utils"
)

const (
	localUserID = "user_id"
	localRole   = "role"
	localEmail  = "email"
)

// JWTOptional attaches the caller when a valid bearer token is present. Requests
// without one, or with an invalid or expired one, continue anonymously; protected
// routes reject them in RequireAuth / AdminOnly.
func JWTOptional(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		if auth == "" || !strings.HasPrefix(strings.ToLower(auth), "bearer ") {
			return c.Next()
		}

		claims, err := utils.ParseToken(secret, strings.TrimSpace(auth[7:]))
		if err != nil {
			return c.Next()
		}

		c.Locals(localUserID, claims.UID)
		c.Locals(localRole, claims.Role)
		c.Locals(localEmail, claims.Email)
		return c.Next()
	}
}

// CallerFrom returns the identity set by JWTOptional; anonymous when none.
func CallerFrom(c *fiber.Ctx) models.Caller {
	uid, _ := c.Locals(localUserID).(string)
	role, _ := c.Locals(localRole).(string)
	if uid == "" {
		return models.Caller{}
	}
	return models.Caller{UID: uid, Role: models.Role(role)}
}

func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !CallerFrom(c).Authenticated() {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		return c.Next()
	}
}

func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := CallerFrom(c)
		if !caller.Authenticated() {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		if !caller.IsAdmin() {
			return fiber.NewError(fiber.StatusForbidden, "admin access required")
		}
		return c.Next()
	}
}
