package middleware

import (
	"shopfront/internal/apperror"
	"shopfront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// TokenHeader carries the opaque auth token on every protected request.
const TokenHeader = "token"

const localUserID = "user_id"

// UserAuth requires a valid user token and stores the user id in Locals.
func UserAuth(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(TokenHeader)
		if token == "" {
			return apperror.Unauthenticated("Not Authorized Login Again")
		}

		userID, err := authService.ValidateUserToken(token)
		if err != nil {
			return err
		}

		c.Locals(localUserID, userID)
		return c.Next()
	}
}

// AdminAuth requires a valid admin token.
func AdminAuth(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(TokenHeader)
		if token == "" {
			return apperror.Unauthenticated("Not Authorized Login Again")
		}
		if err := authService.ValidateAdminToken(token); err != nil {
			return err
		}
		return c.Next()
	}
}

// UserID returns the id stored by UserAuth, or "" outside a user route.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}
