package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UserIDKey is the fiber locals key carrying the authenticated user id.
const UserIDKey = "user_id"

// RequireAuth is a fiber middleware that validates the Authorization bearer
// token and stores the authenticated user id in the request locals.
func RequireAuth(issuer *TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized: no token provided",
			})
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims, err := issuer.Validate(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized: invalid or expired token",
			})
		}

		c.Locals(UserIDKey, claims.UserID)
		return c.Next()
	}
}

// AuthenticatedUserID returns the user id stored by RequireAuth, or 0 when
// the request is unauthenticated.
func AuthenticatedUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals(UserIDKey).(uint); ok {
		return id
	}
	return 0
}
