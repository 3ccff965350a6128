package middleware

import (
	"strings"

	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "session_token"

// Identify resolves the session token from the session cookie or a Bearer
// header into c.Locals("user_id"). It never rejects a request: routes that
// tolerate anonymous access pass through, and services receive an empty user
// ID they reject themselves.
func Identify(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(SessionCookie)
		if tokenString == "" {
			authHeader := c.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			return c.Next()
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			// Expired or tampered token: treat as anonymous.
			return c.Next()
		}

		if userID, ok := claims["user_id"].(string); ok {
			c.Locals("user_id", userID)
		}
		return c.Next()
	}
}

// AuthRequired rejects requests that Identify left anonymous.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserID(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not authenticated",
			})
		}
		return c.Next()
	}
}

// UserID returns the authenticated user's ID, or "" for anonymous requests.
func UserID(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return id
	}
	return ""
}
