package api

import (
	"errors"
	"strings"

	domain "github.com/V1per16/an0n-chat-render/domain/chat"
	"github.com/V1per16/an0n-chat-render/modules/auth"
	"github.com/gofiber/fiber/v2"
)

const (
	// SessionContextKey is the key used to store the resolved session in the
	// Fiber context.
	SessionContextKey = "session"
)

// SessionMiddleware creates a middleware that resolves an opaque bearer
// token to its session. Expired tokens are rejected the same as unknown
// ones, but with a distinct error code.
func SessionMiddleware(authAdapter auth.AuthPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get("Authorization"))
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Bearer token is required",
			})
		}

		session, err := authAdapter.ValidateSession(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, auth.ErrSessionExpired) {
				return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
					Error:   "session_expired",
					Message: "Session has expired, log in again",
				})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid session token",
			})
		}

		// Store the session for use in handlers
		c.Locals(SessionContextKey, session)

		return c.Next()
	}
}

// bearerToken extracts the token from an Authorization header value.
// Returns "" when the header is missing or malformed.
func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// sessionFromContext retrieves the session stored by SessionMiddleware.
func sessionFromContext(c *fiber.Ctx) *domain.Session {
	session, _ := c.Locals(SessionContextKey).(*domain.Session)
	return session
}
