package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// RequirePrincipal ensures the session belongs to the configured admin identity,
// so sessions issued before the admin username changed stop working.
func RequirePrincipal(principal string) fiber.Handler {
	expected := []byte(principal)
	return func(c *fiber.Ctx) error {
		session, ok := SessionFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, "authentication required")
		}
		if subtle.ConstantTimeCompare([]byte(session.Principal), expected) != 1 {
			return fiber.NewError(http.StatusForbidden, "admin session required")
		}
		return c.Next()
	}
}
