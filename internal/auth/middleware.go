package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/launchlist/waitlist-service/internal/domain"
	"github.com/launchlist/waitlist-service/pkg/util/errorutil"
)

const sessionKey = "admin_session"

// SessionAuthorizer validates a presented session token.
type SessionAuthorizer interface {
	Authorize(ctx context.Context, token string) (*domain.AdminSession, error)
}

// SessionMiddleware guards admin routes with the session cookie.
type SessionMiddleware struct {
	authorizer SessionAuthorizer
	cookieName string
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(authorizer SessionAuthorizer, cookieName string) *SessionMiddleware {
	return &SessionMiddleware{authorizer: authorizer, cookieName: cookieName}
}

// Handle rejects the request before any handler runs unless a valid session is presented.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	token := m.TokenFromRequest(c)
	if token == "" {
		return errorutil.NewUnauthorized("authentication required")
	}

	session, err := m.authorizer.Authorize(c.UserContext(), token)
	if err != nil {
		return errorutil.NewUnauthorized("authentication required")
	}

	c.Locals(sessionKey, session)
	return c.Next()
}

// TokenFromRequest reads the session cookie, falling back to a bearer header.
func (m *SessionMiddleware) TokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies(m.cookieName); token != "" {
		return token
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// SessionFromContext retrieves the authenticated admin session.
func SessionFromContext(c *fiber.Ctx) (*domain.AdminSession, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	session, ok := val.(*domain.AdminSession)
	return session, ok
}
