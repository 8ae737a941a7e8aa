package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/launchlist/waitlist-service/internal/api/dto"
	"github.com/launchlist/waitlist-service/internal/config"
	"github.com/launchlist/waitlist-service/internal/domain"
	"github.com/launchlist/waitlist-service/internal/observability"
)

// AdminAuthenticator logs admins in and out.
type AdminAuthenticator interface {
	Authenticate(ctx context.Context, username, password, clientID string) (*domain.AdminSession, string, error)
	Logout(ctx context.Context, token string) error
}

// DashboardService serves admin analytics.
type DashboardService interface {
	ComputeDashboard(ctx context.Context, trailingDays int) (*domain.DashboardSnapshot, error)
	ListSignups(ctx context.Context, page, pageSize int) (*domain.SignupPage, error)
}

// AdminHandler exposes the admin login and analytics endpoints.
type AdminHandler struct {
	auth      AdminAuthenticator
	analytics DashboardService
	metrics   *observability.Metrics
	cookie    config.AdminConfig
	tokenFrom func(*fiber.Ctx) string
}

// NewAdminHandler constructs handler. tokenFrom extracts the presented session token.
func NewAdminHandler(authenticator AdminAuthenticator, analytics DashboardService, metrics *observability.Metrics, cookie config.AdminConfig, tokenFrom func(*fiber.Ctx) string) *AdminHandler {
	return &AdminHandler{
		auth:      authenticator,
		analytics: analytics,
		metrics:   metrics,
		cookie:    cookie,
		tokenFrom: tokenFrom,
	}
}

// Login handles POST /admin/login.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	session, token, err := h.auth.Authenticate(c.UserContext(), req.Username, req.Password, c.IP())
	if err != nil {
		return toHTTPError(c, err)
	}

	c.Cookie(h.sessionCookie(token, session.ExpiresAt))
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(fiber.Map{"data": dto.AdminSessionResponse{
		Principal: session.Principal,
		ExpiresAt: session.ExpiresAt,
	}})
}

// Logout handles POST /admin/logout.
func (h *AdminHandler) Logout(c *fiber.Ctx) error {
	token := h.tokenFrom(c)
	c.Cookie(h.sessionCookie("", time.Unix(0, 0)))
	if err := h.auth.Logout(c.UserContext(), token); err != nil {
		return toHTTPError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Dashboard handles GET /admin/dashboard.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	snapshot, err := h.analytics.ComputeDashboard(c.UserContext(), parseInt(c.Query("days"), 0))
	if err != nil {
		return toHTTPError(c, err)
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(fiber.Map{"data": dto.NewDashboardResponse(snapshot)})
}

// Signups handles GET /admin/signups.
func (h *AdminHandler) Signups(c *fiber.Ctx) error {
	page, err := h.analytics.ListSignups(c.UserContext(), parseInt(c.Query("page"), 1), parseInt(c.Query("page_size"), 0))
	if err != nil {
		return toHTTPError(c, err)
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(fiber.Map{"data": dto.NewSignupPageResponse(page)})
}

// Metrics handles GET /admin/metrics.
func (h *AdminHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}

func (h *AdminHandler) sessionCookie(value string, expires time.Time) *fiber.Cookie {
	cookie := &fiber.Cookie{
		Name:     h.cookie.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.cookie.CookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
	}
	if value == "" {
		cookie.MaxAge = -1
	}
	return cookie
}
