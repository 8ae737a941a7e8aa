package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/launchlist/waitlist-service/internal/api/dto"
	"github.com/launchlist/waitlist-service/internal/domain"
	"github.com/launchlist/waitlist-service/internal/service"
)

// SignupService is the public signup surface.
type SignupService interface {
	Submit(ctx context.Context, input service.SubmitSignupInput) (*domain.SignupConfirmation, error)
	Count(ctx context.Context) (int64, error)
}

// SignupHandler exposes public waitlist endpoints.
type SignupHandler struct {
	signups SignupService
}

// NewSignupHandler constructs handler.
func NewSignupHandler(signups SignupService) *SignupHandler {
	return &SignupHandler{signups: signups}
}

// Create handles POST /api/signups.
func (h *SignupHandler) Create(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	source := req.Source
	if isBlank(source) {
		if utm := c.Query("utm_source"); utm != "" {
			source = &utm
		}
	}
	referrer := req.Referrer
	if isBlank(referrer) {
		if ref := c.Get(fiber.HeaderReferer); ref != "" {
			referrer = &ref
		}
	}

	confirmation, err := h.signups.Submit(c.UserContext(), service.SubmitSignupInput{
		Email:    req.Email,
		Source:   source,
		Referrer: referrer,
	})
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewSignupResponse(confirmation)})
}

// Count handles GET /api/signups/count.
func (h *SignupHandler) Count(c *fiber.Ctx) error {
	total, err := h.signups.Count(c.UserContext())
	if err != nil {
		return toHTTPError(c, err)
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(fiber.Map{"data": dto.SignupCountResponse{Total: total}})
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
