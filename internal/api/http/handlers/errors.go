package handlers

import (
	"errors"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/launchlist/waitlist-service/internal/domain"
	"github.com/launchlist/waitlist-service/pkg/util/errorutil"
)

// toHTTPError maps domain sentinels to transport errors rendered by the error middleware.
func toHTTPError(c *fiber.Ctx, err error) error {
	var rateErr *domain.RateLimitError
	switch {
	case errors.As(err, &rateErr):
		seconds := int(math.Ceil(rateErr.RetryAfter.Seconds()))
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(seconds))
		return errorutil.NewTooManyRequests("too many login attempts, try again later",
			map[string]any{"retry_after_seconds": seconds})
	case errors.Is(err, domain.ErrInvalidEmail):
		return errorutil.NewDomainError("INVALID_EMAIL", "please provide a valid email address", fiber.StatusBadRequest, nil)
	case errors.Is(err, domain.ErrDuplicateSignup):
		return errorutil.NewConflict("DUPLICATE_SIGNUP", "this email is already on the waitlist")
	case errors.Is(err, domain.ErrSignupUnavailable):
		return errorutil.NewServiceUnavailable("SIGNUP_UNAVAILABLE", "signup is temporarily unavailable, please retry", err)
	case errors.Is(err, domain.ErrCountUnavailable):
		return errorutil.NewServiceUnavailable("COUNT_UNAVAILABLE", "signup count is temporarily unavailable", err)
	case errors.Is(err, domain.ErrAnalyticsUnavailable):
		return errorutil.NewServiceUnavailable("ANALYTICS_UNAVAILABLE", "analytics are temporarily unavailable", err)
	case errors.Is(err, domain.ErrAuthUnavailable):
		return errorutil.NewServiceUnavailable("AUTH_UNAVAILABLE", "admin authentication is temporarily unavailable, please retry", err)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return errorutil.NewDomainError("INVALID_CREDENTIALS", "invalid username or password", fiber.StatusUnauthorized, nil)
	case errors.Is(err, domain.ErrUnauthenticated):
		return errorutil.NewUnauthorized("authentication required")
	default:
		return err
	}
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
