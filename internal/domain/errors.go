package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrDuplicateSignup      = errors.New("email already on the waitlist")
	ErrSignupUnavailable    = errors.New("signup temporarily unavailable")
	ErrCountUnavailable     = errors.New("signup count temporarily unavailable")
	ErrAnalyticsUnavailable = errors.New("analytics temporarily unavailable")
	ErrRateLimited          = errors.New("too many failed login attempts")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUnauthenticated      = errors.New("authentication required")
	ErrAuthUnavailable      = errors.New("admin authentication temporarily unavailable")
)

// RateLimitError carries how long the client must wait before retrying.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s; retry after %s", ErrRateLimited.Error(), e.RetryAfter.Round(time.Second))
}

// Is lets errors.Is match ErrRateLimited.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}
