package dto

import (
	"time"

	"github.com/launchlist/waitlist-service/internal/domain"
)

// SignupRequest payload for joining the waitlist. Accepted as JSON or form data.
type SignupRequest struct {
	Email    string  `json:"email" form:"email"`
	Source   *string `json:"source" form:"source"`
	Referrer *string `json:"referrer" form:"referrer"`
}

// SignupResponse is the public confirmation of a signup.
type SignupResponse struct {
	Message   string    `json:"message"`
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// SignupCountResponse backs the public counter.
type SignupCountResponse struct {
	Total int64 `json:"total"`
}

// SignupSummary is one row of the admin listing.
type SignupSummary struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Source    string    `json:"source"`
	Referrer  *string   `json:"referrer,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSignupResponse maps a confirmation to its public representation.
func NewSignupResponse(c *domain.SignupConfirmation) SignupResponse {
	return SignupResponse{
		Message:   c.Message,
		ID:        c.Record.ID,
		Email:     c.Record.Email,
		CreatedAt: c.Record.CreatedAt,
	}
}

// NewSignupSummaries maps records for the admin views.
func NewSignupSummaries(records []domain.SignupRecord) []SignupSummary {
	out := make([]SignupSummary, 0, len(records))
	for _, r := range records {
		out = append(out, SignupSummary{
			ID:        r.ID,
			Email:     r.Email,
			Source:    r.SourceLabel(),
			Referrer:  r.Referrer,
			CreatedAt: r.CreatedAt,
		})
	}
	return out
}
