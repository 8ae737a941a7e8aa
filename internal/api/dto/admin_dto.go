package dto

import (
	"time"

	"github.com/launchlist/waitlist-service/internal/domain"
)

// AdminLoginRequest payload for admin login.
type AdminLoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// AdminSessionResponse describes the session set in the cookie.
type AdminSessionResponse struct {
	Principal string    `json:"principal"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SourceCount aggregates signups per attribution source.
type SourceCount struct {
	Source string `json:"source"`
	Count  int64  `json:"count"`
}

// DayCount aggregates signups per calendar day.
type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// DashboardResponse is the admin dashboard payload.
type DashboardResponse struct {
	Total       int64           `json:"total"`
	Today       int64           `json:"today"`
	ThisWeek    int64           `json:"this_week"`
	BySource    []SourceCount   `json:"by_source"`
	Timeline    []DayCount      `json:"timeline"`
	Recent      []SignupSummary `json:"recent"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// SignupPageResponse is one page of the admin listing.
type SignupPageResponse struct {
	Items      []SignupSummary `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int64           `json:"total_pages"`
}

// NewDashboardResponse maps a snapshot to its JSON form.
func NewDashboardResponse(s *domain.DashboardSnapshot) DashboardResponse {
	bySource := make([]SourceCount, 0, len(s.BySource))
	for _, sc := range s.BySource {
		bySource = append(bySource, SourceCount{Source: sc.Source, Count: sc.Count})
	}
	timeline := make([]DayCount, 0, len(s.Timeline))
	for _, dc := range s.Timeline {
		timeline = append(timeline, DayCount{Date: dc.Date, Count: dc.Count})
	}
	return DashboardResponse{
		Total:       s.Total,
		Today:       s.Today,
		ThisWeek:    s.ThisWeek,
		BySource:    bySource,
		Timeline:    timeline,
		Recent:      NewSignupSummaries(s.Recent),
		GeneratedAt: s.GeneratedAt,
	}
}

// NewSignupPageResponse maps a listing page.
func NewSignupPageResponse(p *domain.SignupPage) SignupPageResponse {
	var pages int64
	if p.PageSize > 0 {
		pages = (p.Total + int64(p.PageSize) - 1) / int64(p.PageSize)
	}
	return SignupPageResponse{
		Items:      NewSignupSummaries(p.Items),
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: pages,
	}
}
