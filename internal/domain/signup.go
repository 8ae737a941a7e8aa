package domain

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxEmailLength is the RFC 5321 path limit.
	MaxEmailLength    = 254
	MaxSourceLength   = 100
	MaxReferrerLength = 2048

	// DirectSource labels signups that arrived without an attribution source.
	DirectSource = "Direct"
)

var emailPattern = regexp.MustCompile(`^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)

// SignupRecord is one waitlist entrant. Records are append-only.
type SignupRecord struct {
	ID        string
	Email     string
	Source    *string
	Referrer  *string
	CreatedAt time.Time
}

// SignupConfirmation is returned to the caller after a successful signup.
type SignupConfirmation struct {
	Message string
	Record  *SignupRecord
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks an already normalized address against the accepted syntax.
func ValidateEmail(email string) error {
	if email == "" || len(email) > MaxEmailLength || !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// NormalizeAttribution trims an optional attribution value, drops it when empty and
// truncates it to maxLen runes.
func NormalizeAttribution(value *string, maxLen int) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	if utf8.RuneCountInString(trimmed) > maxLen {
		trimmed = string([]rune(trimmed)[:maxLen])
	}
	return &trimmed
}

// SourceLabel returns the display label for a record's source.
func (r SignupRecord) SourceLabel() string {
	if r.Source == nil || *r.Source == "" {
		return DirectSource
	}
	return *r.Source
}
