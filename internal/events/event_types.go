package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSignupCreated       EventType = "signup_created"
	EventAdminLoginSucceeded EventType = "admin_login_succeeded"
	EventAdminLoginFailed    EventType = "admin_login_failed"
	EventAdminLoginBlocked   EventType = "admin_login_blocked"
	EventAdminLoggedOut      EventType = "admin_logged_out"
)

// AllEventTypes lists every event the service emits.
var AllEventTypes = []EventType{
	EventSignupCreated,
	EventAdminLoginSucceeded,
	EventAdminLoginFailed,
	EventAdminLoginBlocked,
	EventAdminLoggedOut,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps a payload with an id and the current time.
func NewEvent(eventType EventType, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// SignupCreatedPayload payload. The email is deliberately absent.
type SignupCreatedPayload struct {
	SignupID  string    `json:"signup_id"`
	Source    string    `json:"source"`
	HasRef    bool      `json:"has_referrer"`
	CreatedAt time.Time `json:"created_at"`
}

// AdminAuthPayload payload for login and logout events.
type AdminAuthPayload struct {
	ClientID   string        `json:"client_id,omitempty"`
	SessionID  string        `json:"session_id,omitempty"`
	Attempts   int           `json:"attempts,omitempty"`
	RetryAfter time.Duration `json:"retry_after,omitempty"`
}
