package domain

import "time"

// AdminSession is an authenticated admin context. It is never persisted.
type AdminSession struct {
	ID        string
	Principal string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s AdminSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Remaining returns how long the session stays valid after now.
func (s AdminSession) Remaining(now time.Time) time.Duration {
	if s.Expired(now) {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}
