package repository

import (
	"context"
	"time"

	"github.com/launchlist/waitlist-service/internal/persistence"
)

// SessionRevocationRepository records admin sessions that were logged out before expiry.
type SessionRevocationRepository interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

type sessionRevocationRepository struct {
	redis *persistence.Redis
}

// NewSessionRevocationRepository returns a Redis-backed revocation list.
func NewSessionRevocationRepository(r *persistence.Redis) SessionRevocationRepository {
	return &sessionRevocationRepository{redis: r}
}

func (r *sessionRevocationRepository) key(sessionID string) string {
	return r.redis.Key("revoked_session", sessionID)
}

// Revoke keeps the entry only as long as the session could still be presented.
func (r *sessionRevocationRepository) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.redis.Client.Set(ctx, r.key(sessionID), 1, ttl).Err()
}

func (r *sessionRevocationRepository) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.redis.Client.Exists(ctx, r.key(sessionID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
