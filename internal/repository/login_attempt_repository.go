package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/launchlist/waitlist-service/internal/persistence"
)

// AttemptReservation is the outcome of reserving a login attempt slot.
type AttemptReservation struct {
	Allowed    bool
	Count      int
	RetryAfter time.Duration
}

// LoginAttemptRepository tracks login attempts per client within a sliding window.
type LoginAttemptRepository interface {
	// Reserve atomically records an attempt unless the client already has limit
	// attempts inside window. A reserved attempt counts as a failure until Reset.
	Reserve(ctx context.Context, clientID string, limit int, window time.Duration) (AttemptReservation, error)
	Reset(ctx context.Context, clientID string) error
}

// reserveScript prunes the window, rejects when full, otherwise records the attempt.
// KEYS[1] set key; ARGV: now ms, cutoff ms, window ms, limit, member.
var reserveScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[2])
local count = redis.call('ZCARD', KEYS[1])
if count >= tonumber(ARGV[4]) then
  local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
  local score = ''
  if oldest[2] then score = oldest[2] end
  return {0, count, score}
end
redis.call('ZADD', KEYS[1], ARGV[1], ARGV[5])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return {1, count + 1, ''}
`)

type loginAttemptRepository struct {
	redis *persistence.Redis
	now   func() time.Time
}

// NewLoginAttemptRepository returns a Redis-backed attempt counter.
func NewLoginAttemptRepository(r *persistence.Redis) LoginAttemptRepository {
	return &loginAttemptRepository{redis: r, now: time.Now}
}

// NewLoginAttemptRepositoryWithClock is NewLoginAttemptRepository with an injected clock.
func NewLoginAttemptRepositoryWithClock(r *persistence.Redis, now func() time.Time) LoginAttemptRepository {
	return &loginAttemptRepository{redis: r, now: now}
}

func (r *loginAttemptRepository) key(clientID string) string {
	return r.redis.Key("login_attempts", clientID)
}

func (r *loginAttemptRepository) Reserve(ctx context.Context, clientID string, limit int, window time.Duration) (AttemptReservation, error) {
	now := r.now()
	nowMs := now.UnixMilli()
	windowMs := window.Milliseconds()

	raw, err := reserveScript.Run(ctx, r.redis.Client, []string{r.key(clientID)},
		nowMs,
		nowMs-windowMs,
		windowMs,
		limit,
		uuid.NewString(),
	).Slice()
	if err != nil {
		return AttemptReservation{}, fmt.Errorf("reserve login attempt: %w", err)
	}
	if len(raw) != 3 {
		return AttemptReservation{}, fmt.Errorf("reserve login attempt: unexpected reply %v", raw)
	}

	allowed, _ := raw[0].(int64)
	count, _ := raw[1].(int64)
	res := AttemptReservation{Allowed: allowed == 1, Count: int(count)}
	if !res.Allowed {
		res.RetryAfter = window
		if score, ok := raw[2].(string); ok && score != "" {
			if oldestMs, err := strconv.ParseFloat(score, 64); err == nil {
				res.RetryAfter = time.Duration(int64(oldestMs)+windowMs-nowMs) * time.Millisecond
			}
		}
		if res.RetryAfter < time.Second {
			res.RetryAfter = time.Second
		}
	}
	return res, nil
}

func (r *loginAttemptRepository) Reset(ctx context.Context, clientID string) error {
	return r.redis.Client.Del(ctx, r.key(clientID)).Err()
}
