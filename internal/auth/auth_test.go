package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2025, 5, 4, 12, 0, 0, 0, time.UTC)
	tm, err := NewTokenManagerWithClock(testSecret, 24*time.Hour, func() time.Time { return now })
	require.NoError(t, err)

	token, issued, err := tm.Issue("admin")
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)
	assert.Equal(t, now.Add(24*time.Hour), issued.ExpiresAt)

	parsed, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, parsed.ID)
	assert.Equal(t, "admin", parsed.Principal)
	assert.True(t, issued.ExpiresAt.Equal(parsed.ExpiresAt))
}

func TestTokenIsNotReadableByHolder(t *testing.T) {
	tm, err := NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)

	token, _, err := tm.Issue("admin")
	require.NoError(t, err)

	assert.Equal(t, 0, strings.Count(token, "."), "sealed token must not look like a JWS")
	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "admin")
	assert.NotContains(t, string(raw), "waitlist-admin")
}

func TestTokenRejectsTampering(t *testing.T) {
	tm, err := NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)
	token, _, err := tm.Issue("admin")
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01
	tampered := base64.RawURLEncoding.EncodeToString(raw)

	_, err = tm.Parse(tampered)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	for _, bad := range []string{"", "garbage", "AAAA", token[:10]} {
		_, err := tm.Parse(bad)
		assert.True(t, errors.Is(err, ErrInvalidToken), "token %q", bad)
	}
}

func TestTokenRejectsOtherSecret(t *testing.T) {
	issuer, err := NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)
	other, err := NewTokenManager(strings.Repeat("z", 32), time.Hour)
	require.NoError(t, err)

	token, _, err := issuer.Issue("admin")
	require.NoError(t, err)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpiry(t *testing.T) {
	now := time.Date(2025, 5, 4, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	tm, err := NewTokenManagerWithClock(testSecret, time.Hour, clock)
	require.NoError(t, err)

	token, _, err := tm.Issue("admin")
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	_, err = tm.Parse(token)
	assert.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = tm.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	assert.Error(t, err)
}

func TestCredentialChecker(t *testing.T) {
	t.Run("plaintext password", func(t *testing.T) {
		c := NewCredentialChecker("admin", "s3cret", "")
		assert.True(t, c.Check("admin", "s3cret"))
		assert.False(t, c.Check("admin", "wrong"))
		assert.False(t, c.Check("Admin", "s3cret"))
		assert.False(t, c.Check("", ""))
	})

	t.Run("bcrypt hash", func(t *testing.T) {
		hash, err := HashPassword("s3cret", bcrypt.MinCost)
		require.NoError(t, err)

		c := NewCredentialChecker("admin", "ignored", hash)
		assert.True(t, c.Check("admin", "s3cret"))
		assert.False(t, c.Check("admin", "ignored"))
		assert.False(t, c.Check("root", "s3cret"))
	})
}
