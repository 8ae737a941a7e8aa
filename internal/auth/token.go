package auth

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/launchlist/waitlist-service/internal/domain"
)

const (
	tokenIssuer = "waitlist-admin"

	signingKeyInfo = "waitlist admin session signing key"
	sealingKeyInfo = "waitlist admin session sealing key"
)

// ErrInvalidToken is returned for any token that cannot be opened or verified.
var ErrInvalidToken = errors.New("invalid session token")

// TokenManager issues and validates admin session tokens. Tokens are HS256 JWTs
// sealed with XChaCha20-Poly1305 so the holder can neither forge nor read them.
type TokenManager struct {
	signingKey []byte
	aead       cipher.AEAD
	ttl        time.Duration
	now        func() time.Time
}

// Claims describes the JWT payload inside a sealed session token.
type Claims struct {
	jwt.RegisteredClaims
}

// NewTokenManager derives independent signing and sealing keys from secret.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	return NewTokenManagerWithClock(secret, ttl, time.Now)
}

// NewTokenManagerWithClock is NewTokenManager with an injected clock.
func NewTokenManagerWithClock(secret string, ttl time.Duration, now func() time.Time) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("session secret must not be empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if now == nil {
		now = time.Now
	}

	signingKey, err := deriveKey(secret, signingKeyInfo, 32)
	if err != nil {
		return nil, err
	}
	sealingKey, err := deriveKey(secret, sealingKeyInfo, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(sealingKey)
	if err != nil {
		return nil, fmt.Errorf("init session cipher: %w", err)
	}

	return &TokenManager{signingKey: signingKey, aead: aead, ttl: ttl, now: now}, nil
}

func deriveKey(secret, info string, size int) ([]byte, error) {
	key := make([]byte, size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

// TTL returns the session lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Issue creates a new session for principal and returns its sealed token.
func (tm *TokenManager) Issue(principal string) (string, *domain.AdminSession, error) {
	issuedAt := tm.now().Truncate(time.Second)
	session := &domain.AdminSession{
		ID:        uuid.NewString(),
		Principal: principal,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(tm.ttl),
	}

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   principal,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.signingKey)
	if err != nil {
		return "", nil, err
	}

	sealed, err := tm.seal([]byte(signed))
	if err != nil {
		return "", nil, err
	}
	return sealed, session, nil
}

// Parse opens and validates a sealed token, including its expiry.
func (tm *TokenManager) Parse(token string) (*domain.AdminSession, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	plain, err := tm.open(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(string(plain), &Claims{}, func(*jwt.Token) (interface{}, error) {
		return tm.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ID == "" || claims.IssuedAt == nil {
		return nil, ErrInvalidToken
	}
	return &domain.AdminSession{
		ID:        claims.ID,
		Principal: claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (tm *TokenManager) seal(plain []byte) (string, error) {
	nonce := make([]byte, tm.aead.NonceSize(), tm.aead.NonceSize()+len(plain)+tm.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("session nonce: %w", err)
	}
	out := tm.aead.Seal(nonce, nonce, plain, nil)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

func (tm *TokenManager) open(token string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	if len(raw) < tm.aead.NonceSize()+tm.aead.Overhead() {
		return nil, ErrInvalidToken
	}
	nonce, ciphertext := raw[:tm.aead.NonceSize()], raw[tm.aead.NonceSize():]
	return tm.aead.Open(nil, nonce, ciphertext, nil)
}
