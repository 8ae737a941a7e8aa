package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with the given cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// CredentialChecker verifies the single static admin identity.
type CredentialChecker struct {
	usernameDigest [sha256.Size]byte
	passwordDigest [sha256.Size]byte
	passwordHash   string
}

// NewCredentialChecker accepts either a plaintext password or a bcrypt hash.
// The hash wins when both are configured.
func NewCredentialChecker(username, password, passwordHash string) *CredentialChecker {
	c := &CredentialChecker{
		usernameDigest: sha256.Sum256([]byte(username)),
		passwordHash:   strings.TrimSpace(passwordHash),
	}
	if c.passwordHash == "" {
		c.passwordDigest = sha256.Sum256([]byte(password))
	}
	return c
}

// Check compares both fields without short-circuiting so timing does not reveal
// which one was wrong. Inputs are hashed first to equalise their lengths.
func (c *CredentialChecker) Check(username, password string) bool {
	userDigest := sha256.Sum256([]byte(username))
	userOK := subtle.ConstantTimeCompare(userDigest[:], c.usernameDigest[:])

	var passOK int
	if c.passwordHash != "" {
		if ComparePassword(c.passwordHash, password) == nil {
			passOK = 1
		}
	} else {
		passDigest := sha256.Sum256([]byte(password))
		passOK = subtle.ConstantTimeCompare(passDigest[:], c.passwordDigest[:])
	}

	return userOK&passOK == 1
}
