package hash

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// Password hashes a plaintext password with bcrypt.
func Password(password string) (string, error) {
	if len(password) < 8 {
		return "", fmt.Errorf("password must be at least 8 characters")
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashedBytes), nil
}

// ComparePassword checks a plaintext password against a stored bcrypt hash.
// bcrypt's comparison is constant-time.
func ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// NewResetSecret generates a one-time password-reset secret. The raw value is
// disclosed to the requester exactly once; only its SHA-256 digest is stored.
func NewResetSecret() (raw, digest string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate reset secret: %w", err)
	}

	raw = hex.EncodeToString(buf)
	return raw, ResetSecretDigest(raw), nil
}

// ResetSecretDigest hashes a presented raw reset secret for lookup against
// the stored digest.
func ResetSecretDigest(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
