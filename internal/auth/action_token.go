package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// actionTokenBytes is the entropy of reset/verification tokens (256 bits).
const actionTokenBytes = 32

// GenerateActionToken creates a single-use token for password-reset and
// email-verification flows. The raw hex token is sent to the user once and
// never stored; only the SHA-256 digest is persisted for later matching.
func GenerateActionToken() (raw string, hash string, err error) {
	buf := make([]byte, actionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate action token: %w", err)
	}
	raw = hex.EncodeToString(buf)
	return raw, HashActionToken(raw), nil
}

// HashActionToken returns the hex SHA-256 digest of a raw action token.
func HashActionToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
