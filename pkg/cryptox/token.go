package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Token sizes in bytes of entropy before encoding.
const (
	// TokenSize256 encodes to 43 base64url characters. Invite tokens use this.
	TokenSize256 = 32
)

// GenerateToken returns size bytes from crypto/rand encoded as unpadded
// base64url, which is safe to paste into URLs and form fields.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken returns the base64url SHA-256 of token. Only the
// fingerprint is persisted, so a leaked table cannot be replayed, while
// lookups remain an exact match on the submitted string.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
