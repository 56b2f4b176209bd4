package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// 18 random bytes is 144 bits of entropy, encoded to 24 URL-safe characters.
const numBytes = 18

// New returns a random URL-safe click token.
func New() (string, error) {
	b := make([]byte, numBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
