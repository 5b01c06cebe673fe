package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// sessionTokenBytes is the entropy of a session token. 32 bytes (256 bits)
// keeps the token unguessable; it is the sole bearer credential for both
// HTTP and realtime access.
const sessionTokenBytes = 32

// NewSessionToken generates an opaque, cryptographically random session token.
func NewSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
