package auth

import (
	"strings"
	"testing"
)

func TestNewSessionToken(t *testing.T) {
	token, err := NewSessionToken()
	if err != nil {
		t.Fatalf("NewSessionToken() error = %v", err)
	}

	if token == "" {
		t.Fatal("NewSessionToken() returned empty token")
	}

	// 32 random bytes base64url-encoded without padding is 43 characters.
	if len(token) != 43 {
		t.Errorf("NewSessionToken() length = %d, want 43", len(token))
	}

	// URL-safe alphabet, no padding
	if strings.ContainsAny(token, "+/=") {
		t.Errorf("NewSessionToken() = %q, contains non-URL-safe characters", token)
	}
}

func TestNewSessionToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		token, err := NewSessionToken()
		if err != nil {
			t.Fatalf("NewSessionToken() error = %v", err)
		}
		if seen[token] {
			t.Fatalf("NewSessionToken() produced duplicate token %q", token)
		}
		seen[token] = true
	}
}
