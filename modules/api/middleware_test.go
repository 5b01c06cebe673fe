package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domain "github.com/V1per16/an0n-chat-render/domain/chat"
	"github.com/V1per16/an0n-chat-render/modules/auth"
	"github.com/gofiber/fiber/v2"
)

// mockAuthPort implements auth.AuthPort for testing
type mockAuthPort struct {
	validateSessionFunc func(ctx context.Context, token string) (*domain.Session, error)
}

func (m *mockAuthPort) Register(ctx context.Context, name, password, color string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (m *mockAuthPort) Login(ctx context.Context, name, password string) (string, *domain.User, int64, error) {
	return "", nil, 0, errors.New("not implemented")
}

func (m *mockAuthPort) Logout(ctx context.Context, token string) error {
	return errors.New("not implemented")
}

func (m *mockAuthPort) ValidateSession(ctx context.Context, token string) (*domain.Session, error) {
	if m.validateSessionFunc != nil {
		return m.validateSessionFunc(ctx, token)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthPort) UpdateProfile(ctx context.Context, userID int64, name, color string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (m *mockAuthPort) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func TestSessionMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		authHeader     string
		mockAuth       *mockAuthPort
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "missing authorization header",
			authHeader:     "",
			mockAuth:       &mockAuthPort{},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"Bearer token is required"`,
		},
		{
			name:           "invalid authorization format",
			authHeader:     "Basic token123",
			mockAuth:       &mockAuthPort{},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `unauthorized`,
		},
		{
			name:       "unknown token",
			authHeader: "Bearer unknown-token",
			mockAuth: &mockAuthPort{
				validateSessionFunc: func(ctx context.Context, token string) (*domain.Session, error) {
					return nil, auth.ErrSessionNotFound
				},
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"Invalid session token"`,
		},
		{
			name:       "expired token",
			authHeader: "Bearer expired-token",
			mockAuth: &mockAuthPort{
				validateSessionFunc: func(ctx context.Context, token string) (*domain.Session, error) {
					return nil, auth.ErrSessionExpired
				},
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `session_expired`,
		},
		{
			name:       "valid token",
			authHeader: "Bearer valid-token",
			mockAuth: &mockAuthPort{
				validateSessionFunc: func(ctx context.Context, token string) (*domain.Session, error) {
					return &domain.Session{
						Token:     token,
						User:      domain.User{ID: 1, Name: "alice"},
						ExpiresAt: time.Now().Add(time.Hour),
					}, nil
				},
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"authenticated"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()

			// Add middleware
			app.Use(SessionMiddleware(tt.mockAuth))

			// Add test endpoint
			app.Get("/test", func(c *fiber.Ctx) error {
				return c.JSON(fiber.Map{"status": "authenticated"})
			})

			// Create request
			req := httptest.NewRequest("GET", "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			// Execute request
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()

			// Check status code
			if resp.StatusCode != tt.expectedStatus {
				t.Errorf("status = %v, want %v", resp.StatusCode, tt.expectedStatus)
			}

			// Check body contains expected string
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("io.ReadAll() error = %v", err)
			}

			if tt.expectedBody != "" {
				bodyStr := string(body)
				if !strings.Contains(bodyStr, tt.expectedBody) {
					t.Errorf("body = %v, want to contain %v", bodyStr, tt.expectedBody)
				}
			}
		})
	}
}

func TestSessionMiddleware_SessionContext(t *testing.T) {
	mockAuth := &mockAuthPort{
		validateSessionFunc: func(ctx context.Context, token string) (*domain.Session, error) {
			return &domain.Session{
				Token:     token,
				User:      domain.User{ID: 42, Name: "carol"},
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
	}

	app := fiber.New()
	app.Use(SessionMiddleware(mockAuth))

	// Add endpoint that checks the session stored in the context
	var capturedSession *domain.Session
	app.Get("/test", func(c *fiber.Ctx) error {
		session := sessionFromContext(c)
		if session == nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "no session"})
		}
		capturedSession = session
		return c.JSON(fiber.Map{"status": "ok"})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer valid-token")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %v, want %v", resp.StatusCode, http.StatusOK)
	}

	if capturedSession == nil {
		t.Fatal("session not set in context")
	}

	if capturedSession.User.ID != 42 {
		t.Errorf("session.User.ID = %v, want %v", capturedSession.User.ID, 42)
	}

	if capturedSession.User.Name != "carol" {
		t.Errorf("session.User.Name = %v, want %v", capturedSession.User.Name, "carol")
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{
			name:   "well-formed header",
			header: "Bearer abc123",
			want:   "abc123",
		},
		{
			name:   "empty header",
			header: "",
			want:   "",
		},
		{
			name:   "wrong scheme",
			header: "Basic abc123",
			want:   "",
		},
		{
			name:   "bearer lowercase",
			header: "bearer abc123",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bearerToken(tt.header); got != tt.want {
				t.Errorf("bearerToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}
