package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/V1per16/an0n-chat-render/domain/chat"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuthPort defines the interface other modules use to reach auth services.
type AuthPort interface {
	Register(ctx context.Context, name, password, color string) (*domain.User, error)
	Login(ctx context.Context, name, password string) (string, *domain.User, int64, error)
	Logout(ctx context.Context, token string) error
	ValidateSession(ctx context.Context, token string) (*domain.Session, error)
	UpdateProfile(ctx context.Context, userID int64, name, color string) (*domain.User, error)
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
}

// AuthAdapter implements AuthPort using the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	if container == nil {
		panic("auth: ServiceContainer is nil")
	}
	return &AuthAdapter{container: container}
}

// Register creates a new user account.
func (a *AuthAdapter) Register(ctx context.Context, name, password, color string) (*domain.User, error) {
	req := RegisterRequest{Name: name, Password: password, Color: color}
	var resp RegisterResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "register", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	user := resp.User.User()
	return &user, nil
}

// Login authenticates and returns token, user snapshot and TTL in seconds.
func (a *AuthAdapter) Login(ctx context.Context, name, password string) (string, *domain.User, int64, error) {
	req := LoginRequest{Name: name, Password: password}
	var resp LoginResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "login", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return "", nil, 0, fmt.Errorf("login request failed: %w", err)
	}
	user := resp.User.User()
	return resp.Token, &user, resp.ExpiresIn, nil
}

// Logout revokes a session token.
func (a *AuthAdapter) Logout(ctx context.Context, token string) error {
	req := LogoutRequest{Token: token}
	var resp LogoutResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "logout", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// ValidateSession resolves a bearer token to its session. Failures map back
// to the session sentinel errors so callers can use errors.Is.
func (a *AuthAdapter) ValidateSession(ctx context.Context, token string) (*domain.Session, error) {
	req := ValidateSessionRequest{Token: token}
	var resp ValidateSessionResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "validate-session", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("validate-session request failed: %w", err)
	}
	if !resp.Valid {
		if resp.Error == "expired" {
			return nil, ErrSessionExpired
		}
		return nil, ErrSessionNotFound
	}
	return &domain.Session{
		Token:     token,
		User:      resp.User.User(),
		ExpiresAt: resp.ExpiresAt,
	}, nil
}

// UpdateProfile mutates profile fields and returns the canonical user.
func (a *AuthAdapter) UpdateProfile(ctx context.Context, userID int64, name, color string) (*domain.User, error) {
	req := UpdateProfileRequest{UserID: userID, Name: name, Color: color}
	var resp UpdateProfileResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "update-profile", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("update-profile request failed: %w", err)
	}
	user := resp.User.User()
	return &user, nil
}

// GetUser retrieves a user by ID.
func (a *AuthAdapter) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	req := GetUserRequest{UserID: userID}
	var resp GetUserResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "get-user", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("get-user request failed: %w", err)
	}
	user := resp.User.User()
	return &user, nil
}

// IsSessionError reports whether err is a session validation failure
// (unknown or expired token) rather than a transport problem.
func IsSessionError(err error) bool {
	return errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionExpired)
}
