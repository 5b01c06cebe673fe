package auth

import (
	"time"

	domain "github.com/V1per16/an0n-chat-render/domain/chat"
)

// UserPayload is the wire representation of a user snapshot.
type UserPayload struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	PublicID string `json:"public_id"`
}

// NewUserPayload builds a UserPayload from a domain user.
func NewUserPayload(u domain.User) UserPayload {
	return UserPayload{
		ID:       u.ID,
		Name:     u.Name,
		Color:    u.Color,
		PublicID: u.PublicID,
	}
}

// User converts the payload back to a domain snapshot.
func (p UserPayload) User() domain.User {
	return domain.User{
		ID:       p.ID,
		Name:     p.Name,
		Color:    p.Color,
		PublicID: p.PublicID,
	}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Color    string `json:"color"`
}

// RegisterResponse represents a user registration response.
type RegisterResponse struct {
	User UserPayload `json:"user"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginResponse represents a user login response with the session token.
type LoginResponse struct {
	Token     string      `json:"token"`
	User      UserPayload `json:"user"`
	ExpiresIn int64       `json:"expires_in"`
}

// LogoutRequest represents a session revocation request.
type LogoutRequest struct {
	Token string `json:"token"`
}

// LogoutResponse represents a session revocation response.
type LogoutResponse struct {
	Revoked bool `json:"revoked"`
}

// ValidateSessionRequest represents a session validation request.
type ValidateSessionRequest struct {
	Token string `json:"token"`
}

// ValidateSessionResponse represents a session validation response.
// Validation failures are carried in the response, not as service errors.
type ValidateSessionResponse struct {
	Valid     bool        `json:"valid"`
	User      UserPayload `json:"user,omitempty"`
	ExpiresAt time.Time   `json:"expires_at,omitempty"`
	Error     string      `json:"error,omitempty"` // "not_found" or "expired"
}

// UpdateProfileRequest represents a profile mutation request.
// Empty fields are left unchanged.
type UpdateProfileRequest struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Color  string `json:"color,omitempty"`
}

// UpdateProfileResponse represents a profile mutation response.
type UpdateProfileResponse struct {
	User UserPayload `json:"user"`
}

// GetUserRequest represents a get user request.
type GetUserRequest struct {
	UserID int64 `json:"user_id"`
}

// GetUserResponse represents a get user response.
type GetUserResponse struct {
	User UserPayload `json:"user"`
}
