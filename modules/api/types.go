package api

import (
	domain "github.com/V1per16/an0n-chat-render/domain/chat"
)

// ErrorResponse is the standard error response shape.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// RegisterRequest is the request body for POST /api/v1/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Color    string `json:"color"`
}

// LoginRequest is the request body for POST /api/v1/auth/login.
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginResponse carries the opaque session token on successful login.
type LoginResponse struct {
	Token     string       `json:"token"`
	User      UserResponse `json:"user"`
	ExpiresIn int64        `json:"expires_in"`
}

// UpdateProfileRequest is the request body for PUT /api/v1/users/me.
type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	PublicID string `json:"public_id"`
}

// NewUserResponse builds a UserResponse from a domain user.
func NewUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Name:     u.Name,
		Color:    u.Color,
		PublicID: u.PublicID,
	}
}

// MessageResponse is the REST view of a stored message.
type MessageResponse struct {
	ID        int64  `json:"id"`
	AuthorID  int64  `json:"author_id"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// HistoryResponse is the response for GET /api/v1/messages.
type HistoryResponse struct {
	Messages []MessageResponse `json:"messages"`
}

// Inbound WebSocket frame types.
const (
	wsTypePost   = "post"
	wsTypeEdit   = "edit"
	wsTypeDelete = "delete"
	wsTypeTyping = "typing"
)

// inboundFrame is the single inbound WebSocket message shape. Type selects
// which fields are meaningful.
type inboundFrame struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	MessageID int64  `json:"message_id,omitempty"`
	NewText   string `json:"new_text,omitempty"`
	IsTyping  bool   `json:"is_typing,omitempty"`
}
