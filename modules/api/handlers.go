package api

import (
	"log"
	"strconv"
	"strings"

	"github.com/V1per16/an0n-chat-render/modules/chat"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes() {
	// Health check
	m.app.Get("/health", m.healthHandler)

	// WebSocket endpoint. The session is resolved before the upgrade so
	// unauthenticated connections are rejected without ever reaching the hub.
	m.app.Use("/ws", m.wsUpgradeGate)
	m.app.Get("/ws", websocket.New(m.handleWebSocket))

	// REST API v1
	api := m.app.Group("/api/v1")

	// Account management
	authGroup := api.Group("/auth")
	authGroup.Post("/register", m.register)
	authGroup.Post("/login", m.login)
	authGroup.Post("/logout", SessionMiddleware(m.authAdapter), m.logout)

	// Profile
	users := api.Group("/users", SessionMiddleware(m.authAdapter))
	users.Get("/me", m.getMe)
	users.Put("/me", m.updateMe)

	// Message history
	api.Get("/messages", SessionMiddleware(m.authAdapter), m.getMessages)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module":            "api",
			"connected_clients": m.hub.ClientCount(),
		},
	})
}

// register handles POST /api/v1/auth/register.
func (m *APIModule) register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	user, err := m.authAdapter.Register(c.UserContext(), req.Name, req.Password, req.Color)
	if err != nil {
		return mapAuthError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(NewUserResponse(*user))
}

// login handles POST /api/v1/auth/login.
func (m *APIModule) login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	token, user, expiresIn, err := m.authAdapter.Login(c.UserContext(), req.Name, req.Password)
	if err != nil {
		return mapAuthError(c, err)
	}

	return c.JSON(LoginResponse{
		Token:     token,
		User:      NewUserResponse(*user),
		ExpiresIn: expiresIn,
	})
}

// logout handles POST /api/v1/auth/logout.
func (m *APIModule) logout(c *fiber.Ctx) error {
	session := sessionFromContext(c)
	if err := m.authAdapter.Logout(c.UserContext(), session.Token); err != nil {
		log.Printf("[api] Logout failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to log out",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// getMe handles GET /api/v1/users/me.
func (m *APIModule) getMe(c *fiber.Ctx) error {
	session := sessionFromContext(c)
	return c.JSON(NewUserResponse(session.User))
}

// updateMe handles PUT /api/v1/users/me.
func (m *APIModule) updateMe(c *fiber.Ctx) error {
	session := sessionFromContext(c)

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	user, err := m.authAdapter.UpdateProfile(c.UserContext(), session.User.ID, req.Name, req.Color)
	if err != nil {
		return mapAuthError(c, err)
	}

	return c.JSON(NewUserResponse(*user))
}

// getMessages handles GET /api/v1/messages.
func (m *APIModule) getMessages(c *fiber.Ctx) error {
	limit := chat.DefaultHistoryLimit
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= chat.DefaultHistoryLimit {
			limit = parsed
		}
	}

	messages, err := m.chatAdapter.History(c.UserContext(), limit)
	if err != nil {
		log.Printf("[api] History failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load message history",
		})
	}

	response := HistoryResponse{
		Messages: make([]MessageResponse, 0, len(messages)),
	}
	for _, msg := range messages {
		response.Messages = append(response.Messages, MessageResponse{
			ID:        msg.ID,
			AuthorID:  msg.AuthorID,
			Text:      msg.Text,
			Timestamp: msg.Timestamp,
		})
	}

	return c.JSON(response)
}

// mapAuthError translates auth service errors to HTTP responses. Errors
// cross the service boundary flattened to strings, so matching is textual.
func mapAuthError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "invalid name or password"):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid name or password",
		})
	case strings.Contains(errStr, "display name already taken"):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "name_taken",
			Message: "Display name already taken",
		})
	case strings.Contains(errStr, "display name must be"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Display name must be 1-50 valid characters",
		})
	case strings.Contains(errStr, "password must be at least"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Password must be at least 8 characters",
		})
	case strings.Contains(errStr, "password must be at most"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Password must be at most 72 characters",
		})
	case strings.Contains(errStr, "user not found"):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "User not found",
		})
	default:
		// Log the actual error but don't expose it to the client
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}
