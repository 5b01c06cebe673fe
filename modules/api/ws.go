package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	domain "github.com/V1per16/an0n-chat-render/domain/chat"
	"github.com/V1per16/an0n-chat-render/modules/auth"
	"github.com/V1per16/an0n-chat-render/modules/broadcast"
	"github.com/V1per16/an0n-chat-render/modules/chat"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// wsUpgradeGate rejects non-upgrade requests and resolves the session token
// before the protocol switch. Failed auth never reaches the hub.
func (m *APIModule) wsUpgradeGate(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	// Browsers cannot set headers on WebSocket requests, so the token is
	// accepted from the query string as well.
	token := c.Query("token")
	if token == "" {
		token = bearerToken(c.Get("Authorization"))
	}
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Session token is required",
		})
	}

	session, err := m.authAdapter.ValidateSession(c.UserContext(), token)
	if err != nil {
		errCode := "unauthorized"
		if errors.Is(err, auth.ErrSessionExpired) {
			errCode = "session_expired"
		}
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   errCode,
			Message: "Invalid or expired session token",
		})
	}

	c.Locals(SessionContextKey, session)
	return c.Next()
}

// handleWebSocket handles an authenticated WebSocket connection at /ws.
func (m *APIModule) handleWebSocket(c *websocket.Conn) {
	session, ok := c.Locals(SessionContextKey).(*domain.Session)
	if !ok || session == nil {
		_ = c.Close()
		return
	}

	clientID := uuid.New().String()
	client := &broadcast.Client{
		ID:   clientID,
		User: session.User,
		Conn: c,
	}

	log.Printf("[api] WebSocket client connected: %s (%s)", clientID, session.User.Name)

	// Acknowledge the connection before the client appears in presence.
	user := session.User.Snapshot()
	connected := broadcast.Frame{Type: broadcast.FrameConnected, User: &user}
	if err := c.WriteJSON(connected); err != nil {
		log.Printf("[api] Failed to send connected frame: %v", err)
		return
	}

	// From here on all writes to this connection go through the hub loop.
	// The backlog query runs inside the registration step, so a message
	// committed while history loads still reaches this client live.
	m.hub.Register(client, func() []broadcast.MessagePayload {
		return m.loadBacklog(context.Background())
	})
	defer func() {
		m.hub.Unregister(client)
		log.Printf("[api] WebSocket client disconnected: %s (%s)", clientID, session.User.Name)
	}()

	// Message loop
	for {
		_, msgBytes, err := c.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[api] Client %s closed connection", clientID)
			} else {
				log.Printf("[api] Read error from %s: %v", clientID, err)
			}
			break
		}

		var frame inboundFrame
		if err := json.Unmarshal(msgBytes, &frame); err != nil {
			m.sendError(client, "invalid_frame", "Invalid message format")
			continue
		}

		switch frame.Type {
		case wsTypePost:
			m.handlePost(client, frame)
		case wsTypeEdit:
			m.handleEdit(client, frame)
		case wsTypeDelete:
			m.handleDelete(client, frame)
		case wsTypeTyping:
			m.hub.Typing(client.ID, frame.IsTyping)
		default:
			m.sendError(client, "unknown_type", "Unknown message type: "+frame.Type)
		}
	}
}

// loadBacklog fetches recent history and attaches author snapshots so the
// joining client can render names and colors without extra round trips.
func (m *APIModule) loadBacklog(ctx context.Context) []broadcast.MessagePayload {
	messages, err := m.chatAdapter.History(ctx, chat.DefaultHistoryLimit)
	if err != nil {
		log.Printf("[api] Failed to load backlog: %v", err)
		return nil
	}

	authors := make(map[int64]*domain.User)
	backlog := make([]broadcast.MessagePayload, 0, len(messages))
	for _, msg := range messages {
		payload := broadcast.NewMessagePayload(msg)
		author, seen := authors[msg.AuthorID]
		if !seen {
			// Authors of old messages may have deleted their account;
			// the payload then carries the bare author id.
			author, err = m.authAdapter.GetUser(ctx, msg.AuthorID)
			if err != nil {
				author = nil
			}
			authors[msg.AuthorID] = author
		}
		payload.Author = author
		backlog = append(backlog, payload)
	}
	return backlog
}

func (m *APIModule) handlePost(client *broadcast.Client, frame inboundFrame) {
	if frame.Text == "" {
		m.sendError(client, "validation_error", "Message text is required")
		return
	}
	if len(frame.Text) > chat.MaxMessageLength {
		m.sendError(client, "validation_error", "Message too long")
		return
	}

	if _, err := m.chatAdapter.Post(context.Background(), client.User, frame.Text); err != nil {
		log.Printf("[api] Post failed for %s: %v", client.ID, err)
		m.sendError(client, "post_failed", "Failed to post message")
		return
	}
	// The committed message fans out via the MessagePosted event; the
	// author receives it on the same path as everyone else.
}

func (m *APIModule) handleEdit(client *broadcast.Client, frame inboundFrame) {
	if frame.MessageID == 0 || frame.NewText == "" {
		m.sendError(client, "validation_error", "Message id and new text are required")
		return
	}
	if len(frame.NewText) > chat.MaxMessageLength {
		m.sendError(client, "validation_error", "Message too long")
		return
	}

	err := m.chatAdapter.Edit(context.Background(), client.User.ID, frame.MessageID, frame.NewText)
	if err != nil {
		m.sendDenial(client, "edit", err)
	}
}

func (m *APIModule) handleDelete(client *broadcast.Client, frame inboundFrame) {
	if frame.MessageID == 0 {
		m.sendError(client, "validation_error", "Message id is required")
		return
	}

	err := m.chatAdapter.Delete(context.Background(), client.User.ID, frame.MessageID)
	if err != nil {
		m.sendDenial(client, "delete", err)
	}
}

// sendDenial reports a rejected edit or delete to the requesting connection
// only. Other clients never learn the attempt happened.
func (m *APIModule) sendDenial(client *broadcast.Client, op string, err error) {
	switch {
	case errors.Is(err, chat.ErrNotAuthor):
		m.sendError(client, "not_author", "Only the author can "+op+" a message")
	case errors.Is(err, chat.ErrMessageNotFound):
		m.sendError(client, "not_found", "Message not found")
	default:
		log.Printf("[api] %s failed for %s: %v", op, client.ID, err)
		m.sendError(client, op+"_failed", "Failed to "+op+" message")
	}
}

func (m *APIModule) sendError(client *broadcast.Client, code, message string) {
	m.hub.SendTo(client.ID, broadcast.ErrorFrame(code, message))
}
