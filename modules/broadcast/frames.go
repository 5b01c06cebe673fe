package broadcast

import domain "github.com/V1per16/an0n-chat-render/domain/chat"

// Frame types sent to WebSocket clients.
const (
	FrameConnected      = "connected"
	FramePresence       = "presence"
	FrameUserJoined     = "user_joined"
	FrameUserLeft       = "user_left"
	FrameHistory        = "history"
	FrameMessagePosted  = "message_posted"
	FrameMessageEdited  = "message_edited"
	FrameMessageDeleted = "message_deleted"
	FrameTyping         = "typing"
	FrameError          = "error"
)

// MessagePayload is the wire representation of a log message. Author is the
// full snapshot on live message_posted frames; history entries carry the
// author id only.
type MessagePayload struct {
	ID        int64        `json:"id"`
	AuthorID  int64        `json:"author_id"`
	Author    *domain.User `json:"author,omitempty"`
	Text      string       `json:"text"`
	Timestamp int64        `json:"timestamp"`
}

// NewMessagePayload builds a MessagePayload from a stored message.
func NewMessagePayload(msg domain.Message) MessagePayload {
	return MessagePayload{
		ID:        msg.ID,
		AuthorID:  msg.AuthorID,
		Text:      msg.Text,
		Timestamp: msg.Timestamp,
	}
}

// Frame is the single outbound WebSocket message shape. Type selects which
// fields are populated.
type Frame struct {
	Type      string           `json:"type"`
	User      *domain.User     `json:"user,omitempty"`
	Users     []domain.User    `json:"users,omitempty"`
	Message   *MessagePayload  `json:"message,omitempty"`
	Messages  []MessagePayload `json:"messages,omitempty"`
	MessageID int64            `json:"message_id,omitempty"`
	NewText   string           `json:"new_text,omitempty"`
	UserID    int64            `json:"user_id,omitempty"`
	Username  string           `json:"username,omitempty"`
	IsTyping  *bool            `json:"is_typing,omitempty"`
	Code      string           `json:"code,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// TypingFrame builds a typing frame for a user. IsTyping is a pointer so an
// explicit false still serializes.
func TypingFrame(user domain.User, isTyping bool) Frame {
	return Frame{
		Type:     FrameTyping,
		UserID:   user.ID,
		Username: user.Name,
		IsTyping: &isTyping,
	}
}

// ErrorFrame builds an error frame delivered to a single connection.
func ErrorFrame(code, message string) Frame {
	return Frame{Type: FrameError, Code: code, Error: message}
}
