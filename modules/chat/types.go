package chat

import domain "github.com/V1per16/an0n-chat-render/domain/chat"

// PostMessageRequest is the request for appending a message to the log.
// Author fields come from the connection's authenticated session snapshot,
// never from client input.
type PostMessageRequest struct {
	AuthorID       int64  `json:"author_id"`
	AuthorName     string `json:"author_name"`
	AuthorColor    string `json:"author_color"`
	AuthorPublicID string `json:"author_public_id"`
	Text           string `json:"text"`
}

// Author rebuilds the author snapshot carried by the request.
func (r PostMessageRequest) Author() domain.User {
	return domain.User{
		ID:       r.AuthorID,
		Name:     r.AuthorName,
		Color:    r.AuthorColor,
		PublicID: r.AuthorPublicID,
	}
}

// PostMessageResponse carries the persisted message.
type PostMessageResponse struct {
	Message domain.Message `json:"message"`
}

// EditMessageRequest is the request for overwriting a message's text.
type EditMessageRequest struct {
	RequesterID int64  `json:"requester_id"`
	MessageID   int64  `json:"message_id"`
	NewText     string `json:"new_text"`
}

// EditMessageResponse reports whether the edit was applied. Authorization
// and not-found denials are carried in Error rather than as service errors.
type EditMessageResponse struct {
	Applied bool   `json:"applied"`
	Error   string `json:"error,omitempty"` // "not_author" or "not_found"
}

// DeleteMessageRequest is the request for removing a message.
type DeleteMessageRequest struct {
	RequesterID int64 `json:"requester_id"`
	MessageID   int64 `json:"message_id"`
}

// DeleteMessageResponse reports whether the delete was applied.
type DeleteMessageResponse struct {
	Applied bool   `json:"applied"`
	Error   string `json:"error,omitempty"` // "not_author" or "not_found"
}

// HistoryRequest is the request for the recent-message backlog.
type HistoryRequest struct {
	Limit int `json:"limit"`
}

// HistoryResponse carries the backlog, oldest first.
type HistoryResponse struct {
	Messages []domain.Message `json:"messages"`
}
