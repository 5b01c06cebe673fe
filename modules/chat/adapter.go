package chat

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/V1per16/an0n-chat-render/domain/chat"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ChatPort defines the interface other modules use to reach the message log.
type ChatPort interface {
	Post(ctx context.Context, author domain.User, text string) (*domain.Message, error)
	Edit(ctx context.Context, requesterID, messageID int64, newText string) error
	Delete(ctx context.Context, requesterID, messageID int64) error
	History(ctx context.Context, limit int) ([]domain.Message, error)
}

// ChatAdapter implements ChatPort using the service container.
type ChatAdapter struct {
	container mono.ServiceContainer
}

// NewChatAdapter creates a new ChatAdapter.
func NewChatAdapter(container mono.ServiceContainer) *ChatAdapter {
	if container == nil {
		panic("chat: ServiceContainer is nil")
	}
	return &ChatAdapter{container: container}
}

// Post appends a message with the connection's authenticated author snapshot.
func (a *ChatAdapter) Post(ctx context.Context, author domain.User, text string) (*domain.Message, error) {
	req := PostMessageRequest{
		AuthorID:       author.ID,
		AuthorName:     author.Name,
		AuthorColor:    author.Color,
		AuthorPublicID: author.PublicID,
		Text:           text,
	}
	var resp PostMessageResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "post", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("post request failed: %w", err)
	}
	return &resp.Message, nil
}

// Edit overwrites a message's text; denials map to the chat sentinel errors.
func (a *ChatAdapter) Edit(ctx context.Context, requesterID, messageID int64, newText string) error {
	req := EditMessageRequest{RequesterID: requesterID, MessageID: messageID, NewText: newText}
	var resp EditMessageResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "edit", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return fmt.Errorf("edit request failed: %w", err)
	}
	return denialError(resp.Applied, resp.Error)
}

// Delete removes a message; denials map to the chat sentinel errors.
func (a *ChatAdapter) Delete(ctx context.Context, requesterID, messageID int64) error {
	req := DeleteMessageRequest{RequesterID: requesterID, MessageID: messageID}
	var resp DeleteMessageResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "delete", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}
	return denialError(resp.Applied, resp.Error)
}

// History returns the recent backlog, oldest first.
func (a *ChatAdapter) History(ctx context.Context, limit int) ([]domain.Message, error) {
	req := HistoryRequest{Limit: limit}
	var resp HistoryResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "history", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("history request failed: %w", err)
	}
	return resp.Messages, nil
}

func denialError(applied bool, reason string) error {
	if applied {
		return nil
	}
	switch reason {
	case "not_author":
		return ErrNotAuthor
	case "not_found":
		return ErrMessageNotFound
	default:
		return fmt.Errorf("mutation rejected: %s", reason)
	}
}
