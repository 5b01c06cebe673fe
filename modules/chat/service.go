package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	domain "github.com/V1per16/an0n-chat-render/domain/chat"
	"github.com/V1per16/an0n-chat-render/events"
	"github.com/go-monolith/mono"
)

var (
	// ErrNotAuthor is returned when a mutation is requested by someone other
	// than the message's original author.
	ErrNotAuthor = errors.New("not the message author")
	// ErrEmptyMessage is returned when a message has no text.
	ErrEmptyMessage = errors.New("message text cannot be empty")
	// ErrMessageTooLong is returned when a message exceeds the length limit.
	ErrMessageTooLong = errors.New("message text exceeds maximum length")
	// ErrMessageInvalid is returned when a message contains invalid UTF-8.
	ErrMessageInvalid = errors.New("message text contains invalid characters")
)

// MaxMessageLength bounds message text in bytes.
const MaxMessageLength = 4096

// ChatService serializes message-log mutations and publishes the resulting
// events. Events are published strictly after the storage mutation commits,
// so a failed write never reaches an observer.
type ChatService struct {
	log      MessageLog
	eventBus mono.EventBus
}

// NewChatService creates a new ChatService.
func NewChatService(messageLog MessageLog, eventBus mono.EventBus) *ChatService {
	return &ChatService{log: messageLog, eventBus: eventBus}
}

// Post appends a message for the authenticated author. The server assigns
// both the timestamp and (via storage) the id; clients cannot spoof either.
func (s *ChatService) Post(ctx context.Context, author domain.User, text string) (*domain.Message, error) {
	if err := validateText(text); err != nil {
		return nil, err
	}

	timestamp := time.Now().UnixMilli()
	id, err := s.log.Append(ctx, author.ID, text, timestamp)
	if err != nil {
		return nil, err
	}

	msg := domain.Message{ID: id, AuthorID: author.ID, Text: text, Timestamp: timestamp}
	event := events.MessagePostedEvent{Message: msg, Author: author.Snapshot()}
	if s.eventBus != nil {
		if err := events.MessagePostedV1.Publish(s.eventBus, event, nil); err != nil {
			// The message is committed; observers catch up from history on
			// their next connect.
			log.Printf("[chat] Failed to publish MessagePosted event: %v", err)
		}
	}
	return &msg, nil
}

// Edit overwrites a message's text if the requester is its author. The
// author id and original timestamp are immutable across edits.
func (s *ChatService) Edit(ctx context.Context, requesterID, messageID int64, newText string) error {
	if err := validateText(newText); err != nil {
		return err
	}

	authorID, err := s.log.AuthorOf(ctx, messageID)
	if err != nil {
		return err
	}
	if authorID != requesterID {
		return ErrNotAuthor
	}

	if err := s.log.EditText(ctx, messageID, newText); err != nil {
		return err
	}

	event := events.MessageEditedEvent{MessageID: messageID, NewText: newText}
	if s.eventBus != nil {
		if err := events.MessageEditedV1.Publish(s.eventBus, event, nil); err != nil {
			log.Printf("[chat] Failed to publish MessageEdited event: %v", err)
		}
	}
	return nil
}

// Delete removes a message if the requester is its author.
func (s *ChatService) Delete(ctx context.Context, requesterID, messageID int64) error {
	authorID, err := s.log.AuthorOf(ctx, messageID)
	if err != nil {
		return err
	}
	if authorID != requesterID {
		return ErrNotAuthor
	}

	if err := s.log.Delete(ctx, messageID); err != nil {
		return err
	}

	event := events.MessageDeletedEvent{MessageID: messageID}
	if s.eventBus != nil {
		if err := events.MessageDeletedV1.Publish(s.eventBus, event, nil); err != nil {
			log.Printf("[chat] Failed to publish MessageDeleted event: %v", err)
		}
	}
	return nil
}

// History returns the most recent limit messages, oldest first.
func (s *ChatService) History(ctx context.Context, limit int) ([]domain.Message, error) {
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}
	messages, err := s.log.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return messages, nil
}

func validateText(text string) error {
	if text == "" {
		return ErrEmptyMessage
	}
	if len(text) > MaxMessageLength {
		return ErrMessageTooLong
	}
	if !utf8.ValidString(text) {
		return ErrMessageInvalid
	}
	return nil
}
