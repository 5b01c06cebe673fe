package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	domain "github.com/V1per16/an0n-chat-render/domain/chat"
)

func setupTestChatService(t *testing.T) *ChatService {
	t.Helper()
	return NewChatService(setupTestLog(t), nil)
}

func TestChatService_Post(t *testing.T) {
	ctx := context.Background()
	service := setupTestChatService(t)
	author := domain.User{ID: 1, Name: "alice"}

	tests := []struct {
		name      string
		text      string
		wantError error
	}{
		{
			name: "valid message",
			text: "Hello, everyone!",
		},
		{
			name:      "empty message",
			text:      "",
			wantError: ErrEmptyMessage,
		},
		{
			name:      "message too long",
			text:      strings.Repeat("x", MaxMessageLength+1),
			wantError: ErrMessageTooLong,
		},
		{
			name:      "invalid utf-8",
			text:      string([]byte{0xff, 0xfe}),
			wantError: ErrMessageInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := service.Post(ctx, author, tt.text)

			if tt.wantError != nil {
				if !errors.Is(err, tt.wantError) {
					t.Errorf("Post() error = %v, want %v", err, tt.wantError)
				}
				return
			}

			if err != nil {
				t.Fatalf("Post() unexpected error: %v", err)
			}
			if msg.ID == 0 {
				t.Error("Post() message.ID should be assigned")
			}
			if msg.AuthorID != author.ID {
				t.Errorf("Post() message.AuthorID = %d, want %d", msg.AuthorID, author.ID)
			}
			if msg.Timestamp == 0 {
				t.Error("Post() message.Timestamp should be assigned by the server")
			}
		})
	}
}

func TestChatService_Edit(t *testing.T) {
	ctx := context.Background()
	service := setupTestChatService(t)
	alice := domain.User{ID: 1, Name: "alice"}

	msg, err := service.Post(ctx, alice, "original")
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}

	tests := []struct {
		name        string
		requesterID int64
		messageID   int64
		newText     string
		wantError   error
	}{
		{
			name:        "author edits own message",
			requesterID: alice.ID,
			messageID:   msg.ID,
			newText:     "edited",
		},
		{
			name:        "someone else's message",
			requesterID: 2,
			messageID:   msg.ID,
			newText:     "hijacked",
			wantError:   ErrNotAuthor,
		},
		{
			name:        "unknown message",
			requesterID: alice.ID,
			messageID:   9999,
			newText:     "edited",
			wantError:   ErrMessageNotFound,
		},
		{
			name:        "empty replacement text",
			requesterID: alice.ID,
			messageID:   msg.ID,
			newText:     "",
			wantError:   ErrEmptyMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.Edit(ctx, tt.requesterID, tt.messageID, tt.newText)

			if tt.wantError != nil {
				if !errors.Is(err, tt.wantError) {
					t.Errorf("Edit() error = %v, want %v", err, tt.wantError)
				}
				return
			}

			if err != nil {
				t.Fatalf("Edit() unexpected error: %v", err)
			}
		})
	}

	// The denied edit attempts left the text as the author's last edit
	messages, err := service.History(ctx, 1)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if messages[0].Text != "edited" {
		t.Errorf("History() text = %q, want %q", messages[0].Text, "edited")
	}
	if messages[0].Timestamp != msg.Timestamp {
		t.Errorf("History() timestamp = %d, want original %d", messages[0].Timestamp, msg.Timestamp)
	}
}

func TestChatService_Delete(t *testing.T) {
	ctx := context.Background()
	service := setupTestChatService(t)
	alice := domain.User{ID: 1, Name: "alice"}

	msg, err := service.Post(ctx, alice, "doomed")
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}

	// Non-author is denied and the message survives
	if err := service.Delete(ctx, 2, msg.ID); !errors.Is(err, ErrNotAuthor) {
		t.Errorf("Delete() by non-author error = %v, want ErrNotAuthor", err)
	}
	messages, err := service.History(ctx, 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("History() count = %d, want 1 after denied delete", len(messages))
	}

	// Author deletes
	if err := service.Delete(ctx, alice.ID, msg.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	messages, err = service.History(ctx, 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("History() count = %d, want 0 after delete", len(messages))
	}

	// Deleting again reports not found
	if err := service.Delete(ctx, alice.ID, msg.ID); !errors.Is(err, ErrMessageNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrMessageNotFound", err)
	}
}

func TestChatService_History_LimitClamp(t *testing.T) {
	ctx := context.Background()
	service := setupTestChatService(t)
	author := domain.User{ID: 1, Name: "alice"}

	for i := 0; i < 10; i++ {
		if _, err := service.Post(ctx, author, "msg"); err != nil {
			t.Fatalf("Post() error = %v", err)
		}
	}

	tests := []struct {
		name      string
		limit     int
		wantCount int
	}{
		{
			name:      "explicit limit",
			limit:     3,
			wantCount: 3,
		},
		{
			name:      "zero limit falls back to default",
			limit:     0,
			wantCount: 10,
		},
		{
			name:      "negative limit falls back to default",
			limit:     -5,
			wantCount: 10,
		},
		{
			name:      "limit above cap is clamped to default",
			limit:     DefaultHistoryLimit + 100,
			wantCount: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			messages, err := service.History(ctx, tt.limit)
			if err != nil {
				t.Fatalf("History() error = %v", err)
			}
			if len(messages) != tt.wantCount {
				t.Errorf("History() count = %d, want %d", len(messages), tt.wantCount)
			}
		})
	}
}
