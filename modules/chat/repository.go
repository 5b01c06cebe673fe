package chat

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/V1per16/an0n-chat-render/domain/chat"
	"gorm.io/gorm"
)

// ErrMessageNotFound is returned when a message id does not exist in the log.
var ErrMessageNotFound = errors.New("message not found")

// DefaultHistoryLimit caps the backlog replayed to a newly joined connection.
const DefaultHistoryLimit = 200

// MessageLog is the persistent, ordered store of chat messages. Concurrent
// appends receive distinct, strictly increasing ids. Edit and delete are
// unconditional here; author authorization is enforced by the service layer.
type MessageLog interface {
	// Append durably stores a new message and returns its assigned id.
	Append(ctx context.Context, authorID int64, text string, timestamp int64) (int64, error)
	// Recent returns the most recent limit messages ordered oldest first,
	// by timestamp with id as tiebreaker.
	Recent(ctx context.Context, limit int) ([]domain.Message, error)
	// AuthorOf returns the author id of a message, or ErrMessageNotFound.
	AuthorOf(ctx context.Context, messageID int64) (int64, error)
	// EditText overwrites a message's text in place. The timestamp is retained.
	EditText(ctx context.Context, messageID int64, newText string) error
	// Delete removes a message from the log.
	Delete(ctx context.Context, messageID int64) error
}

// GormMessageLog is the default MessageLog backed by GORM/SQLite.
type GormMessageLog struct {
	db *gorm.DB
}

// NewGormMessageLog creates a GORM-backed message log.
func NewGormMessageLog(db *gorm.DB) *GormMessageLog {
	return &GormMessageLog{db: db}
}

// Append stores a new message. The autoincrement primary key provides the
// strictly increasing id.
func (l *GormMessageLog) Append(ctx context.Context, authorID int64, text string, timestamp int64) (int64, error) {
	msg := domain.Message{AuthorID: authorID, Text: text, Timestamp: timestamp}
	if err := l.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return 0, fmt.Errorf("failed to append message: %w", err)
	}
	return msg.ID, nil
}

// Recent returns the newest limit messages, oldest first.
func (l *GormMessageLog) Recent(ctx context.Context, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	var messages []domain.Message
	err := l.db.WithContext(ctx).
		Order("timestamp DESC").Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	// Fetched newest-first; reverse into replay order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// AuthorOf returns the author id of a message.
func (l *GormMessageLog) AuthorOf(ctx context.Context, messageID int64) (int64, error) {
	var msg domain.Message
	err := l.db.WithContext(ctx).Select("author_id").First(&msg, "id = ?", messageID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrMessageNotFound
		}
		return 0, fmt.Errorf("failed to look up author: %w", err)
	}
	return msg.AuthorID, nil
}

// EditText overwrites a message's text in place.
func (l *GormMessageLog) EditText(ctx context.Context, messageID int64, newText string) error {
	result := l.db.WithContext(ctx).Model(&domain.Message{}).
		Where("id = ?", messageID).
		Update("text", newText)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// Delete removes a message from the log.
func (l *GormMessageLog) Delete(ctx context.Context, messageID int64) error {
	result := l.db.WithContext(ctx).Delete(&domain.Message{}, "id = ?", messageID)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}
