package chat

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/V1per16/an0n-chat-render/domain/chat"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// messagesSchema creates the messages table for the Postgres backend.
// BIGSERIAL matches the strictly-increasing id contract of MessageLog.
const messagesSchema = `
CREATE TABLE IF NOT EXISTS messages (
	id         BIGSERIAL PRIMARY KEY,
	author_id  BIGINT NOT NULL,
	text       TEXT   NOT NULL,
	timestamp  BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_timestamp ON messages (timestamp, id);
`

// PostgresMessageLog is the alternate MessageLog backed by pgx/Postgres,
// selected with CHAT_DATABASE_URL.
type PostgresMessageLog struct {
	pool *pgxpool.Pool
}

// NewPostgresMessageLog creates a Postgres-backed message log.
func NewPostgresMessageLog(pool *pgxpool.Pool) *PostgresMessageLog {
	return &PostgresMessageLog{pool: pool}
}

// EnsureSchema creates the messages table if it does not exist.
func (l *PostgresMessageLog) EnsureSchema(ctx context.Context) error {
	if _, err := l.pool.Exec(ctx, messagesSchema); err != nil {
		return fmt.Errorf("failed to ensure messages schema: %w", err)
	}
	return nil
}

// Append stores a new message and returns the id assigned by the sequence.
func (l *PostgresMessageLog) Append(ctx context.Context, authorID int64, text string, timestamp int64) (int64, error) {
	var id int64
	err := l.pool.QueryRow(ctx,
		`INSERT INTO messages (author_id, text, timestamp) VALUES ($1, $2, $3) RETURNING id`,
		authorID, text, timestamp,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to append message: %w", err)
	}
	return id, nil
}

// Recent returns the newest limit messages, oldest first.
func (l *PostgresMessageLog) Recent(ctx context.Context, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := l.pool.Query(ctx, `
		SELECT id, author_id, text, timestamp FROM (
			SELECT id, author_id, text, timestamp
			FROM messages
			ORDER BY timestamp DESC, id DESC
			LIMIT $1
		) recent
		ORDER BY timestamp ASC, id ASC`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	messages := make([]domain.Message, 0, limit)
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.ID, &msg.AuthorID, &msg.Text, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return messages, nil
}

// AuthorOf returns the author id of a message.
func (l *PostgresMessageLog) AuthorOf(ctx context.Context, messageID int64) (int64, error) {
	var authorID int64
	err := l.pool.QueryRow(ctx,
		`SELECT author_id FROM messages WHERE id = $1`, messageID,
	).Scan(&authorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrMessageNotFound
		}
		return 0, fmt.Errorf("failed to look up author: %w", err)
	}
	return authorID, nil
}

// EditText overwrites a message's text in place.
func (l *PostgresMessageLog) EditText(ctx context.Context, messageID int64, newText string) error {
	tag, err := l.pool.Exec(ctx,
		`UPDATE messages SET text = $1 WHERE id = $2`, newText, messageID,
	)
	if err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// Delete removes a message from the log.
func (l *PostgresMessageLog) Delete(ctx context.Context, messageID int64) error {
	tag, err := l.pool.Exec(ctx,
		`DELETE FROM messages WHERE id = $1`, messageID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMessageNotFound
	}
	return nil
}
