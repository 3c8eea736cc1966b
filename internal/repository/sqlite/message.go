package sqlite

import (
	"context"
	"fmt"

	"stage-cue/internal/domain"
)

// MessageRepository implements repository.MessageStore for SQLite
type MessageRepository struct {
	db *DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a new message
func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO messages (id, text, type, timestamp) VALUES (?, ?, ?, ?)",
		msg.ID,
		msg.Text,
		string(msg.Type),
		msg.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// List returns every message, newest first
func (r *MessageRepository) List(ctx context.Context) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, text, type, timestamp FROM messages ORDER BY timestamp DESC, id DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var (
			msg     domain.Message
			msgType string
		)
		if err := rows.Scan(&msg.ID, &msg.Text, &msgType, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Type = domain.MessageType(msgType)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return messages, nil
}

// Delete removes one message
func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM messages WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: message %s", domain.ErrNotFound, id)
	}
	return nil
}

// DeleteAll clears the feed
func (r *MessageRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM messages"); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	return nil
}
