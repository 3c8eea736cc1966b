package sqlite

import (
	"context"
	"fmt"

	"stage-cue/internal/domain"
)

// ChatRepository implements repository.ChatStore for SQLite
type ChatRepository struct {
	db *DB
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// Create inserts a chat message
func (r *ChatRepository) Create(ctx context.Context, msg *domain.ChatMessage) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO chats (id, sender_id, receiver_id, content, timestamp) VALUES (?, ?, ?, ?, ?)",
		msg.ID,
		msg.SenderID,
		msg.ReceiverID,
		msg.Content,
		msg.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	return nil
}

// Conversation returns both directions of the a/b exchange, oldest first
func (r *ChatRepository) Conversation(ctx context.Context, a, b string) ([]domain.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sender_id, receiver_id, content, timestamp FROM chats
		WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		ORDER BY timestamp ASC, id ASC`,
		a, b, b, a,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}
	defer rows.Close()

	messages := []domain.ChatMessage{}
	for rows.Next() {
		var msg domain.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversation: %w", err)
	}
	return messages, nil
}
