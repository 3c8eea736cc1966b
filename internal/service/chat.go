package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stage-cue/internal/domain"
	"stage-cue/internal/repository"

	"github.com/google/uuid"
)

// chatService implements domain.ChatService
type chatService struct {
	repo repository.ChatStore
	now  func() time.Time
}

// NewChatService creates a new ChatService
func NewChatService(repo repository.ChatStore) domain.ChatService {
	return &chatService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Send stores a direct message
func (s *chatService) Send(ctx context.Context, senderID, receiverID, content string) (*domain.ChatMessage, error) {
	if senderID == "" || receiverID == "" {
		return nil, fmt.Errorf("%w: sender and receiver are required", domain.ErrInvalidInput)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message cannot be empty", domain.ErrInvalidInput)
	}

	msg := &domain.ChatMessage{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  s.now(),
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send chat message: %w", err)
	}
	return msg, nil
}

// Conversation returns the exchange between two users, oldest first
func (s *chatService) Conversation(ctx context.Context, userID, otherID string) ([]domain.ChatMessage, error) {
	if userID == "" || otherID == "" {
		return nil, fmt.Errorf("%w: both users are required", domain.ErrInvalidInput)
	}
	messages, err := s.repo.Conversation(ctx, userID, otherID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	return messages, nil
}
