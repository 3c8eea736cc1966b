package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stage-cue/internal/domain"
	"stage-cue/internal/logger"
	"stage-cue/internal/repository"

	"github.com/google/uuid"
)

// messageService implements domain.MessageService. After every change the
// full feed is handed to onChange so the countdown display relays it.
type messageService struct {
	repo     repository.MessageStore
	onChange func([]domain.Message)
	now      func() time.Time
	log      *logger.Logger
}

// NewMessageService creates a new MessageService. onChange may be nil.
func NewMessageService(repo repository.MessageStore, onChange func([]domain.Message), log *logger.Logger) domain.MessageService {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &messageService{
		repo:     repo,
		onChange: onChange,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.WithField("component", "message_service"),
	}
}

// Post appends a message to the feed
func (s *messageService) Post(ctx context.Context, text string, msgType domain.MessageType) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: message text cannot be empty", domain.ErrInvalidInput)
	}
	if msgType == "" {
		msgType = domain.MessageInfo
	}
	if !msgType.Valid() {
		return nil, fmt.Errorf("%w: unknown message type %q", domain.ErrInvalidInput, msgType)
	}

	msg := &domain.Message{
		ID:        uuid.New().String(),
		Text:      text,
		Type:      msgType,
		Timestamp: s.now(),
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to post message: %w", err)
	}

	s.refresh(ctx)
	return msg, nil
}

// List returns the feed newest first
func (s *messageService) List(ctx context.Context) ([]domain.Message, error) {
	messages, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// Delete removes one message
func (s *messageService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: message ID cannot be empty", domain.ErrInvalidInput)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	s.refresh(ctx)
	return nil
}

// Clear removes every message
func (s *messageService) Clear(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}
	s.refresh(ctx)
	return nil
}

func (s *messageService) refresh(ctx context.Context) {
	if s.onChange == nil {
		return
	}
	messages, err := s.repo.List(ctx)
	if err != nil {
		s.log.Warn("failed to reload message feed", map[string]interface{}{"error": err.Error()})
		return
	}
	s.onChange(messages)
}
