package repository

import (
	"context"
	"time"

	"stage-cue/internal/domain"
)

// EventStore persists the single live event document.
// Writes are partial: only the top-level fields set on the patch change.
type EventStore interface {
	// Get returns the event document, or domain.ErrNotFound when none exists
	Get(ctx context.Context) (*domain.Event, error)

	// Merge applies a partial update, creating the document when missing.
	// A patch that sets an empty cue list deletes the document instead.
	Merge(ctx context.Context, patch domain.EventPatch) error

	// Delete removes the event document. Deleting a missing document is not an error.
	Delete(ctx context.Context) error
}

// MessageStore persists the operator message feed
type MessageStore interface {
	Create(ctx context.Context, msg *domain.Message) error
	// List returns messages newest first
	List(ctx context.Context) ([]domain.Message, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

// DeviceStore persists connected staff devices
type DeviceStore interface {
	Upsert(ctx context.Context, device *domain.ConnectedDevice) error
	GetByID(ctx context.Context, id string) (*domain.ConnectedDevice, error)
	Touch(ctx context.Context, id string, seen time.Time) error
	Delete(ctx context.Context, id string) error
	// List returns devices most recently seen first
	List(ctx context.Context) ([]domain.ConnectedDevice, error)
}

// ChatStore persists direct messages between users
type ChatStore interface {
	Create(ctx context.Context, msg *domain.ChatMessage) error
	// Conversation returns the messages exchanged between a and b, oldest first
	Conversation(ctx context.Context, a, b string) ([]domain.ChatMessage, error)
}

// UserStore handles user data persistence
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role, updatedAt time.Time) error
	List(ctx context.Context) ([]*domain.User, error)
}

// EventFeed pushes persisted event snapshots to every other session
type EventFeed interface {
	Publish(ctx context.Context, event *domain.Event) error
	// Subscribe delivers remote snapshots to fn until ctx is cancelled
	Subscribe(ctx context.Context, fn func(*domain.Event)) error
	Close()
}
