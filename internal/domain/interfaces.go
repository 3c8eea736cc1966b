package domain

import "context"

// EventService drives the single live event.
// Every mutation updates local state first and then queues the write; a
// failed write is logged and never rolls the local state back.
type EventService interface {
	// Snapshot returns a copy of the current event, or nil when none is loaded
	Snapshot() *Event

	// Progress recomputes the aggregate progress figures as of now
	Progress() ProgressView

	// StartCue starts one cue. Other cues are not touched.
	StartCue(ctx context.Context, cueID int) error
	PauseCue(ctx context.Context, cueID int) error
	StopCue(ctx context.Context, cueID int) error
	ResetCue(ctx context.Context, cueID int) error

	// AdvanceCue stops the cue and starts the one after it by position
	AdvanceCue(ctx context.Context, cueID int) error

	// Bulk operations work from the active pointer
	PlayAll(ctx context.Context) error
	PauseAll(ctx context.Context) error
	StopAll(ctx context.Context) error
	NextAll(ctx context.Context) error
	ResetAll(ctx context.Context) error

	// SaveCues commits an edited cue list. Start times are re-chained from
	// the first cue and durations sanitized. An empty list deletes the event.
	SaveCues(ctx context.Context, cues []Cue) error

	// SetTitle renames the event, creating it when none exists
	SetTitle(ctx context.Context, title string) error

	// ResetEvent clears every cue and message and deletes the event document
	ResetEvent(ctx context.Context) error

	// ImportCues replaces the cue list with already-validated imported cues
	ImportCues(ctx context.Context, cues []Cue) error

	// Analytics builds the per-cue export dataset
	Analytics() Analytics

	// ApplySnapshot overwrites local state with a remote snapshot (last writer wins)
	ApplySnapshot(event *Event)

	// Close cancels every ticker and flushes queued writes
	Close()
}

// MessageService manages the operator message feed
type MessageService interface {
	Post(ctx context.Context, text string, msgType MessageType) (*Message, error)
	// List returns messages newest first
	List(ctx context.Context) ([]Message, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// DeviceService tracks connected staff devices.
// Stale entries are not pruned.
type DeviceService interface {
	Connect(ctx context.Context, userID, name string, deviceType DeviceType) (*ConnectedDevice, error)

	// Heartbeat refreshes lastSeen, registering an unknown id as a smartphone.
	// Heartbeat and Disconnect refuse devices owned by another user.
	Heartbeat(ctx context.Context, userID, deviceID string) (*ConnectedDevice, error)

	Disconnect(ctx context.Context, userID, deviceID string) error

	// List returns devices most recently seen first
	List(ctx context.Context) ([]ConnectedDevice, error)
}

// ChatService handles direct messages between signed-in users
type ChatService interface {
	Send(ctx context.Context, senderID, receiverID, content string) (*ChatMessage, error)
	Conversation(ctx context.Context, userID, otherID string) ([]ChatMessage, error)
}

// UserService manages staff accounts and their roles
type UserService interface {
	// GetUser retrieves a user by ID
	GetUser(ctx context.Context, userID string) (*User, error)

	// GetOrCreateUser returns the account for a Google identity, creating it on
	// first sign-in. Configured admin emails start as admins, everyone else as user.
	GetOrCreateUser(ctx context.Context, googleID, email string) (*User, error)

	ListUsers(ctx context.Context) ([]*User, error)

	// ToggleRole cycles the target's role. Only admins may call it.
	ToggleRole(ctx context.Context, actor *User, targetID string) (*User, error)
}
