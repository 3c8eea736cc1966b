package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"stage-cue/internal/domain"
)

// liveEventID keys the single live event document
const liveEventID = "live"

// EventRepository implements repository.EventStore for SQLite.
// Cues are stored as one JSON column so a merge replaces the list whole.
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

type eventQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getEvent(ctx context.Context, q eventQuerier) (*domain.Event, error) {
	var (
		event    domain.Event
		cuesJSON string
	)
	err := q.QueryRowContext(ctx,
		"SELECT title, cues, active_cue_index, event_progress, total_elapsed, updated_at FROM events WHERE id = ?",
		liveEventID,
	).Scan(&event.Title, &cuesJSON, &event.ActiveCueIndex, &event.EventProgress, &event.TotalElapsed, &event.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: event document", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query event: %w", err)
	}

	if err := json.Unmarshal([]byte(cuesJSON), &event.Cues); err != nil {
		return nil, fmt.Errorf("failed to decode cues: %w", err)
	}
	return &event, nil
}

// Get retrieves the live event document
func (r *EventRepository) Get(ctx context.Context) (*domain.Event, error) {
	return getEvent(ctx, r.db)
}

// Merge applies patch to the stored document inside one transaction
func (r *EventRepository) Merge(ctx context.Context, patch domain.EventPatch) error {
	if patch.DeletesEvent() {
		return r.Delete(ctx)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	event, err := getEvent(ctx, tx)
	if errors.Is(err, domain.ErrNotFound) {
		event = &domain.Event{Title: domain.DefaultEventTitle, Cues: []domain.Cue{}}
	} else if err != nil {
		return err
	}

	if patch.Title != nil {
		event.Title = *patch.Title
	}
	if patch.SetCues {
		event.Cues = patch.Cues
	}
	if patch.ActiveCueIndex != nil {
		event.ActiveCueIndex = *patch.ActiveCueIndex
	}
	if patch.EventProgress != nil {
		event.EventProgress = *patch.EventProgress
	}
	if patch.TotalElapsed != nil {
		event.TotalElapsed = *patch.TotalElapsed
	}
	if event.Cues == nil {
		event.Cues = []domain.Cue{}
	}

	cuesJSON, err := json.Marshal(event.Cues)
	if err != nil {
		return fmt.Errorf("failed to encode cues: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO events (id, title, cues, active_cue_index, event_progress, total_elapsed, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			cues = excluded.cues,
			active_cue_index = excluded.active_cue_index,
			event_progress = excluded.event_progress,
			total_elapsed = excluded.total_elapsed,
			updated_at = excluded.updated_at`,
		liveEventID,
		event.Title,
		string(cuesJSON),
		event.ActiveCueIndex,
		event.EventProgress,
		event.TotalElapsed,
		timeNow(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Delete removes the live event document
func (r *EventRepository) Delete(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", liveEventID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}
