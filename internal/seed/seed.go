package seed

import (
	"context"
	"fmt"

	"stage-cue/internal/domain"
	"stage-cue/internal/logger"
)

// DemoEventTitle names the seeded demo event
const DemoEventTitle = "Demo Event: Pawnee Townhall"

// DemoCues is the running order of the demo event. Start times after the
// first are chained from durations when saved.
var DemoCues = []domain.Cue{
	{StartTime: "19:00", Duration: "5:00", Title: "Welcome and Housekeeping", Speaker: "Leslie Knope"},
	{Duration: "10:00", Title: "Parks Department Report", Speaker: "Ron Swanson"},
	{Duration: "8:00", Title: "Budget Update", Speaker: "Ben Wyatt"},
	{Duration: "7:00", Title: "Health Initiative", Speaker: "Ann Perkins"},
	{Duration: "15:00", Title: "Public Comments", Speaker: "Pawnee Residents"},
	{Duration: "3:00", Title: "Closing Remarks", Speaker: "Leslie Knope"},
}

// EventWriter is the slice of the event service the seeder drives
type EventWriter interface {
	Snapshot() *domain.Event
	SetTitle(ctx context.Context, title string) error
	SaveCues(ctx context.Context, cues []domain.Cue) error
}

// Seeder loads the demo event into an empty session
type Seeder struct {
	events EventWriter
	log    *logger.Logger
}

// NewSeeder creates a new Seeder instance
func NewSeeder(events EventWriter, log *logger.Logger) *Seeder {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Seeder{
		events: events,
		log:    log.WithField("component", "seeder"),
	}
}

// SeedResult reports what a seeding run did
type SeedResult struct {
	Created bool
	Cues    int
}

// SeedDemoEvent creates the demo event.
// This operation is idempotent - an existing event is left alone.
func (s *Seeder) SeedDemoEvent(ctx context.Context) (*SeedResult, error) {
	if existing := s.events.Snapshot(); existing != nil {
		s.log.Info("event already present, skipping demo seed", map[string]interface{}{"title": existing.Title})
		return &SeedResult{Cues: len(existing.Cues)}, nil
	}

	if err := s.events.SetTitle(ctx, DemoEventTitle); err != nil {
		return nil, fmt.Errorf("failed to set demo title: %w", err)
	}

	cues := make([]domain.Cue, len(DemoCues))
	copy(cues, DemoCues)
	if err := s.events.SaveCues(ctx, cues); err != nil {
		return nil, fmt.Errorf("failed to save demo cues: %w", err)
	}

	s.log.Info("seeded demo event", map[string]interface{}{"title": DemoEventTitle, "cues": len(cues)})
	return &SeedResult{Created: true, Cues: len(cues)}, nil
}
