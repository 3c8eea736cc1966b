package task

import (
	"context"
	"sync"
	"time"

	"stage-cue/internal/logger"
)

// Checkpointer persists the live counters of running cues
type Checkpointer interface {
	Checkpoint() bool
}

// CheckpointTracker periodically checkpoints the running session
type CheckpointTracker struct {
	target   Checkpointer
	interval time.Duration
	log      *logger.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.RWMutex
	running  bool // whether the previous pass found running cues
	written  int
}

// NewCheckpointTracker creates a new CheckpointTracker instance
func NewCheckpointTracker(target Checkpointer, interval time.Duration, log *logger.Logger) *CheckpointTracker {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &CheckpointTracker{
		target:   target,
		interval: interval,
		log:      log.WithField("component", "checkpoint"),
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background checkpoint loop
func (t *CheckpointTracker) Start(ctx context.Context) {
	t.wg.Add(1)
	go t.run(ctx)
}

// Stop ends the loop and waits for it to exit. Safe to call more than once.
func (t *CheckpointTracker) Stop() {
	t.stopOnce.Do(func() { close(t.stopCh) })
	t.wg.Wait()
}

// Written returns how many checkpoints have been queued
func (t *CheckpointTracker) Written() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.written
}

func (t *CheckpointTracker) run(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stopCh:
			return
		case <-ticker.C:
			t.checkpoint()
		}
	}
}

// checkpoint runs one pass and logs transitions between idle and running
func (t *CheckpointTracker) checkpoint() {
	wrote := t.target.Checkpoint()

	t.mu.Lock()
	was := t.running
	t.running = wrote
	if wrote {
		t.written++
	}
	t.mu.Unlock()

	switch {
	case wrote && !was:
		t.log.Info("cues running, checkpointing counters", map[string]interface{}{"interval": t.interval.String()})
	case !wrote && was:
		t.log.Debug("no cues running, checkpoints paused", nil)
	}
}
