// Package timer implements the per-cue timer lifecycle.
//
// Every transition is a pure mutation of a domain.Cue given an explicit
// wall-clock instant, so the session controller decides when "now" is and
// tests can drive time deterministically.
//
//	Idle ──start──▶ Running ──pause──▶ Paused ──start──▶ Running
//	                   │                  │
//	                   └──────stop────────┴──▶ Stopped ──start──▶ Running
//
// reset returns any state to Idle.
package timer

import (
	"time"

	"stage-cue/internal/domain"
	"stage-cue/internal/timefmt"
)

// State is the lifecycle position of a cue
type State int

const (
	Idle State = iota
	Running
	Paused
	Stopped
)

// String returns the display name of the state
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// StateOf derives the lifecycle state from a cue's fields
func StateOf(c *domain.Cue) State {
	switch {
	case c.IsRunning:
		return Running
	case c.ActualEndTime != nil:
		return Stopped
	case c.ActualStartTime != nil:
		return Paused
	default:
		return Idle
	}
}

// PlannedSeconds is the cue's planned duration in seconds, zero when unparseable
func PlannedSeconds(c *domain.Cue) int {
	return timefmt.DurationSeconds(c.Duration)
}

// wholeSeconds truncates d to whole seconds, never negative
func wholeSeconds(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

// RunningElapsed is the single place elapsed time is derived for a running
// cue. The tick path and the pause/stop fold both go through it, so the
// counted ticks and the wall-clock delta can differ by at most one tick.
func RunningElapsed(c *domain.Cue, now time.Time) int {
	if !c.IsRunning || c.StartedAt == nil {
		return c.ElapsedTime
	}
	wall := c.ElapsedAtStart + wholeSeconds(now.Sub(*c.StartedAt))
	if c.ElapsedTime > wall {
		return c.ElapsedTime
	}
	return wall
}

// Start moves a cue into Running. It returns false when the cue was already running.
// The first-start timestamp is kept across restarts; a previous end stamp is cleared.
func Start(c *domain.Cue, now time.Time) bool {
	if c.IsRunning {
		return false
	}
	started := now
	c.IsRunning = true
	c.StartedAt = &started
	c.ElapsedAtStart = c.ElapsedTime
	if c.ActualStartTime == nil {
		first := now
		c.ActualStartTime = &first
	}
	c.ActualEndTime = nil
	c.RemainingTime = PlannedSeconds(c) - c.ElapsedTime
	return true
}

// fold closes the live running interval into ElapsedTime
func fold(c *domain.Cue, now time.Time) {
	c.ElapsedTime = RunningElapsed(c, now)
	c.ElapsedAtStart = c.ElapsedTime
	c.StartedAt = nil
	c.IsRunning = false
}

// Pause freezes a running cue. Pausing a cue that is not running is a no-op.
func Pause(c *domain.Cue, now time.Time) bool {
	if !c.IsRunning {
		return false
	}
	fold(c, now)
	c.RemainingTime = PlannedSeconds(c) - c.ElapsedTime
	return true
}

// Stop completes a running or paused cue: the interval is folded, the end is
// stamped, and remaining time returns to the full planned duration.
func Stop(c *domain.Cue, now time.Time) bool {
	switch StateOf(c) {
	case Running, Paused:
		finish(c, now)
		return true
	}
	return false
}

func finish(c *domain.Cue, now time.Time) {
	if c.IsRunning {
		fold(c, now)
	}
	end := now
	c.ActualEndTime = &end
	c.ActualDuration = c.ElapsedTime
	c.RemainingTime = PlannedSeconds(c)
}

// Reset returns a cue to Idle from any state
func Reset(c *domain.Cue) {
	c.IsRunning = false
	c.StartedAt = nil
	c.ActualStartTime = nil
	c.ActualEndTime = nil
	c.ActualDuration = 0
	c.ElapsedTime = 0
	c.ElapsedAtStart = 0
	c.RemainingTime = PlannedSeconds(c)
}

// Tick advances a running cue by one second. Non-running cues are untouched.
func Tick(c *domain.Cue) bool {
	if !c.IsRunning {
		return false
	}
	c.ElapsedTime++
	c.RemainingTime = PlannedSeconds(c) - c.ElapsedTime
	return true
}

// ActualDuration is the measured runtime in seconds, recomputed on demand
func ActualDuration(c *domain.Cue, now time.Time) int {
	switch {
	case c.ActualStartTime != nil && c.ActualEndTime != nil:
		return wholeSeconds(c.ActualEndTime.Sub(*c.ActualStartTime))
	case c.ActualStartTime != nil && c.IsRunning:
		return wholeSeconds(now.Sub(*c.ActualStartTime))
	default:
		return c.ElapsedTime
	}
}

// IsUnder60Seconds reports the final-minute warning window (0, 60]
func IsUnder60Seconds(remaining int) bool {
	return remaining > 0 && remaining <= 60
}

// IsOvertime reports remaining time at or below zero
func IsOvertime(remaining int) bool {
	return remaining <= 0
}
