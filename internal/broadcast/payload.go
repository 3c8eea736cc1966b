// Package broadcast pushes the active cue's countdown and the message feed to
// read-only countdown displays.
package broadcast

import (
	"time"

	"stage-cue/internal/domain"
	"stage-cue/internal/timefmt"
	"stage-cue/internal/timer"
)

// UpdateType tags every frame sent to a countdown display
const UpdateType = "UPDATE_COUNTDOWN"

// Payload is the snapshot a countdown display renders
type Payload struct {
	Title            string           `json:"title"`
	Speaker          string           `json:"speaker"`
	RemainingTime    int              `json:"remainingTime"`
	IsRunning        bool             `json:"isRunning"`
	IsUnder60Seconds bool             `json:"isUnder60Seconds"`
	IsOvertime       bool             `json:"isOvertime"`
	CurrentTime      string           `json:"currentTime"`
	Messages         []domain.Message `json:"messages"`
}

// Envelope wraps a payload on the wire
type Envelope struct {
	Type string  `json:"type"`
	Data Payload `json:"data"`
}

// BuildPayload snapshots the cue under the active pointer. With no event, or
// a pointer that names no cue, the payload is empty and reads as overtime.
// messages are passed through in the order given (newest first).
func BuildPayload(event *domain.Event, messages []domain.Message, now time.Time) Payload {
	p := Payload{
		CurrentTime: timefmt.ClockLabel(now),
		Messages:    make([]domain.Message, len(messages)),
	}
	copy(p.Messages, messages)

	if event != nil && event.ActiveCueIndex >= 0 && event.ActiveCueIndex < len(event.Cues) {
		cue := event.Cues[event.ActiveCueIndex]
		p.Title = cue.Title
		p.Speaker = cue.Speaker
		p.RemainingTime = cue.RemainingTime
		p.IsRunning = cue.IsRunning
	}

	p.IsUnder60Seconds = timer.IsUnder60Seconds(p.RemainingTime)
	p.IsOvertime = timer.IsOvertime(p.RemainingTime)
	return p
}
