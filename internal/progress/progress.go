// Package progress aggregates per-cue timing into event-wide completion figures.
package progress

import (
	"math"
	"time"

	"stage-cue/internal/domain"
	"stage-cue/internal/timer"
)

// PlannedTotal sums every cue's planned duration; unparseable durations count as zero
func PlannedTotal(cues []domain.Cue) int {
	total := 0
	for i := range cues {
		total += timer.PlannedSeconds(&cues[i])
	}
	return total
}

// ActualTotal sums every cue's actual duration as of now
func ActualTotal(cues []domain.Cue, now time.Time) int {
	total := 0
	for i := range cues {
		total += timer.ActualDuration(&cues[i], now)
	}
	return total
}

// EventProgress is 100 * actual / planned. An empty or zero-length plan yields 0.
func EventProgress(cues []domain.Cue, now time.Time) float64 {
	planned := PlannedTotal(cues)
	if planned <= 0 {
		return 0
	}
	return 100 * float64(ActualTotal(cues, now)) / float64(planned)
}

// Segments lays out the segmented progress bar. Each cue's width is its share
// of the plan; its fill is elapsed over planned, capped at 100.
func Segments(cues []domain.Cue) []domain.Segment {
	planned := PlannedTotal(cues)
	segments := make([]domain.Segment, 0, len(cues))
	for i := range cues {
		cuePlanned := timer.PlannedSeconds(&cues[i])
		seg := domain.Segment{CueID: cues[i].ID}
		if planned > 0 {
			seg.WidthPercent = 100 * float64(cuePlanned) / float64(planned)
		}
		if cuePlanned > 0 {
			seg.FillPercent = math.Min(100, 100*float64(cues[i].ElapsedTime)/float64(cuePlanned))
		}
		segments = append(segments, seg)
	}
	return segments
}

// Summary builds the elapsed / completed / remaining line from the
// event-wide elapsed counter.
func Summary(cues []domain.Cue, totalElapsed int) domain.ProgressSummary {
	planned := PlannedTotal(cues)
	summary := domain.ProgressSummary{Elapsed: totalElapsed}
	if planned > 0 {
		summary.CompletedPercent = 100 * float64(totalElapsed) / float64(planned)
	}
	if remaining := planned - totalElapsed; remaining > 0 {
		summary.Remaining = remaining
	}
	return summary
}
