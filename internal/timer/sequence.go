package timer

import (
	"fmt"
	"time"

	"stage-cue/internal/domain"
)

// IndexOf returns the array position of the cue with the given id, or -1
func IndexOf(cues []domain.Cue, id int) int {
	for i := range cues {
		if cues[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns the cue with the given id or domain.ErrNotFound
func Find(cues []domain.Cue, id int) (*domain.Cue, error) {
	idx := IndexOf(cues, id)
	if idx == -1 {
		return nil, fmt.Errorf("%w: cue %d", domain.ErrNotFound, id)
	}
	return &cues[idx], nil
}

// RunningIDs lists the ids of every running cue in sequence order
func RunningIDs(cues []domain.Cue) []int {
	var ids []int
	for i := range cues {
		if cues[i].IsRunning {
			ids = append(ids, cues[i].ID)
		}
	}
	return ids
}

// ClampIndex keeps an active pointer inside the sequence
func ClampIndex(cues []domain.Cue, idx int) int {
	if idx < 0 || len(cues) == 0 {
		return 0
	}
	if idx > len(cues)-1 {
		return len(cues) - 1
	}
	return idx
}

// Advance stops the cue with the given id and starts the one after it by
// array position. It returns the new active pointer, which stays on the last
// cue when there is nothing to advance to.
func Advance(cues []domain.Cue, cueID int, now time.Time) (int, error) {
	idx := IndexOf(cues, cueID)
	if idx == -1 {
		return 0, fmt.Errorf("%w: cue %d", domain.ErrNotFound, cueID)
	}

	finish(&cues[idx], now)

	next := idx + 1
	if next >= len(cues) {
		return idx, nil
	}
	Start(&cues[next], now)
	return next, nil
}

// PlayAll starts the cue under the active pointer and rewinds the remaining
// time of every other cue to its planned duration. Running flags of the
// other cues are left as they are.
func PlayAll(cues []domain.Cue, active int, now time.Time) {
	for i := range cues {
		if i == active {
			Start(&cues[i], now)
			continue
		}
		cues[i].RemainingTime = PlannedSeconds(&cues[i])
	}
}

// PauseAll pauses every running cue
func PauseAll(cues []domain.Cue, now time.Time) {
	for i := range cues {
		Pause(&cues[i], now)
	}
}

// StopAll stops every started cue and rewinds idle ones. The active pointer
// returns to the first cue.
func StopAll(cues []domain.Cue, now time.Time) int {
	for i := range cues {
		if !Stop(&cues[i], now) {
			cues[i].IsRunning = false
			cues[i].RemainingTime = PlannedSeconds(&cues[i])
		}
	}
	return 0
}

// NextAll advances from the cue under the active pointer. It reports false
// and leaves everything untouched when the pointer is already on the last cue.
func NextAll(cues []domain.Cue, active int, now time.Time) (int, bool) {
	if active < 0 || active >= len(cues)-1 {
		return active, false
	}
	next, err := Advance(cues, cues[active].ID, now)
	if err != nil {
		return active, false
	}
	return next, true
}

// ResetAll resets every cue and returns the active pointer to the first cue
func ResetAll(cues []domain.Cue) int {
	for i := range cues {
		Reset(&cues[i])
	}
	return 0
}
