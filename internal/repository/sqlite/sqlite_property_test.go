package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"stage-cue/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_EventCuesRoundTrip(t *testing.T) {
	repo := NewEventRepository(setupTestDB(t))
	ctx := context.Background()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	genCue := gopter.CombineGens(
		gen.IntRange(0, 90),
		gen.IntRange(0, 59),
		gen.IntRange(0, 5400),
		gen.Bool(),
		gen.AlphaString(),
	).Map(func(v []interface{}) domain.Cue {
		minutes, seconds, elapsed := v[0].(int), v[1].(int), v[2].(int)
		planned := minutes*60 + seconds
		c := domain.Cue{
			Duration:      formatDuration(minutes, seconds),
			Title:         v[4].(string),
			ElapsedTime:   elapsed,
			RemainingTime: planned - elapsed,
		}
		if v[3].(bool) {
			start := base.Add(time.Duration(elapsed) * time.Second)
			c.ActualStartTime = &start
		}
		return c
	})

	properties.Property("cue list survives merge and get", prop.ForAll(
		func(cues []domain.Cue) bool {
			for i := range cues {
				cues[i].ID = i + 1
			}
			if err := repo.Merge(ctx, domain.EventPatch{Cues: cues, SetCues: true}); err != nil {
				t.Logf("Merge: %v", err)
				return false
			}

			event, err := repo.Get(ctx)
			if len(cues) == 0 {
				return errors.Is(err, domain.ErrNotFound)
			}
			if err != nil || len(event.Cues) != len(cues) {
				return false
			}
			for i := range cues {
				got, want := event.Cues[i], cues[i]
				if got.ID != want.ID || got.Duration != want.Duration || got.Title != want.Title ||
					got.ElapsedTime != want.ElapsedTime || got.RemainingTime != want.RemainingTime {
					return false
				}
				if (got.ActualStartTime == nil) != (want.ActualStartTime == nil) {
					return false
				}
				if got.ActualStartTime != nil && !got.ActualStartTime.Equal(*want.ActualStartTime) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genCue),
	))

	properties.TestingRun(t)
}
