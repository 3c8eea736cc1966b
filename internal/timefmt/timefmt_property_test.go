package timefmt

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_TwelveHourRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("to24Hour(to12Hour(t)) == t", prop.ForAll(
		func(hour, minute int) bool {
			t24 := fmt.Sprintf("%02d:%02d", hour, minute)
			return To24Hour(To12Hour(t24)) == t24
		},
		gen.IntRange(0, 23),
		gen.IntRange(0, 59),
	))

	properties.TestingRun(t)
}

func TestProperty_DurationFormatAgreement(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("format(parse(m:ss)) is zero-padded m:ss", prop.ForAll(
		func(minutes, seconds int) bool {
			secs := ParseDurationToSeconds(fmt.Sprintf("%d:%02d", minutes, seconds))
			return FormatSecondsToClock(secs) == fmt.Sprintf("%02d:%02d", minutes, seconds)
		},
		gen.IntRange(0, 600),
		gen.IntRange(0, 59),
	))

	properties.TestingRun(t)
}
