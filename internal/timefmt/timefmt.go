// Package timefmt converts between the clock strings used on cue sheets and
// integer seconds. Functions never fail on malformed input: numeric garbage
// propagates as NaN (or the input string is returned unchanged) and callers at
// the action boundary decide how to sanitize.
package timefmt

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// ParseDurationToSeconds parses "M:SS" into seconds.
// Minutes may have any width. Any non-numeric or missing part yields NaN.
func ParseDurationToSeconds(text string) float64 {
	parts := strings.Split(text, ":")
	if len(parts) != 2 {
		return math.NaN()
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return math.NaN()
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return math.NaN()
	}
	return float64(minutes*60 + seconds)
}

// DurationSeconds is ParseDurationToSeconds for aggregates: empty or
// unparseable durations count as zero.
func DurationSeconds(text string) int {
	if text == "" {
		return 0
	}
	secs := ParseDurationToSeconds(text)
	if math.IsNaN(secs) {
		return 0
	}
	return int(secs)
}

// FormatSecondsToClock renders |seconds| as "MM:SS". The sign is the caller's concern.
func FormatSecondsToClock(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "--:--"
	}
	abs := math.Abs(seconds)
	minutes := int(math.Floor(abs / 60))
	secs := int(math.Floor(math.Mod(abs, 60)))
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// FormatCountdown renders a remaining-time value the way the countdown
// display shows it: a leading "-" once the cue is at or past zero.
func FormatCountdown(remaining int) string {
	sign := ""
	if remaining <= 0 {
		sign = "-"
	}
	return sign + FormatSecondsToClock(float64(remaining))
}

// To24Hour converts "H:MM AM/PM" or a fractional day (spreadsheet time cell)
// into "HH:MM". Strings that do not look like a 12-hour time are returned unchanged.
func To24Hour(input any) string {
	switch v := input.(type) {
	case nil:
		return ""
	case float64:
		return fractionOfDayTo24Hour(v)
	case float32:
		return fractionOfDayTo24Hour(float64(v))
	case int:
		return fractionOfDayTo24Hour(float64(v))
	case string:
		return stringTo24Hour(v)
	case fmt.Stringer:
		return stringTo24Hour(v.String())
	}
	return ""
}

func fractionOfDayTo24Hour(fraction float64) string {
	total := int(math.Round(fraction * secondsPerDay))
	hours := total / 3600
	minutes := (total % 3600) / 60
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}

func stringTo24Hour(s string) string {
	trimmed := strings.TrimSpace(s)
	// Sheets exported without number formatting carry the raw day fraction
	if !strings.Contains(trimmed, ":") {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil && f >= 0 && f < 1 {
			return fractionOfDayTo24Hour(f)
		}
	}

	fields := strings.Fields(trimmed)
	if len(fields) < 2 {
		return s
	}
	timePart, modifier := fields[0], strings.ToLower(fields[1])

	hm := strings.Split(timePart, ":")
	if len(hm) < 2 || hm[0] == "" || hm[1] == "" {
		return s
	}
	hours, err := strconv.Atoi(hm[0])
	if err != nil {
		return s
	}
	minutes, err := strconv.Atoi(hm[1])
	if err != nil {
		return s
	}

	if modifier == "pm" && hours < 12 {
		hours += 12
	} else if modifier == "am" && hours == 12 {
		hours = 0
	}
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}

// To12Hour converts "HH:MM" to "H:MM AM/PM". Unparseable input is returned unchanged.
func To12Hour(time24 string) string {
	parts := strings.Split(time24, ":")
	if len(parts) < 2 {
		return time24
	}
	hours, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return time24
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return time24
	}

	period := "AM"
	if hours >= 12 {
		period = "PM"
	}
	hours12 := hours % 12
	if hours12 == 0 {
		hours12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", hours12, minutes, period)
}

// NextStartTime returns previousStart plus the whole minutes of
// previousDuration, wrapped to 24 hours. Seconds of the duration are ignored.
func NextStartTime(previousStart, previousDuration string) string {
	startParts := strings.Split(previousStart, ":")
	if len(startParts) < 2 {
		return previousStart
	}
	prevHours, err := strconv.Atoi(startParts[0])
	if err != nil {
		return previousStart
	}
	prevMinutes, err := strconv.Atoi(startParts[1])
	if err != nil {
		return previousStart
	}

	durationMinutes, err := strconv.Atoi(strings.Split(previousDuration, ":")[0])
	if err != nil {
		durationMinutes = 0
	}

	newMinutes := prevMinutes + durationMinutes
	newHours := (prevHours + newMinutes/60) % 24
	newMinutes %= 60
	return fmt.Sprintf("%02d:%02d", newHours, newMinutes)
}

// NormalizeSheetDuration turns a spreadsheet "H:MM:SS" duration into "M:SS".
// Empty input stays empty; anything else that is not H:MM:SS is returned as-is.
func NormalizeSheetDuration(text string) string {
	if text == "" {
		return ""
	}
	parts := strings.Split(text, ":")
	if len(parts) != 3 {
		return text
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return text
		}
		nums[i] = n
	}
	totalMinutes := nums[0]*60 + nums[1]
	return fmt.Sprintf("%d:%02d", totalMinutes, nums[2])
}

var nonDurationChars = regexp.MustCompile(`[^0-9:]`)

// SanitizeDuration is the edit-commit cleanup for operator-typed durations.
// It returns the canonical "M:SS" text and its seconds. Empty input stays empty.
func SanitizeDuration(text string) (string, int) {
	if text == "" {
		return "", 0
	}
	parts := strings.Split(nonDurationChars.ReplaceAllString(text, ""), ":")
	minutes, _ := strconv.Atoi(parts[0])
	seconds := 0
	if len(parts) > 1 {
		seconds, _ = strconv.Atoi(parts[1])
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds), minutes*60 + seconds
}

// ClockLabel is the wall-clock text shown on the countdown display, e.g. "01:34 PM"
func ClockLabel(now time.Time) string {
	return now.Format("03:04 PM")
}
