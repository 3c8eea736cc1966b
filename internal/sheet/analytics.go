package sheet

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"stage-cue/internal/domain"
	"stage-cue/internal/timefmt"
	"stage-cue/internal/timer"
)

// Analytics statuses
const (
	StatusNotStarted = "Not Started"
	StatusOver       = "Over"
	StatusEarly      = "Early"
	StatusOnTime     = "On Time"
)

// Sheet names in the exported workbook
const (
	AnalyticsSheet = "Cue Analytics"
	SummarySheet   = "Summary"
)

var (
	analyticsHeader = []interface{}{"Cue Number", "Start Time", "Cue Name", "Presenter", "Planned Duration", "Actual Duration", "Difference", "Status"}
	summaryHeader   = []interface{}{"Summary", "Value"}
)

func status(actual, difference int) string {
	switch {
	case actual <= 0:
		return StatusNotStarted
	case difference > 0:
		return StatusOver
	case difference < 0:
		return StatusEarly
	default:
		return StatusOnTime
	}
}

func overallStatus(difference int) string {
	switch {
	case difference > 0:
		return StatusOver
	case difference < 0:
		return StatusEarly
	default:
		return StatusOnTime
	}
}

// BuildAnalytics compares planned with actual durations as of now.
// Differences are shown as absolute clock time; the status carries the sign.
func BuildAnalytics(cues []domain.Cue, now time.Time) domain.Analytics {
	rows := make([]domain.AnalyticsRow, 0, len(cues))
	totalPlanned, totalActual := 0, 0

	for i := range cues {
		c := &cues[i]
		planned := timer.PlannedSeconds(c)
		actual := timer.ActualDuration(c, now)
		difference := actual - planned
		totalPlanned += planned
		totalActual += actual

		rows = append(rows, domain.AnalyticsRow{
			CueNumber:       i + 1,
			StartTime:       c.StartTime12,
			Name:            c.Title,
			Presenter:       c.Speaker,
			PlannedDuration: c.Duration,
			ActualDuration:  timefmt.FormatSecondsToClock(float64(actual)),
			Difference:      timefmt.FormatSecondsToClock(float64(difference)),
			Status:          status(actual, difference),
		})
	}

	totalDifference := totalActual - totalPlanned
	return domain.Analytics{
		Rows: rows,
		Summary: []domain.AnalyticsSummary{
			{Label: "Total Planned Duration", Value: timefmt.FormatSecondsToClock(float64(totalPlanned))},
			{Label: "Total Actual Duration", Value: timefmt.FormatSecondsToClock(float64(totalActual))},
			{Label: "Total Difference", Value: timefmt.FormatSecondsToClock(float64(totalDifference))},
			{Label: "Overall Status", Value: overallStatus(totalDifference)},
		},
	}
}

// WriteAnalyticsXLSX writes the analytics as a two-sheet workbook
func WriteAnalyticsXLSX(w io.Writer, a domain.Analytics) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", AnalyticsSheet); err != nil {
		return fmt.Errorf("failed to name analytics sheet: %w", err)
	}
	if err := f.SetSheetRow(AnalyticsSheet, "A1", &analyticsHeader); err != nil {
		return fmt.Errorf("failed to write analytics header: %w", err)
	}
	for i, row := range a.Rows {
		cells := []interface{}{row.CueNumber, row.StartTime, row.Name, row.Presenter, row.PlannedDuration, row.ActualDuration, row.Difference, row.Status}
		if err := f.SetSheetRow(AnalyticsSheet, fmt.Sprintf("A%d", i+2), &cells); err != nil {
			return fmt.Errorf("failed to write analytics row %d: %w", i+1, err)
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := f.SetSheetRow(SummarySheet, "A1", &summaryHeader); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}
	for i, line := range a.Summary {
		cells := []interface{}{line.Label, line.Value}
		if err := f.SetSheetRow(SummarySheet, fmt.Sprintf("A%d", i+2), &cells); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
