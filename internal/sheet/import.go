// Package sheet reads cue sheets and writes analytics workbooks.
package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"stage-cue/internal/domain"
	"stage-cue/internal/timefmt"
)

type columns struct {
	time, duration, cue, presenter int
}

// locateColumns finds the first header containing each keyword, case-insensitively
func locateColumns(header []any) (columns, error) {
	cols := columns{time: -1, duration: -1, cue: -1, presenter: -1}
	for i, cell := range header {
		h := strings.ToLower(cellString(cell))
		if cols.time == -1 && strings.Contains(h, "time") {
			cols.time = i
		}
		if cols.duration == -1 && strings.Contains(h, "duration") {
			cols.duration = i
		}
		if cols.cue == -1 && (strings.Contains(h, "cue") || strings.Contains(h, "item")) {
			cols.cue = i
		}
		if cols.presenter == -1 && (strings.Contains(h, "presenter") || strings.Contains(h, "speaker")) {
			cols.presenter = i
		}
	}

	var missing []string
	if cols.time == -1 {
		missing = append(missing, "Time")
	}
	if cols.duration == -1 {
		missing = append(missing, "Duration")
	}
	if cols.cue == -1 {
		missing = append(missing, "Cue Name")
	}
	if len(missing) > 0 {
		return cols, &domain.ImportValidationError{Missing: missing}
	}
	return cols, nil
}

// ParseCues turns a header row plus data rows into a fresh cue sequence.
// Ids follow row order starting at 1. Blank rows are skipped. A sheet
// without Time, Duration and Cue/Item columns is rejected as a whole.
func ParseCues(rows [][]any) ([]domain.Cue, error) {
	if len(rows) == 0 {
		return nil, &domain.ImportValidationError{Reason: "the cue sheet is empty"}
	}

	cols, err := locateColumns(rows[0])
	if err != nil {
		return nil, err
	}

	cues := make([]domain.Cue, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}

		start24 := timefmt.To24Hour(cellAt(row, cols.time))
		duration := durationCell(cellAt(row, cols.duration))
		speaker := ""
		if cols.presenter != -1 {
			speaker = cellString(cellAt(row, cols.presenter))
		}

		cues = append(cues, domain.Cue{
			ID:            len(cues) + 1,
			StartTime:     start24,
			StartTime12:   timefmt.To12Hour(start24),
			Duration:      duration,
			Title:         cellString(cellAt(row, cols.cue)),
			Speaker:       speaker,
			RemainingTime: timefmt.DurationSeconds(duration),
		})
	}

	if len(cues) == 0 {
		return nil, &domain.ImportValidationError{Reason: "the cue sheet has no cue rows"}
	}
	return cues, nil
}

func cellAt(row []any, i int) any {
	if i < 0 || i >= len(row) {
		return nil
	}
	return row[i]
}

func blankRow(row []any) bool {
	for _, cell := range row {
		if strings.TrimSpace(cellString(cell)) != "" {
			return false
		}
	}
	return true
}

// durationCell normalizes a duration cell. Numeric cells are day fractions.
func durationCell(v any) string {
	switch n := v.(type) {
	case float64:
		total := int(math.Round(n * 24 * 60 * 60))
		return fmt.Sprintf("%d:%02d", total/60, total%60)
	case nil:
		return ""
	}
	return timefmt.NormalizeSheetDuration(strings.TrimSpace(cellString(v)))
}

func cellString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(v)
}

// Read dispatches on the file extension: .csv is read as CSV, anything else as XLSX
func Read(filename string, r io.Reader) ([][]any, error) {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return ReadCSV(r)
	}
	return ReadXLSX(r)
}

// ReadXLSX returns the formatted cell text of the workbook's first sheet
func ReadXLSX(r io.Reader) ([][]any, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &domain.ImportValidationError{Reason: fmt.Sprintf("unreadable workbook: %v", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &domain.ImportValidationError{Reason: "the workbook has no sheets"}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return toCells(rows), nil
}

// ReadCSV reads a comma-separated cue sheet. Ragged rows are allowed.
func ReadCSV(r io.Reader) ([][]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &domain.ImportValidationError{Reason: fmt.Sprintf("unreadable csv: %v", err)}
	}
	return toCells(rows), nil
}

func toCells(rows [][]string) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		out[i] = make([]any, len(row))
		for j, cell := range row {
			out[i][j] = cell
		}
	}
	return out
}
