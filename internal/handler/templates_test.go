package handler

import (
	"bytes"
	"strings"
	"testing"

	"stage-cue/internal/domain"
)

func TestTemplateFuncs(t *testing.T) {
	funcs := TemplateFuncs()

	t.Run("clock renders MM:SS", func(t *testing.T) {
		clock := funcs["clock"].(func(int) string)
		if got := clock(330); got != "05:30" {
			t.Errorf("clock(330) = %q, want 05:30", got)
		}
	})

	t.Run("countdown prefixes overtime", func(t *testing.T) {
		countdown := funcs["countdown"].(func(int) string)
		if got := countdown(-65); got != "-01:05" {
			t.Errorf("countdown(-65) = %q, want -01:05", got)
		}
		if got := countdown(0); got != "-00:00" {
			t.Errorf("countdown(0) = %q, want -00:00", got)
		}
	})

	t.Run("percent keeps one decimal", func(t *testing.T) {
		percent := funcs["percent"].(func(float64) string)
		if got := percent(100.0 / 3); got != "33.3" {
			t.Errorf("percent = %q, want 33.3", got)
		}
	})

	t.Run("add adds two integers", func(t *testing.T) {
		add := funcs["add"].(func(int, int) int)
		if got := add(3, 4); got != 7 {
			t.Errorf("add = %d, want 7", got)
		}
	})
}

func TestHomeTemplateRendering(t *testing.T) {
	tmpl := LoadTemplates()

	event := &domain.Event{
		Title: "Pawnee Townhall",
		Cues: []domain.Cue{
			{ID: 1, StartTime12: "7:00 PM", Duration: "5:00", Title: "Welcome", Speaker: "Leslie", RemainingTime: 300, IsRunning: true},
			{ID: 2, StartTime12: "7:05 PM", Duration: "3:00", Title: "Parks Report", Speaker: "Ron", RemainingTime: -12},
		},
	}
	data := map[string]interface{}{
		"User":        &domain.User{Email: "leslie@pawnee.gov", Role: domain.RoleAdmin},
		"AuthEnabled": true,
		"Event":       event,
		"Progress": domain.ProgressView{
			Segments: []domain.Segment{{CueID: 1, WidthPercent: 62.5}, {CueID: 2, WidthPercent: 37.5}},
			Summary:  domain.ProgressSummary{Elapsed: 60, CompletedPercent: 12.5, Remaining: 420},
		},
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "home.html", data); err != nil {
		t.Fatalf("failed to render home: %v", err)
	}
	html := buf.String()

	for _, want := range []string{"Pawnee Townhall", "Welcome", "Parks Report", "7:05 PM", "-00:12", "leslie@pawnee.gov", "Remaining: 07:00"} {
		if !strings.Contains(html, want) {
			t.Errorf("home page missing %q", want)
		}
	}
}

func TestHomeTemplateWithoutEvent(t *testing.T) {
	var buf bytes.Buffer
	err := LoadTemplates().ExecuteTemplate(&buf, "home.html", map[string]interface{}{
		"AuthEnabled": true,
		"Progress":    domain.ProgressView{},
	})
	if err != nil {
		t.Fatalf("failed to render home: %v", err)
	}
	if !strings.Contains(buf.String(), "No event loaded") || !strings.Contains(buf.String(), "/login") {
		t.Errorf("unexpected empty home page: %s", buf.String())
	}
}
