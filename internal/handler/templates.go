package handler

import (
	"embed"
	"fmt"
	"html/template"

	"stage-cue/internal/timefmt"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateFuncs returns the custom template functions used across all templates
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		// clock renders whole seconds as "MM:SS"
		"clock": func(seconds int) string {
			return timefmt.FormatSecondsToClock(float64(seconds))
		},
		// countdown renders a remaining time with a leading "-" at or past zero
		"countdown": timefmt.FormatCountdown,
		// percent formats a percentage for display or a CSS width
		"percent": func(v float64) string {
			return fmt.Sprintf("%.1f", v)
		},
		// add adds two integers
		"add": func(a, b int) int {
			return a + b
		},
	}
}

// LoadTemplates parses the embedded page templates
func LoadTemplates() *template.Template {
	return template.Must(template.New("").Funcs(TemplateFuncs()).ParseFS(templateFS, "templates/*.html"))
}
