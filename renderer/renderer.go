// Package renderer turns position tables and reports into markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed *.md
var templates embed.FS

// RenderPositions renders the position table to a markdown string.
func RenderPositions(t *PositionTable) string {
	partials := map[string]string{
		"positions_rows":   "positions_rows.md",
		"positions_totals": "positions_totals.md",
	}
	if len(t.Rows) == 0 {
		partials["positions_totals"] = ""
	}
	return renderTemplate("positions", "positions.md", partials, t)
}

// RenderBreakdown renders a security breakdown to a markdown string.
func RenderBreakdown(b *Breakdown) string {
	partials := map[string]string{
		"breakdown_records": "breakdown_records.md",
		"breakdown_sums":    "breakdown_sums.md",
		"positions_rows":    "positions_rows.md",
	}
	return renderTemplate("breakdown", "breakdown.md", partials, b)
}

// RenderSizing renders a position size computation to a markdown string.
func RenderSizing(s *Sizing) string {
	return renderTemplate("sizing", "sizing.md", nil, s)
}

// RenderAnalysis renders a closed trade analysis to a markdown string.
func RenderAnalysis(a *Analysis) string {
	partials := map[string]string{
		"analysis_groups": "analysis_groups.md",
		"analysis_trades": "analysis_trades.md",
	}
	return renderTemplate("analysis", "analysis.md", partials, a)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
