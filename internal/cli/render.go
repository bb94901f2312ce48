package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/genv-lang/genv/internal/diagnostic"
	"github.com/genv-lang/genv/internal/position"
)

var (
	colorError   = lipgloss.Color("#EF4444")
	colorWarning = lipgloss.Color("#F59E0B")
	colorMuted   = lipgloss.Color("#6B7280")

	errorStyle    = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	warningStyle  = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	locationStyle = lipgloss.NewStyle().Bold(true)
	sourceStyle   = lipgloss.NewStyle().Foreground(colorMuted)
)

// Renderer prints diagnostics, one per line, followed by the offending
// source line when it is known.
type Renderer struct {
	Color bool
	Files *position.SourceMap
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if !r.Color {
		return text
	}
	return s.Render(text)
}

// Format renders one diagnostic.
func (r *Renderer) Format(e diagnostic.Entry) string {
	d := e.Diagnostic
	label := e.Severity.String()
	if d.Kind != nil {
		label += "[" + d.Kind.Code() + "]"
	}
	if e.Severity == diagnostic.SeverityError {
		label = r.style(errorStyle, label)
	} else {
		label = r.style(warningStyle, label)
	}

	msg := "unknown"
	if d.Kind != nil {
		msg = d.Kind.String()
	}

	var sb strings.Builder
	if loc := location(d.Span); loc != "" {
		sb.WriteString(r.style(locationStyle, loc) + ": ")
	}
	sb.WriteString(label + ": " + msg)

	if r.Files != nil && d.Span.Start.Line > 0 {
		if line := r.Files.GetLine(d.Span.Start); strings.TrimSpace(line) != "" {
			sb.WriteString("\n    " + r.style(sourceStyle, strings.TrimRight(line, "\r")))
		}
	}
	return sb.String()
}

// Render writes every entry of list to w.
func (r *Renderer) Render(w io.Writer, list *diagnostic.List) error {
	if list == nil {
		return nil
	}
	for _, e := range list.Entries() {
		if _, err := fmt.Fprintln(w, r.Format(e)); err != nil {
			return err
		}
	}
	return nil
}

func location(s position.Span) string {
	if !s.Start.IsValid() {
		if s.Start.Filename != "" {
			return filepath.ToSlash(s.Start.Filename)
		}
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", filepath.ToSlash(s.Start.Filename), s.Start.Line, s.Start.Column)
}
