// Package output formats CLI results for terminal display.
// Styling is applied only when stdout is a TTY so piped output stays plain.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/dockb/dockb/internal/scanner"
	"github.com/dockb/dockb/internal/search"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	tagStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	excerptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).PaddingLeft(2)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
)

// Formatter renders search results and scan reports.
type Formatter struct {
	styled bool
}

// NewFormatter creates a formatter, enabling styles when stdout is a TTY.
func NewFormatter() *Formatter {
	return &Formatter{
		styled: isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}
}

// NewPlainFormatter creates a formatter with styling disabled.
func NewPlainFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) render(style lipgloss.Style, s string) string {
	if !f.styled {
		return s
	}
	return style.Render(s)
}

// SearchResults renders search results as human-readable text.
func (f *Formatter) SearchResults(results []*search.Result) string {
	if len(results) == 0 {
		return "No documents found.\n"
	}

	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(f.render(titleStyle, r.Record.Title))
		sb.WriteString("\n")
		sb.WriteString(f.render(pathStyle, fmt.Sprintf("%s/%s", r.Record.Category, r.Record.Path)))
		sb.WriteString("\n")
		if len(r.Record.Tags) > 0 {
			sb.WriteString(f.render(tagStyle, "tags: "+strings.Join(r.Record.Tags, ", ")))
			sb.WriteString("\n")
		}
		for _, excerpt := range r.Excerpts {
			sb.WriteString(f.render(excerptStyle, excerpt))
			sb.WriteString("\n")
		}
	}
	sb.WriteString(fmt.Sprintf("\n%d document(s)\n", len(results)))
	return sb.String()
}

// ScanReport renders a reconciliation report.
func (f *Formatter) ScanReport(report *scanner.Report) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Indexed %d, skipped %d, failed %d (%s)\n",
		report.Indexed, report.Skipped, report.Failed, report.Duration.Round(time.Millisecond)))
	for _, scanErr := range report.Errors {
		sb.WriteString(f.render(errorStyle, "  "+scanErr.String()))
		sb.WriteString("\n")
	}
	return sb.String()
}
