// Package report renders provisioning outcomes for operators.
package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/jaspreet-dot-casa/pvcli/pkg/installer"
	"github.com/jaspreet-dot-casa/pvcli/pkg/pipeline"
)

// Styles for the operator summary.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")) // Cyan

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("40")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

// statusStyle picks the style for a record status.
func statusStyle(s installer.Status) lipgloss.Style {
	switch {
	case s.Succeeded():
		return successStyle
	case s == installer.StatusInstalledUnverified:
		return warningStyle
	case s == installer.StatusSkipped:
		return dimStyle
	default:
		return errorStyle
	}
}

// Render writes the full operator-facing summary: one line per record plus
// the overall counts.
func Render(w io.Writer, rep *pipeline.Report) {
	fmt.Fprintln(w, titleStyle.Render("Provisioning Report"))
	fmt.Fprintf(w, "%s\n\n", dimStyle.Render("run "+rep.RunID))

	for _, rec := range rep.Records {
		line := fmt.Sprintf("  %-44s %s", rec.Artifact.Name, statusStyle(rec.Status).Render(rec.Status.String()))
		fmt.Fprintln(w, line)
		if rec.Detail != "" {
			fmt.Fprintf(w, "    %s\n", dimStyle.Render(rec.Detail))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, Summary(rep))
}

// Summary returns the one-line count summary for a report.
func Summary(rep *pipeline.Report) string {
	c := rep.Counts
	parts := fmt.Sprintf("%d attempted, %d succeeded, %d failed, %d skipped",
		c.Attempted, c.Succeeded, c.Failed, c.Skipped)
	if c.Unverified > 0 {
		parts += fmt.Sprintf(", %d unverified", c.Unverified)
	}
	if rep.Clean() {
		return successStyle.Render("All artifacts provisioned: ") + parts
	}
	return warningStyle.Render("Completed with issues: ") + parts
}
