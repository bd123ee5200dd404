package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wronai/pactfix/pkg/lint"
	"github.com/wronai/pactfix/pkg/runner"
)

const (
	summaryDividerWidth = 40
	wordFile            = "file"
	wordFiles           = "files"
)

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "5 issues (2 errors, 3 warnings) in 2 files, 4 fixes, 1 file fixed".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	var parts []string

	if stats.IssuesTotal == 0 {
		parts = append(parts, s.Success.Render("No issues found")+
			s.Dim.Render(fmt.Sprintf(" (%d %s checked)", stats.FilesProcessed, plural(stats.FilesProcessed, wordFile, wordFiles))))
	} else {
		var severityParts []string
		if n := stats.IssuesBySeverity[lint.SeverityError]; n > 0 {
			severityParts = append(severityParts, s.Error.Render(fmt.Sprintf("%d %s", n, plural(n, "error", "errors"))))
		}
		if n := stats.IssuesBySeverity[lint.SeverityWarning]; n > 0 {
			severityParts = append(severityParts, s.Warning.Render(fmt.Sprintf("%d %s", n, plural(n, "warning", "warnings"))))
		}
		if n := stats.IssuesBySeverity[lint.SeverityInfo]; n > 0 {
			severityParts = append(severityParts, s.Info.Render(fmt.Sprintf("%d info", n)))
		}

		count := fmt.Sprintf("%d %s", stats.IssuesTotal, plural(stats.IssuesTotal, "issue", "issues"))
		if len(severityParts) > 0 {
			count += " (" + strings.Join(severityParts, ", ") + ")"
		}
		count += fmt.Sprintf(" in %d %s", stats.FilesWithIssues, plural(stats.FilesWithIssues, wordFile, wordFiles))
		parts = append(parts, count)
	}

	if stats.FixesTotal > 0 {
		parts = append(parts, s.Success.Render(fmt.Sprintf("%d %s", stats.FixesTotal, plural(stats.FixesTotal, "fix", "fixes"))))
	}
	if stats.FilesModified > 0 {
		parts = append(parts, s.Success.Render(fmt.Sprintf("%d %s fixed", stats.FilesModified, plural(stats.FilesModified, wordFile, wordFiles))))
	}
	if stats.FilesErrored > 0 {
		parts = append(parts, s.Failure.Render(fmt.Sprintf("%d %s failed", stats.FilesErrored, plural(stats.FilesErrored, wordFile, wordFiles))))
	}

	return strings.Join(parts, ", ") + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	row := func(label string, value int, style func(...string) string) {
		fmt.Fprintf(&builder, "  %-19s%s\n", label+":", style(strconv.Itoa(value)))
	}

	row("Files checked", stats.FilesProcessed, s.SummaryValue.Render)
	if stats.FilesWithIssues > 0 {
		row("Files with issues", stats.FilesWithIssues, s.Failure.Render)
	}
	if stats.FilesModified > 0 {
		row("Files fixed", stats.FilesModified, s.Success.Render)
	}
	if stats.FilesSkipped > 0 {
		row("Files skipped", stats.FilesSkipped, s.Dim.Render)
	}
	if stats.FilesErrored > 0 {
		row("Files failed", stats.FilesErrored, s.Failure.Render)
	}

	builder.WriteString("\n")
	row("Total issues", stats.IssuesTotal, s.SummaryValue.Render)
	if n := stats.IssuesBySeverity[lint.SeverityError]; n > 0 {
		row("  Errors", n, s.Error.Render)
	}
	if n := stats.IssuesBySeverity[lint.SeverityWarning]; n > 0 {
		row("  Warnings", n, s.Warning.Render)
	}
	if n := stats.IssuesBySeverity[lint.SeverityInfo]; n > 0 {
		row("  Info", n, s.Info.Render)
	}
	if stats.FixesTotal > 0 {
		row("Fixes", stats.FixesTotal, s.Success.Render)
	}
	if stats.Faults > 0 {
		row("Analyzer faults", stats.Faults, s.Failure.Render)
	}

	builder.WriteString("\n")
	switch {
	case stats.IssuesBySeverity[lint.SeverityError] > 0 || stats.FilesErrored > 0:
		builder.WriteString(s.Failure.Render("Analysis found errors"))
	case stats.IssuesBySeverity[lint.SeverityWarning] > 0:
		builder.WriteString(s.Warning.Render("Analysis completed with warnings"))
	default:
		builder.WriteString(s.Success.Render("Analysis passed"))
	}
	builder.WriteString("\n")

	return builder.String()
}
