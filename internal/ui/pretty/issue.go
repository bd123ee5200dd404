package pretty

import (
	"fmt"
	"strings"

	"github.com/wronai/pactfix/pkg/lint"
)

// FormatIssue formats a single issue as "  line:col  severity  message  (CODE)".
// A non-empty sourceLine is echoed below with a caret under the column.
func (s *Styles) FormatIssue(issue lint.Issue, sourceLine string) string {
	var builder strings.Builder

	location := s.Location.Render(fmt.Sprintf("%d:%d", issue.Line, max(issue.Column, 1)))
	fmt.Fprintf(&builder, "  %s  %s  %s  %s\n",
		location,
		s.FormatSeverity(issue.Severity),
		s.Message.Render(issue.Message),
		s.Code.Render("("+issue.Code+")"),
	)

	if sourceLine != "" {
		builder.WriteString(s.FormatSourceContext(sourceLine, issue.Column))
	}
	return builder.String()
}

// FormatFix formats a proposed fix with its before and after snippets.
func (s *Styles) FormatFix(f lint.Fix) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "  %s  %s %s\n",
		s.Location.Render(fmt.Sprintf("%d", f.Line)),
		s.FixNote.Render("fix:"),
		s.Message.Render(f.Description),
	)
	if f.Before != "" || f.After != "" {
		builder.WriteString("        " + s.DiffRemove.Render("- "+strings.TrimSpace(f.Before)) + "\n")
		builder.WriteString("        " + s.DiffAdd.Render("+ "+strings.TrimSpace(f.After)) + "\n")
	}
	return builder.String()
}

// FormatSeverity returns a styled severity string.
func (s *Styles) FormatSeverity(sev lint.Severity) string {
	switch sev {
	case lint.SeverityError:
		return s.Error.Render("error")
	case lint.SeverityWarning:
		return s.Warning.Render("warning")
	case lint.SeverityInfo:
		return s.Info.Render("info")
	default:
		return string(sev)
	}
}

// FormatSourceContext formats the source line with a caret marker.
func (s *Styles) FormatSourceContext(line string, column int) string {
	const indent = "        "

	var builder strings.Builder
	builder.WriteString(indent + s.SourceLine.Render(line) + "\n")
	if column > 0 {
		builder.WriteString(indent + strings.Repeat(" ", column-1) + s.Caret.Render("^") + "\n")
	}
	return builder.String()
}

// FormatFileHeader formats a file header for grouped output:
// the path, the detected format and the issue count.
func (s *Styles) FormatFileHeader(path, format string, issueCount int) string {
	header := s.FilePath.Render(path)
	if format != "" {
		header += " " + s.Format.Render("["+format+"]")
	}
	switch {
	case issueCount == 1:
		header += s.Dim.Render(" (1 issue)")
	case issueCount > 1:
		header += s.Dim.Render(fmt.Sprintf(" (%d issues)", issueCount))
	}
	return header
}
