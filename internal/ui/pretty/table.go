package pretty

import (
	"fmt"
	"strings"

	"github.com/wronai/pactfix/pkg/lint"
	"github.com/wronai/pactfix/pkg/runner"
)

const (
	fixedMark      = "+"
	columnGap      = "  "
	heavySeparator = "="
	lightSeparator = "-"
)

// Lower bounds for the shrinkable columns.
const (
	minPathWidth    = 16
	minMessageWidth = 30
)

// TableRow is one issue in the table. Path and Format are set only on the
// first row of each file's group.
type TableRow struct {
	Path     string
	Format   string
	Location string
	Severity lint.Severity
	Code     string
	Message  string
	Fixed    bool
}

// TableFormatter lays out issues in aligned columns:
// FILE, FORMAT, LINE, SEV, CODE, MESSAGE and a fixed mark.
type TableFormatter struct {
	styles       *Styles
	colorEnabled bool
	termWidth    int
}

// NewTableFormatter returns a formatter fitting rows into termWidth columns.
func NewTableFormatter(styles *Styles, colorEnabled bool, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = DefaultTermWidth
	}
	return &TableFormatter{styles: styles, colorEnabled: colorEnabled, termWidth: termWidth}
}

// FormatTable renders every file with issues as one group of rows. The
// result is empty when no file has any.
func (t *TableFormatter) FormatTable(result *runner.Result) string {
	if result == nil {
		return ""
	}
	groups := CollectRows(result)
	if len(groups) == 0 {
		return ""
	}

	w := t.fit(groups)
	var b strings.Builder
	b.WriteString(t.styles.TableHeader.Render(w.line("FILE", "FORMAT", "LINE", "SEV", "CODE", "MESSAGE", "FIX")) + "\n")
	b.WriteString(t.rule(w, heavySeparator))
	for i, group := range groups {
		if i > 0 {
			b.WriteString(t.rule(w, lightSeparator))
		}
		for _, row := range group {
			b.WriteString(t.row(row, w) + "\n")
		}
	}
	b.WriteString(t.rule(w, heavySeparator))
	b.WriteString(t.legend() + "\n")
	return b.String()
}

// FormatTableSummary returns the one-line footer printed under the table.
func (t *TableFormatter) FormatTableSummary(stats runner.Stats, duration string) string {
	parts := []string{fmt.Sprintf("%d %s checked", stats.FilesProcessed, plural(stats.FilesProcessed, wordFile, wordFiles))}

	counts := []struct {
		sev       lint.Severity
		one, many string
	}{
		{lint.SeverityError, "error", "errors"},
		{lint.SeverityWarning, "warning", "warnings"},
		{lint.SeverityInfo, "info", "info"},
	}
	for _, c := range counts {
		if n := stats.IssuesBySeverity[c.sev]; n > 0 {
			parts = append(parts, t.styles.Row(c.sev).Render(fmt.Sprintf("%d %s", n, plural(n, c.one, c.many))))
		}
	}
	if n := stats.FixesTotal; n > 0 {
		parts = append(parts, t.styles.TableFixable.Render(fmt.Sprintf("%d %s", n, plural(n, "fix", "fixes"))))
	}
	if duration != "" {
		parts = append(parts, t.styles.Dim.Render(duration))
	}
	return " " + strings.Join(parts, " | ")
}

// CollectRows groups the issues of every analyzed file, ordered as the
// result lists them. An issue counts as fixed when a fix is anchored on its
// line.
func CollectRows(result *runner.Result) [][]TableRow {
	var groups [][]TableRow
	for _, file := range result.Files {
		if file.Report == nil {
			continue
		}
		res := file.Report.Result
		issues := res.Issues()
		if len(issues) == 0 {
			continue
		}

		fixed := make(map[int]bool, len(res.Fixes))
		for _, f := range res.Fixes {
			fixed[f.Line] = true
		}

		rows := make([]TableRow, 0, len(issues))
		for i, issue := range issues {
			row := IssueToTableRow(issue, fixed[issue.Line])
			if i == 0 {
				row.Path, row.Format = file.Path, res.Language
			}
			rows = append(rows, row)
		}
		groups = append(groups, rows)
	}
	return groups
}

// IssueToTableRow converts an issue to a row without its file columns.
func IssueToTableRow(issue lint.Issue, fixed bool) TableRow {
	return TableRow{
		Location: fmt.Sprintf("%d:%d", issue.Line, max(issue.Column, 1)),
		Severity: issue.Severity,
		Code:     issue.Code,
		Message:  issue.Message,
		Fixed:    fixed,
	}
}

// widths are the column widths in table order.
type widths struct {
	path, format, loc, code, message int
}

const (
	sevWidth = 4 // "SEV" and the one-letter severities
	fixWidth = 3 // "FIX"
	gapCount = 6
)

func (w widths) total() int {
	return 1 + w.path + w.format + w.loc + sevWidth + w.code + w.message + fixWidth + gapCount*len(columnGap)
}

func (w widths) line(path, format, loc, sev, code, message, fixed string) string {
	return " " + strings.Join([]string{
		pad(path, w.path), pad(format, w.format), pad(loc, w.loc), pad(sev, sevWidth),
		pad(code, w.code), pad(message, w.message), fixed,
	}, columnGap)
}

// fit sizes columns to their content, then narrows the message column and
// after it the path column until the table fits the terminal.
func (t *TableFormatter) fit(groups [][]TableRow) widths {
	w := widths{path: len("FILE"), format: len("FORMAT"), loc: len("LINE"), code: len("CODE"), message: len("MESSAGE")}
	for _, group := range groups {
		for _, row := range group {
			w.path = max(w.path, len(row.Path))
			w.format = max(w.format, len(row.Format))
			w.loc = max(w.loc, len(row.Location))
			w.code = max(w.code, len(row.Code))
			w.message = max(w.message, len(row.Message))
		}
	}

	if over := w.total() - t.termWidth; over > 0 {
		w.message = max(min(w.message, minMessageWidth), w.message-over)
	}
	if over := w.total() - t.termWidth; over > 0 {
		w.path = max(min(w.path, minPathWidth), w.path-over)
	}
	return w
}

func (t *TableFormatter) rule(w widths, char string) string {
	return t.styles.TableSeparator.Render(strings.Repeat(char, w.total())) + "\n"
}

func (t *TableFormatter) row(row TableRow, w widths) string {
	text := w.line(
		truncatePath(row.Path, w.path),
		row.Format,
		row.Location,
		severityLetter(row.Severity),
		row.Code,
		truncateString(row.Message, w.message),
		"",
	)
	out := t.styles.Row(row.Severity).Render(text)
	if row.Fixed {
		out += t.styles.TableFixable.Render(fixedMark)
	}
	return out
}

func (t *TableFormatter) legend() string {
	e, w, i := "E = error", "W = warning", "I = info"
	if t.colorEnabled {
		e, w, i = t.styles.TableErrorRow.Render(e), t.styles.TableWarnRow.Render(w), t.styles.TableInfoRow.Render(i)
	}
	return t.styles.TableLegend.Render(fmt.Sprintf(" SEV: %s, %s, %s | %s = fixed on this line", e, w, i, fixedMark))
}

func severityLetter(sev lint.Severity) string {
	switch sev {
	case lint.SeverityError:
		return "E"
	case lint.SeverityWarning:
		return "W"
	case lint.SeverityInfo:
		return "I"
	default:
		return "?"
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// truncateString cuts str to maxLen, ending in "..." when cut.
func truncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return str[:maxLen]
	}
	return str[:maxLen-3] + "..."
}

// truncatePath keeps the tail of a path, which names the file.
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-maxLen+3:]
}
