package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/wronai/pactfix/internal/ui/pretty"
	"github.com/wronai/pactfix/pkg/lint"
	"github.com/wronai/pactfix/pkg/runner"
)

// TextReporter formats results as styled terminal output grouped by file.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Success.Render("No files to check."))
		}
		return 0, nil
	}

	var total int
	for _, file := range result.Files {
		total += r.reportFile(file)
	}

	if r.opts.ShowSummary {
		writeSummary(r.bw, r.styles, result.Stats, r.opts.DetailedSummary)
	}

	return total, nil
}

// reportFile writes one file's section and returns its issue count.
func (r *TextReporter) reportFile(file runner.FileOutcome) int {
	if file.Error != nil {
		fmt.Fprintf(r.bw, "%s: %s\n",
			r.styles.FilePath.Render(file.Path),
			r.styles.Error.Render(fmt.Sprintf("error: %v", file.Error)),
		)
		return 0
	}

	if file.Report == nil {
		if file.Skipped != "" {
			fmt.Fprintf(r.bw, "%s: %s\n", r.styles.FilePath.Render(file.Path), r.styles.Dim.Render("skipped ("+file.Skipped+")"))
		}
		return 0
	}

	res := file.Report.Result
	issues := res.Issues()
	showFixes := r.opts.ShowFixes && len(res.Fixes) > 0
	if len(issues) == 0 && !showFixes && !file.Written && file.Skipped == "" {
		return 0
	}

	fmt.Fprintln(r.bw, r.styles.FormatFileHeader(file.Path, res.Language, len(issues)))

	var lines []string
	if r.opts.ShowContext {
		lines = lint.Lines(res.OriginalCode)
	}
	for _, issue := range issues {
		fmt.Fprint(r.bw, r.styles.FormatIssue(issue, sourceLine(lines, issue.Line)))
	}

	if showFixes {
		for _, f := range res.Fixes {
			fmt.Fprint(r.bw, r.styles.FormatFix(f))
		}
	}

	switch {
	case file.Written && file.BackupPath != "":
		fmt.Fprintln(r.bw, "  "+r.styles.Success.Render("fixed")+r.styles.Dim.Render(" (backup: "+file.BackupPath+")"))
	case file.Written:
		fmt.Fprintln(r.bw, "  "+r.styles.Success.Render("fixed"))
	case file.Skipped != "":
		fmt.Fprintln(r.bw, "  "+r.styles.Warning.Render("not written: "+file.Skipped))
	}

	fmt.Fprintln(r.bw)
	return len(issues)
}

// sourceLine returns the 1-based line n, or "" when lines is empty or n is
// out of range.
func sourceLine(lines []string, n int) string {
	if n < 1 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}

func writeSummary(w *bufio.Writer, styles *pretty.Styles, stats runner.Stats, detailed bool) {
	if detailed {
		fmt.Fprint(w, styles.FormatSummary(stats))
		return
	}
	fmt.Fprint(w, styles.FormatSummaryOneLine(stats))
}
