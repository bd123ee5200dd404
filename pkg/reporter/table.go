package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/wronai/pactfix/internal/ui/pretty"
	"github.com/wronai/pactfix/pkg/runner"
)

// TableReporter formats results as a styled table with color-coded rows.
type TableReporter struct {
	opts      Options
	styles    *pretty.Styles
	formatter *pretty.TableFormatter
	bw        *bufio.Writer
}

// NewTableReporter creates a new table reporter sized to the terminal
// behind the writer.
func NewTableReporter(opts Options) *TableReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	styles := pretty.NewStyles(colorEnabled)

	return &TableReporter{
		opts:      opts,
		styles:    styles,
		formatter: pretty.NewTableFormatter(styles, colorEnabled, pretty.TerminalWidth(opts.Writer)),
		bw:        bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TableReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
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

	for _, file := range result.Files {
		if file.Error != nil {
			fmt.Fprintf(r.bw, "%s: %s\n",
				r.styles.FilePath.Render(file.Path),
				r.styles.Error.Render(fmt.Sprintf("error: %v", file.Error)),
			)
		}
	}

	if !result.HasIssues() {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Success.Render("All files passed!"))
			fmt.Fprintln(r.bw, r.styles.Dim.Render(
				fmt.Sprintf("%d files checked", result.Stats.FilesProcessed),
			))
		}
		return 0, nil
	}

	fmt.Fprint(r.bw, r.formatter.FormatTable(result))

	if r.opts.ShowSummary {
		if r.opts.DetailedSummary {
			fmt.Fprint(r.bw, r.styles.FormatSummary(result.Stats))
		} else {
			fmt.Fprintln(r.bw, r.formatter.FormatTableSummary(result.Stats, ""))
		}
		if result.Stats.FixesTotal > 0 && result.Stats.FilesModified == 0 {
			fmt.Fprintln(r.bw)
			fmt.Fprintln(r.bw, r.styles.Dim.Render("Run with --fix to apply the fixable issues"))
		}
	}

	return result.Stats.IssuesTotal, nil
}
