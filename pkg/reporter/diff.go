package reporter

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/wronai/pactfix/internal/ui/pretty"
	"github.com/wronai/pactfix/pkg/fix"
	"github.com/wronai/pactfix/pkg/runner"
)

// DiffReporter formats the fixes of each file as a git-style unified diff.
// With annotation enabled the annotated text is diffed.
type DiffReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewDiffReporter creates a new diff reporter.
func NewDiffReporter(opts Options) *DiffReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &DiffReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter. It returns the number of files with changes.
func (r *DiffReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil {
		return 0, nil
	}

	var filesWithDiffs, additions, deletions int
	for _, file := range result.Files {
		if file.Error != nil {
			fmt.Fprintf(r.bw, "%s: %s\n",
				r.styles.FilePath.Render(file.Path),
				r.styles.Error.Render(fmt.Sprintf("error: %v", file.Error)),
			)
			continue
		}

		diff := FileDiff(file)
		if !diff.HasChanges() {
			continue
		}

		filesWithDiffs++
		additions += diff.Additions
		deletions += diff.Deletions
		r.writeDiff(diff)
	}

	if filesWithDiffs > 0 && r.opts.ShowSummary {
		r.writeSummary(filesWithDiffs, additions, deletions)
	}

	return filesWithDiffs, nil
}

// FileDiff returns the diff between a file's original text and its fixed
// (or annotated) text, or nil when nothing changed.
func FileDiff(file runner.FileOutcome) *fix.Diff {
	if file.Report == nil {
		return nil
	}
	res := file.Report.Result
	target := res.FixedCode
	if file.Report.Annotated != "" {
		target = file.Report.Annotated
	}
	return fix.GenerateDiff(file.Path, res.OriginalCode, target)
}

func (r *DiffReporter) writeDiff(diff *fix.Diff) {
	path := strings.TrimPrefix(diff.Path, "/")
	fmt.Fprintln(r.bw, r.styles.DiffHeader.Render(fmt.Sprintf("diff --git a/%s b/%s", path, path)))

	for _, line := range strings.Split(strings.TrimSuffix(diff.String(), "\n"), "\n") {
		r.writeDiffLine(line)
	}

	fmt.Fprintln(r.bw)
}

func (r *DiffReporter) writeDiffLine(line string) {
	var styled string

	switch {
	case strings.HasPrefix(line, "@@"):
		styled = r.styles.DiffHunk.Render(line)
	case strings.HasPrefix(line, "+"):
		styled = r.styles.DiffAdd.Render(line)
	case strings.HasPrefix(line, "-"):
		styled = r.styles.DiffRemove.Render(line)
	default:
		styled = r.styles.DiffContext.Render(line)
	}

	fmt.Fprintln(r.bw, styled)
}

func (r *DiffReporter) writeSummary(files, additions, deletions int) {
	fileWord := "files"
	if files == 1 {
		fileWord = "file"
	}
	parts := []string{fmt.Sprintf("%d %s changed", files, fileWord)}

	if additions > 0 {
		word := "insertions"
		if additions == 1 {
			word = "insertion"
		}
		parts = append(parts, r.styles.DiffAdd.Render(fmt.Sprintf("%d %s(+)", additions, word)))
	}
	if deletions > 0 {
		word := "deletions"
		if deletions == 1 {
			word = "deletion"
		}
		parts = append(parts, r.styles.DiffRemove.Render(fmt.Sprintf("%d %s(-)", deletions, word)))
	}

	fmt.Fprintln(r.bw, strings.Join(parts, ", "))
}
