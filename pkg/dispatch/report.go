package dispatch

import (
	"context"
	"time"

	"github.com/wronai/pactfix/internal/logging"
	"github.com/wronai/pactfix/pkg/lint"
)

// Report is the outcome of analyzing one file.
type Report struct {
	Path   string
	Result lint.Result
	// Annotated is the fixed text with fix comments, set when annotation is
	// enabled.
	Annotated string
	// Fault is set when the analyzer failed; Result then carries the
	// PACTFIX000 issue.
	Fault    *Fault
	Duration time.Duration
}

// HasIssues reports whether the file produced any errors or warnings.
func (r *Report) HasIssues() bool {
	return len(r.Result.Errors)+len(r.Result.Warnings) > 0
}

// IssueCount returns the number of errors and warnings.
func (r *Report) IssueCount() int {
	return len(r.Result.Errors) + len(r.Result.Warnings)
}

// AnalyzeFile analyzes content read from path. A non-empty force skips
// classification.
func (d *Dispatcher) AnalyzeFile(ctx context.Context, path string, content []byte, force string) *Report {
	start := time.Now()
	text := string(content)

	ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With(logging.FieldPath, path))
	format := d.resolve(ctx, text, path, force)
	out := d.run(ctx, format, text)

	rep := &Report{Path: path, Fault: out.Fault}
	if out.Fault != nil {
		rep.Result = out.Fault.Result(text)
	} else {
		rep.Result = out.Result
	}
	if d.opts.Annotate {
		rep.Annotated = d.Annotate(rep.Result)
	}
	rep.Duration = time.Since(start)
	return rep
}
