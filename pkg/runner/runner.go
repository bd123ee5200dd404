package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wronai/pactfix/internal/logging"
	"github.com/wronai/pactfix/pkg/dispatch"
	"github.com/wronai/pactfix/pkg/fix"
	"github.com/wronai/pactfix/pkg/fsutil"
	"github.com/wronai/pactfix/pkg/langdetect"
)

// Skip reasons.
const (
	SkipBinary   = "binary file"
	SkipModified = "modified during analysis"
)

// StdinPath names the document read from standard input.
const StdinPath = "<stdin>"

// Runner analyzes files with a dispatcher.
type Runner struct {
	dispatcher *dispatch.Dispatcher
}

// New creates a Runner over d.
func New(d *dispatch.Dispatcher) *Runner {
	return &Runner{dispatcher: d}
}

// Dispatcher returns the runner's dispatcher.
func (r *Runner) Dispatcher() *dispatch.Dispatcher { return r.dispatcher }

// Run discovers files under opts.Paths and processes them concurrently.
// Outcomes are ordered by relative path. A cancelled context stops the run
// between files and is returned along with the outcomes gathered so far.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.FromContext(ctx)

	files, err := Discover(ctx, opts, r.recognize)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Files: make([]FileOutcome, 0, len(files)),
		Stats: newStats(),
	}
	result.Stats.FilesDiscovered = len(files)
	logger.Debug("discovered files", logging.FieldFiles, len(files))

	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	outcomes := make([]*FileOutcome, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, file := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome := r.processFile(gctx, file, opts)
			outcomes[i] = &outcome
			return nil
		})
	}
	waitErr := g.Wait()

	for _, outcome := range outcomes {
		if outcome != nil {
			result.accumulate(*outcome)
		}
	}

	logger.Debug("run complete",
		logging.FieldFilesProcessed, result.Stats.FilesProcessed,
		logging.FieldFilesWithIssues, result.Stats.FilesWithIssues,
		logging.FieldIssuesTotal, result.Stats.IssuesTotal,
		logging.FieldFixesTotal, result.Stats.FixesTotal,
		logging.FieldFilesModified, result.Stats.FilesModified,
	)

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run cancelled: %w", err)
	}
	if waitErr != nil {
		return result, fmt.Errorf("run: %w", waitErr)
	}
	return result, nil
}

// AnalyzeReader analyzes a single document read from rd. filename is a
// classification hint and may be empty. Fixes are never written.
func (r *Runner) AnalyzeReader(ctx context.Context, rd io.Reader, filename string, opts Options) (*Result, error) {
	content, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	path := filename
	if path == "" {
		path = StdinPath
	}

	start := time.Now()
	rep := r.dispatcher.AnalyzeFile(ctx, filename, content, opts.Force)
	rep.Path = path
	r.logReport(ctx, rep, start)

	result := &Result{Stats: newStats()}
	result.Stats.FilesDiscovered = 1
	result.accumulate(FileOutcome{Path: path, Report: rep})
	return result, nil
}

// recognize accepts walked files whose name alone determines a format.
func (r *Runner) recognize(relPath string) bool {
	switch r.dispatcher.Explain("", relPath).Source {
	case langdetect.SourceOverride, langdetect.SourceFilename, langdetect.SourceExtension:
		return true
	default:
		return false
	}
}

func (r *Runner) processFile(ctx context.Context, file Candidate, opts Options) FileOutcome {
	outcome := FileOutcome{Path: file.RelPath, AbsPath: file.AbsPath}
	ctx, logger := logging.With(ctx, logging.FieldPath, file.RelPath)

	content, snap, err := fsutil.Read(ctx, file.AbsPath)
	if err != nil {
		outcome.Error = err
		logger.Warn("cannot read file", logging.FieldError, err)
		return outcome
	}
	if fsutil.IsBinary(content) {
		outcome.Skipped = SkipBinary
		logger.Debug("skipping binary file")
		return outcome
	}

	start := time.Now()
	rep := r.dispatcher.AnalyzeFile(ctx, file.RelPath, content, opts.Force)
	outcome.Report = rep
	r.logReport(ctx, rep, start)

	for _, o := range fix.DetectOverlaps(rep.Result.Edits()) {
		logger.Debug("overlapping edits", logging.FieldError, o)
	}

	if !opts.Fix || rep.Fault != nil {
		return outcome
	}

	fixed := rep.Result.FixedCode
	if rep.Annotated != "" {
		fixed = rep.Annotated
	}

	written, err := fsutil.WriteFixed(ctx, snap, []byte(fixed), fsutil.WriteOptions{Backup: opts.Backup})
	switch {
	case errors.Is(err, fsutil.ErrModified):
		outcome.Skipped = SkipModified
		logger.Warn("file changed during analysis; fixes not written")
	case err != nil:
		outcome.Error = fmt.Errorf("write fixes: %w", err)
		logger.Error("cannot write fixes", logging.FieldError, err)
	case written.Written:
		outcome.Written = true
		outcome.BackupPath = written.BackupPath
		r.dispatcher.Metrics().FileWritten()
		logger.Info("fixed", logging.FieldFixes, len(rep.Result.Fixes))
	}
	return outcome
}

func (r *Runner) logReport(ctx context.Context, rep *dispatch.Report, start time.Time) {
	logging.FromContext(ctx).Debug("analyzed",
		logging.FieldPath, rep.Path,
		logging.FieldFormat, rep.Result.Language,
		logging.FieldIssues, rep.IssueCount(),
		logging.FieldFixes, len(rep.Result.Fixes),
		logging.FieldDuration, time.Since(start),
	)
}
