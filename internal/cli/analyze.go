package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/wronai/pactfix/internal/configloader"
	"github.com/wronai/pactfix/internal/logging"
	"github.com/wronai/pactfix/pkg/analyzers"
	"github.com/wronai/pactfix/pkg/config"
	"github.com/wronai/pactfix/pkg/dispatch"
	"github.com/wronai/pactfix/pkg/fsutil"
	"github.com/wronai/pactfix/pkg/langdetect"
	"github.com/wronai/pactfix/pkg/reporter"
	"github.com/wronai/pactfix/pkg/runner"
)

// outputDirMode is the mode of directories created for --output and --metrics.
const outputDirMode = 0o755

// analyzeFlags holds the flags for the analyze command.
type analyzeFlags struct {
	format     string
	language   string
	color      string
	failOn     string
	fix        bool
	annotate   bool
	backup     bool
	stdin      bool
	filename   string
	jobs       int
	maxDepth   int
	marker     string
	output     string
	metrics    string
	include    []string
	exclude    []string
	extensions []string
	enable     []string
	disable    []string

	noContext      bool
	showFixes      bool
	compact        bool
	verboseSummary bool
}

func (a *app) newAnalyzeCommand() *cobra.Command {
	flags := &analyzeFlags{}

	cmd := &cobra.Command{
		Use:     "analyze [paths...]",
		Aliases: []string{"check"},
		Short:   "Analyze files and optionally fix them",
		Long: `Analyze files or directories for common mistakes.

Each file is classified by name and content, checked by the analyzer for its
format, and reported. With --fix the fixed text is written back; with
--annotate every fixed line gets a comment naming the fix.`,
		Example: `  pactfix analyze .
  pactfix analyze deploy.sh --fix --backup
  pactfix analyze --language dockerfile build/Containerfile
  cat script.sh | pactfix analyze --stdin --format json
  pactfix analyze docs/ --format sarif --output pactfix.sarif`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAnalyze(cmd, flags, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.format, "format", "", "report format: text, table, json, sarif, diff or msgpack")
	f.StringVarP(&flags.language, "language", "l", "", "analyze every document as this format or alias")
	f.StringVar(&flags.color, "color", "", "styled output: auto, always or never")
	f.StringVar(&flags.failOn, "fail-on", "", "lowest severity that fails the run: error, warning or none")
	f.BoolVar(&flags.fix, "fix", false, "write fixed files back to disk")
	f.BoolVar(&flags.annotate, "annotate", false, "add a comment above every fixed line")
	f.BoolVar(&flags.backup, "backup", false, "keep a .pactfix.bak copy of every fixed file")
	f.BoolVar(&flags.stdin, "stdin", false, "read a single document from standard input")
	f.StringVar(&flags.filename, "filename", "", "file name used to classify standard input")
	f.IntVarP(&flags.jobs, "jobs", "j", 0, "files analyzed in parallel (0 = one per CPU)")
	f.IntVar(&flags.maxDepth, "max-depth", 0, "deepest level of nested documents analyzed")
	f.StringVar(&flags.marker, "marker", "", "marker used in fix comments")
	f.StringVarP(&flags.output, "output", "o", "", "write the report to this file")
	f.StringVar(&flags.metrics, "metrics", "", "write run metrics in Prometheus text format to this file")
	f.StringSliceVar(&flags.include, "include", nil, "only analyze files matching these globs")
	f.StringSliceVar(&flags.exclude, "exclude", nil, "skip files matching these globs")
	f.StringSliceVar(&flags.extensions, "extensions", nil, "only walk files with these extensions")
	f.StringSliceVar(&flags.enable, "enable", nil, "formats with an active analyzer")
	f.StringSliceVar(&flags.disable, "disable", nil, "formats whose analyzer is removed")
	f.BoolVar(&flags.noContext, "no-context", false, "omit source lines under issues")
	f.BoolVar(&flags.showFixes, "show-fixes", false, "list the fixes of every file")
	f.BoolVar(&flags.compact, "compact", false, "compact JSON output")
	f.BoolVar(&flags.verboseSummary, "verbose-summary", false, "print a detailed summary block")

	return cmd
}

// overrides returns the configuration set by changed flags.
func (a *app) overrides(cmd *cobra.Command, flags *analyzeFlags) (*configloader.Overrides, error) {
	o := &configloader.Overrides{}
	changed := cmd.Flags().Changed

	if changed("format") {
		o.Format = configloader.Ptr(config.OutputFormat(flags.format))
	}
	if changed("color") {
		o.Color = configloader.Ptr(config.ColorMode(flags.color))
	}
	if a.noColor {
		o.Color = configloader.Ptr(config.ColorNever)
	}
	if changed("fail-on") {
		o.FailOn = configloader.Ptr(config.FailOn(flags.failOn))
	}
	if changed("fix") {
		o.Fix = configloader.Ptr(flags.fix)
	}
	if changed("annotate") {
		o.Annotate = configloader.Ptr(flags.annotate)
	}
	if changed("backup") {
		o.Backup = configloader.Ptr(flags.backup)
	}
	if changed("jobs") {
		o.Jobs = configloader.Ptr(flags.jobs)
	}
	if changed("max-depth") {
		o.MaxDepth = configloader.Ptr(flags.maxDepth)
	}
	if changed("marker") {
		o.Marker = configloader.Ptr(flags.marker)
	}
	if changed("include") {
		o.Include = flags.include
	}
	if changed("exclude") {
		o.Exclude = flags.exclude
	}
	if changed("extensions") {
		o.Extensions = flags.extensions
	}

	var err error
	if changed("enable") {
		if o.Enable, err = resolveFormats(flags.enable); err != nil {
			return nil, err
		}
	}
	if changed("disable") {
		if o.Disable, err = resolveFormats(flags.disable); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// resolveFormats maps aliases to format ids.
func resolveFormats(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, name := range names {
		id, ok := langdetect.ResolveAlias(name)
		if !ok {
			return nil, usageError(fmt.Errorf("unknown format %q", name))
		}
		out = append(out, id)
	}
	return out, nil
}

// loadConfig resolves the effective configuration for this invocation.
func (a *app) loadConfig(ctx context.Context, overrides *configloader.Overrides) (*config.Config, error) {
	result, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   a.workDir,
		ExplicitPath: a.resolvePath(a.configPath),
		Getenv:       a.getenv,
		Overrides:    overrides,
	})
	if err != nil {
		var validationErr *configloader.ValidationError
		if errors.As(err, &validationErr) {
			return nil, err
		}
		return nil, usageError(err)
	}

	logger := logging.FromContext(ctx)
	for _, warning := range result.Warnings {
		logger.Warn(warning)
	}
	if len(result.LoadedFrom) > 0 {
		logger.Debug("loaded config", logging.FieldConfig, result.LoadedFrom)
	}
	return result.Config, nil
}

// newRunner wires the analyzers, classifier and dispatcher for cfg.
func newRunner(cfg *config.Config) (*runner.Runner, error) {
	registry, err := analyzers.NewRegistry(cfg.Formats.Enable, cfg.Formats.Disable)
	if err != nil {
		return nil, usageError(err)
	}
	classifier, err := langdetect.NewClassifier(cfg.ClassifierOverrides()...)
	if err != nil {
		return nil, usageError(err)
	}

	d := dispatch.New(registry,
		dispatch.WithClassifier(classifier),
		dispatch.WithAnnotator(cfg.Annotator()),
		dispatch.WithMetrics(dispatch.NewMetrics()),
		dispatch.WithOptions(dispatch.Options{
			Annotate: cfg.Analyze.Annotate,
			MaxDepth: cfg.Analyze.MaxDepth,
		}),
	)
	return runner.New(d), nil
}

func (a *app) runAnalyze(cmd *cobra.Command, flags *analyzeFlags, args []string) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	force := ""
	if flags.language != "" {
		id, ok := langdetect.ResolveAlias(flags.language)
		if !ok {
			return usageError(fmt.Errorf("unknown format %q", flags.language))
		}
		force = id
	}
	if flags.stdin && len(args) > 0 {
		return usageError(errors.New("--stdin cannot be combined with paths"))
	}

	overrides, err := a.overrides(cmd, flags)
	if err != nil {
		return err
	}
	cfg, err := a.loadConfig(ctx, overrides)
	if err != nil {
		return err
	}

	r, err := newRunner(cfg)
	if err != nil {
		return err
	}

	opts := runner.OptionsFromConfig(cfg)
	opts.Paths = args
	opts.WorkingDir = a.workDir
	opts.Force = force

	logger.Debug("starting analysis",
		logging.FieldPaths, args,
		logging.FieldForced, force,
		logging.FieldFix, opts.Fix,
		logging.FieldAnnotate, cfg.Analyze.Annotate,
		logging.FieldJobs, opts.Jobs,
	)

	start := time.Now()
	var result *runner.Result
	if flags.stdin {
		result, err = r.AnalyzeReader(ctx, cmd.InOrStdin(), flags.filename, opts)
	} else {
		result, err = r.Run(ctx, opts)
	}
	if err != nil {
		return err
	}
	logger.Debug("analysis complete",
		logging.FieldFilesProcessed, result.Stats.FilesProcessed,
		logging.FieldIssuesTotal, result.Stats.IssuesTotal,
		logging.FieldFixesTotal, result.Stats.FixesTotal,
		logging.FieldDuration, time.Since(start),
	)

	if flags.stdin && opts.Fix {
		if err := writeFixedDocument(cmd.OutOrStdout(), result); err != nil {
			return err
		}
	} else if err := a.report(ctx, cmd.OutOrStdout(), cfg, flags, result); err != nil {
		return err
	}

	if flags.metrics != "" {
		var buf bytes.Buffer
		r.Dispatcher().Metrics().WritePrometheus(&buf)
		path := a.resolvePath(flags.metrics)
		if err := writeOutputFile(ctx, path, buf.Bytes()); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		logger.Debug("wrote metrics", logging.FieldPath, path)
	}

	if result.Fails(cfg.Output.FailOn) {
		return ErrIssuesFound
	}
	return nil
}

// report renders result to out, or to the --output file.
func (a *app) report(ctx context.Context, out io.Writer, cfg *config.Config, flags *analyzeFlags, result *runner.Result) error {
	var buf bytes.Buffer
	writer := out
	if flags.output != "" {
		writer = &buf
	}

	rep, err := reporter.New(reporter.Options{
		Writer:          writer,
		Format:          cfg.Output.Format,
		Color:           cfg.Output.Color,
		ShowContext:     !flags.noContext,
		ShowFixes:       flags.showFixes,
		ShowSummary:     true,
		DetailedSummary: flags.verboseSummary,
		Compact:         flags.compact,
		Version:         a.info.Version,
	})
	if err != nil {
		return usageError(err)
	}
	if _, err := rep.Report(ctx, result); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if flags.output == "" {
		return nil
	}
	path := a.resolvePath(flags.output)
	if err := writeOutputFile(ctx, path, buf.Bytes()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	logging.FromContext(ctx).Info("wrote report", logging.FieldOutput, path)
	return nil
}

// writeOutputFile writes content to path, creating missing parent directories.
func writeOutputFile(ctx context.Context, path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), outputDirMode); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return fsutil.WriteAtomic(ctx, path, content, fsutil.DefaultFileMode)
}

// writeFixedDocument prints the fixed (or annotated) text of a document read
// from standard input.
func writeFixedDocument(w io.Writer, result *runner.Result) error {
	if len(result.Files) == 0 || result.Files[0].Report == nil {
		return nil
	}
	rep := result.Files[0].Report
	text := rep.Result.FixedCode
	if rep.Annotated != "" {
		text = rep.Annotated
	}
	if _, err := io.WriteString(w, text); err != nil {
		return fmt.Errorf("write fixed document: %w", err)
	}
	return nil
}
