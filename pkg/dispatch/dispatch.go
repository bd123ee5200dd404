// Package dispatch selects an analyzer for a document, runs it behind a
// fault boundary, and post-processes its result.
//
// The Dispatcher never fails: an analyzer that returns an error, panics, or
// produces a malformed result is reported as a single PACTFIX000 issue and
// the document's text is returned unchanged.
package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/wronai/pactfix/internal/logging"
	"github.com/wronai/pactfix/pkg/annotate"
	"github.com/wronai/pactfix/pkg/fix"
	"github.com/wronai/pactfix/pkg/langdetect"
	"github.com/wronai/pactfix/pkg/lint"
	"github.com/wronai/pactfix/pkg/nested"
)

// DefaultMaxDepth bounds nested analysis.
const DefaultMaxDepth = 8

// Options configures a Dispatcher.
type Options struct {
	// Annotate requests annotated text in reports.
	Annotate bool
	// MaxDepth is the deepest nesting level analyzed. Zero means DefaultMaxDepth.
	MaxDepth int
}

// Dispatcher routes documents to analyzers.
type Dispatcher struct {
	registry   *lint.Registry
	classifier *langdetect.Classifier
	annotator  *annotate.Annotator
	metrics    *Metrics
	opts       Options
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithClassifier replaces the built-in classifier.
func WithClassifier(c *langdetect.Classifier) Option {
	return func(d *Dispatcher) { d.classifier = c }
}

// WithAnnotator replaces the default annotator.
func WithAnnotator(a *annotate.Annotator) Option {
	return func(d *Dispatcher) { d.annotator = a }
}

// WithMetrics records activity in m.
func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithOptions sets dispatch options.
func WithOptions(o Options) Option {
	return func(d *Dispatcher) { d.opts = o }
}

// New returns a dispatcher over a frozen registry.
func New(registry *lint.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:  registry,
		annotator: annotate.New(),
		metrics:   NewMetrics(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.classifier == nil {
		d.classifier, _ = langdetect.NewClassifier()
	}
	if d.opts.MaxDepth <= 0 {
		d.opts.MaxDepth = DefaultMaxDepth
	}
	return d
}

// Metrics returns the dispatcher's counters.
func (d *Dispatcher) Metrics() *Metrics { return d.metrics }

// Registry returns the analyzer registry.
func (d *Dispatcher) Registry() *lint.Registry { return d.registry }

// Classify returns the format text would be analyzed as.
func (d *Dispatcher) Classify(text, filename string) string {
	return d.classifier.Classify(text, filename)
}

// Explain reports how text would be classified.
func (d *Dispatcher) Explain(text, filename string) langdetect.Decision {
	return d.classifier.Explain(text, filename)
}

// ApplyEdits applies edits to lines.
func (d *Dispatcher) ApplyEdits(lines []string, edits []lint.Edit) []string {
	return fix.ApplyEdits(lines, edits)
}

// Annotate returns the fixed text of res with fix comments.
func (d *Dispatcher) Annotate(res lint.Result) string {
	return d.annotator.Annotate(res)
}

// Analyze classifies text unless force names a format, runs the matching
// analyzer and returns its result. It always returns a result.
func (d *Dispatcher) Analyze(ctx context.Context, text, filename, force string) lint.Result {
	format := d.resolve(ctx, text, filename, force)
	out := d.run(ctx, format, text)
	if out.Fault != nil {
		return out.Fault.Result(text)
	}
	return out.Result
}

func (d *Dispatcher) resolve(ctx context.Context, text, filename, force string) string {
	logger := logging.FromContext(ctx)
	if force != "" {
		if id, ok := langdetect.ResolveAlias(force); ok {
			return id
		}
		logger.Debug("unknown forced format", logging.FieldFormat, force)
		return force
	}
	decision := d.classifier.Explain(text, filename)
	logger.Debug("classified",
		logging.FieldPath, filename,
		logging.FieldFormat, decision.Format,
		logging.FieldSource, decision.Source,
		logging.FieldRule, decision.Rule,
	)
	return decision.Format
}

// run analyzes text as format and returns either a result or a fault.
func (d *Dispatcher) run(ctx context.Context, format, text string) Outcome {
	start := time.Now()
	depth := nested.Depth(ctx)
	logger := logging.FromContext(ctx)

	var out Outcome
	if depth > d.opts.MaxDepth {
		out.Fault = &Fault{Format: format, Cause: fmt.Errorf("%w: %d > %d", ErrDepthExceeded, depth, d.opts.MaxDepth)}
	} else {
		analyzer, registered := d.registry.Lookup(format)
		if !registered {
			logger.Debug("no analyzer registered, using fallback",
				logging.FieldFormat, format,
				logging.FieldFallback, d.registry.Fallback(),
			)
		}
		out = d.invoke(nested.WithDispatcher(ctx, d), analyzer, format, text)
	}

	if out.Fault != nil {
		logger.Warn("analyzer failed",
			logging.FieldFormat, format,
			logging.FieldDepth, depth,
			logging.FieldError, out.Fault.Cause,
		)
		d.metrics.observe(format, start, 0, true)
		return out
	}

	res := &out.Result
	res.Language = format
	if errs := fix.ValidateEdits(res.Edits(), len(lint.Lines(text))); len(errs) > 0 {
		for _, err := range errs {
			logger.Debug("skipping malformed edit", logging.FieldFormat, format, logging.FieldError, err)
		}
	}
	d.metrics.observe(format, start, len(res.Fixes), false)
	logger.Debug("analyzed",
		logging.FieldFormat, format,
		logging.FieldDepth, depth,
		logging.FieldIssues, len(res.Errors)+len(res.Warnings),
		logging.FieldFixes, len(res.Fixes),
		logging.FieldDuration, time.Since(start),
	)
	return out
}

// invoke runs the analyzer and converts errors, panics and malformed results
// into faults.
func (d *Dispatcher) invoke(ctx context.Context, a lint.Analyzer, format, text string) (out Outcome) {
	defer func() {
		if v := recover(); v != nil {
			logging.FromContext(ctx).Debug("analyzer panic",
				logging.FieldFormat, format,
				logging.FieldPanic, v,
				logging.FieldStack, string(debug.Stack()),
			)
			out = Outcome{Fault: &Fault{Format: format, Cause: fmt.Errorf("%w: %v", ErrPanic, v), Panic: v}}
		}
	}()

	if a == nil {
		return Outcome{Fault: &Fault{Format: format, Cause: fmt.Errorf("no analyzer for %q", format)}}
	}

	res, err := a.Analyze(ctx, text)
	if err != nil {
		return Outcome{Fault: &Fault{Format: format, Cause: err}}
	}
	if err := checkShape(res); err != nil {
		return Outcome{Fault: &Fault{Format: format, Cause: err}}
	}
	res.OriginalCode = text
	res.Normalize()
	return Outcome{Result: res}
}
