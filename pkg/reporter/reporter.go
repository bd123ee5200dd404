// Package reporter renders runner results as text, tables, JSON, MessagePack,
// SARIF or unified diffs.
package reporter

import (
	"context"
	"fmt"

	"github.com/wronai/pactfix/pkg/config"
	"github.com/wronai/pactfix/pkg/runner"
)

// Reporter formats and writes analysis results.
type Reporter interface {
	// Report writes formatted output for the given result.
	// It returns the number of issues reported and any write errors.
	Report(ctx context.Context, result *runner.Result) (int, error)
}

// New creates a Reporter for the specified options.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = DefaultOptions().Writer
	}

	format := opts.Format
	if format == "" {
		format = config.FormatText
	}

	switch format {
	case config.FormatText:
		return NewTextReporter(opts), nil
	case config.FormatTable:
		return NewTableReporter(opts), nil
	case config.FormatJSON:
		return NewJSONReporter(opts), nil
	case config.FormatMsgpack:
		return NewMsgpackReporter(opts), nil
	case config.FormatSARIF:
		return NewSARIFReporter(opts), nil
	case config.FormatDiff:
		return NewDiffReporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
