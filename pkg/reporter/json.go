package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/wronai/pactfix/pkg/runner"
)

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	doc := NewDocument(result, r.opts.Version)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(doc); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}

	return doc.Summary.TotalIssues, nil
}
