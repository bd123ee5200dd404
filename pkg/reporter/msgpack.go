package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/wronai/pactfix/pkg/runner"
)

// MsgpackReporter writes the report Document as a single MessagePack value.
type MsgpackReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewMsgpackReporter creates a new MessagePack reporter.
func NewMsgpackReporter(opts Options) *MsgpackReporter {
	return &MsgpackReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *MsgpackReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	doc := NewDocument(result, r.opts.Version)

	enc := msgpack.NewEncoder(r.bw)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(doc); err != nil {
		return 0, fmt.Errorf("encode msgpack: %w", err)
	}

	return doc.Summary.TotalIssues, nil
}
