package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/wronai/pactfix/pkg/lint"
	"github.com/wronai/pactfix/pkg/runner"
)

const (
	sarifToolName = "pactfix"
	sarifToolURI  = "https://github.com/wronai/pactfix"
)

// SARIFReporter formats results as a SARIF 2.1.0 log with one run.
type SARIFReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewSARIFReporter creates a new SARIF reporter.
func NewSARIFReporter(opts Options) *SARIFReporter {
	return &SARIFReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *SARIFReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return 0, fmt.Errorf("create SARIF report: %w", err)
	}

	run, count := r.buildRun(result)
	report.AddRun(run)

	if r.opts.Compact {
		err = report.Write(r.bw)
	} else {
		err = report.PrettyWrite(r.bw)
	}
	if err != nil {
		return 0, fmt.Errorf("encode SARIF: %w", err)
	}
	return count, nil
}

func (r *SARIFReporter) buildRun(result *runner.Result) (*sarif.Run, int) {
	run := sarif.NewRunWithInformationURI(sarifToolName, sarifToolURI)
	if r.opts.Version != "" {
		version := r.opts.Version
		run.Tool.Driver.Version = &version
	}
	if result == nil {
		return run, 0
	}

	var count int
	for _, file := range result.Files {
		if file.Report == nil {
			continue
		}
		res := file.Report.Result

		fixed := make(map[int]bool, len(res.Fixes))
		for _, f := range res.Fixes {
			fixed[f.Line] = true
		}

		for _, issue := range res.Issues() {
			level := sarifLevel(issue.Severity)
			run.AddRule(issue.Code).
				WithDescription(res.Language + " check " + issue.Code).
				WithDefaultConfiguration(sarif.NewReportingConfiguration().WithLevel(level))

			location := sarif.NewLocation().WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewArtifactLocation().WithUri(file.Path)).
					WithRegion(sarif.NewRegion().WithStartLine(issue.Line).WithStartColumn(max(issue.Column, 1))),
			)

			sr := sarif.NewRuleResult(issue.Code).
				WithMessage(sarif.NewTextMessage(issue.Message)).
				WithLevel(level).
				WithLocations([]*sarif.Location{location})
			sr.Properties = map[string]any{
				"format":  res.Language,
				"fixable": fixed[issue.Line],
			}
			run.AddResult(sr)
			count++
		}
	}
	return run, count
}

// sarifLevel maps an issue severity to a SARIF result level.
func sarifLevel(s lint.Severity) string {
	switch s {
	case lint.SeverityError:
		return "error"
	case lint.SeverityInfo:
		return "note"
	default:
		return "warning"
	}
}
