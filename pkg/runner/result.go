package runner

import (
	"github.com/wronai/pactfix/pkg/config"
	"github.com/wronai/pactfix/pkg/dispatch"
	"github.com/wronai/pactfix/pkg/lint"
)

// FileOutcome is the result of processing one file.
type FileOutcome struct {
	// Path is the file path relative to the working directory, slash-separated.
	Path string

	// AbsPath is the absolute path that was read.
	AbsPath string

	// Report is the analysis report. Nil when the file could not be read or
	// was skipped before analysis.
	Report *dispatch.Report

	// Written is true when fixed text was written back.
	Written bool

	// BackupPath is set when a backup was created before writing.
	BackupPath string

	// Skipped explains why the file was not analyzed or not written.
	Skipped string

	// Error is set if the file could not be processed.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	// FilesDiscovered is the total number of files found during discovery.
	FilesDiscovered int

	// FilesProcessed is the number of files that were analyzed.
	FilesProcessed int

	// FilesSkipped is the number of binary or concurrently modified files.
	FilesSkipped int

	// FilesErrored is the number of files that encountered errors.
	FilesErrored int

	// FilesWithIssues is the number of files with at least one issue.
	FilesWithIssues int

	// FilesModified is the number of files written back.
	FilesModified int

	// IssuesTotal counts every issue across all files.
	IssuesTotal int

	// IssuesBySeverity maps severity levels to counts.
	IssuesBySeverity map[lint.Severity]int

	// FixesTotal is the number of fixes proposed across all files.
	FixesTotal int

	// Faults is the number of files whose analyzer failed.
	Faults int

	// Formats maps each analyzed format to its file count.
	Formats map[string]int
}

// Result is the overall runner result.
type Result struct {
	// Files contains the outcome for each processed file, ordered by path.
	Files []FileOutcome

	// Stats contains aggregate statistics for the run.
	Stats Stats
}

// HasIssues reports whether any issues were found.
func (r *Result) HasIssues() bool {
	if r == nil {
		return false
	}
	return r.Stats.IssuesTotal > 0
}

// Fails reports whether the run breaches threshold: some issue has at least
// that severity, or a file could not be processed.
func (r *Result) Fails(threshold config.FailOn) bool {
	if r == nil {
		return false
	}
	if r.Stats.FilesErrored > 0 && threshold != config.FailOnNone {
		return true
	}
	switch threshold {
	case config.FailOnNone:
		return false
	case config.FailOnWarning:
		return r.Stats.IssuesBySeverity[lint.SeverityError]+r.Stats.IssuesBySeverity[lint.SeverityWarning] > 0
	default:
		return r.Stats.IssuesBySeverity[lint.SeverityError] > 0
	}
}

// newStats creates a new Stats with initialized maps.
func newStats() Stats {
	return Stats{
		IssuesBySeverity: make(map[lint.Severity]int),
		Formats:          make(map[string]int),
	}
}

// accumulate updates the result with a file outcome.
func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
	}
	if outcome.Skipped != "" {
		r.Stats.FilesSkipped++
	}
	if outcome.Written {
		r.Stats.FilesModified++
	}

	rep := outcome.Report
	if rep == nil {
		return
	}

	r.Stats.FilesProcessed++
	r.Stats.Formats[rep.Result.Language]++
	r.Stats.FixesTotal += len(rep.Result.Fixes)
	if rep.Fault != nil {
		r.Stats.Faults++
	}

	issues := rep.Result.Issues()
	if len(issues) > 0 {
		r.Stats.FilesWithIssues++
	}
	for _, issue := range issues {
		severity := issue.Severity
		if severity == "" {
			severity = lint.SeverityWarning
		}
		r.Stats.IssuesBySeverity[severity]++
	}
	r.Stats.IssuesTotal += len(issues)
}
