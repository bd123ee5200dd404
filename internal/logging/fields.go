// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"
	FieldConfig     = "config"

	// Dispatch fields.
	FieldFormat   = "format"
	FieldForced   = "forced"
	FieldSource   = "source"
	FieldRule     = "rule"
	FieldDepth    = "depth"
	FieldDuration = "duration"
	FieldPanic    = "panic"
	FieldFallback = "fallback"
	FieldIssues   = "issues"
	FieldFixes    = "fixes"
	FieldStack    = "stack"

	// Run options.
	FieldFix      = "fix"
	FieldAnnotate = "annotate"
	FieldJobs     = "jobs"

	// Statistics fields.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesProcessed  = "files_processed"
	FieldFilesWithIssues = "files_with_issues"
	FieldIssuesTotal     = "issues_total"
	FieldFixesTotal      = "fixes_total"
	FieldFaults          = "faults"
	FieldFilesModified   = "files_modified"

	// Region fields.
	FieldRegions  = "regions"
	FieldAnalyzed = "analyzed"
	FieldLine     = "line"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
