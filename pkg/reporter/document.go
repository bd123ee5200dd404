package reporter

import (
	"github.com/wronai/pactfix/pkg/lint"
	"github.com/wronai/pactfix/pkg/runner"
)

// Document is the structured report shared by the JSON and MessagePack
// reporters.
type Document struct {
	Version string         `json:"version" msgpack:"version"`
	Files   []FileDocument `json:"files" msgpack:"files"`
	Summary Summary        `json:"summary" msgpack:"summary"`
}

// FileDocument is one file's entry in a Document.
type FileDocument struct {
	Path string `json:"path" msgpack:"path"`

	// Result is nil when the file was not analyzed.
	Result *lint.Result `json:"result,omitempty" msgpack:"result,omitempty"`

	// AnnotatedCode is the fixed text with fix comments.
	AnnotatedCode string `json:"annotatedCode,omitempty" msgpack:"annotatedCode,omitempty"`

	Written    bool   `json:"written,omitempty" msgpack:"written,omitempty"`
	BackupPath string `json:"backupPath,omitempty" msgpack:"backupPath,omitempty"`
	Skipped    string `json:"skipped,omitempty" msgpack:"skipped,omitempty"`
	Error      string `json:"error,omitempty" msgpack:"error,omitempty"`
	Fault      string `json:"fault,omitempty" msgpack:"fault,omitempty"`
	DurationMS int64  `json:"durationMs" msgpack:"durationMs"`
}

// Summary contains aggregate statistics.
type Summary struct {
	FilesChecked    int            `json:"filesChecked" msgpack:"filesChecked"`
	FilesWithIssues int            `json:"filesWithIssues" msgpack:"filesWithIssues"`
	FilesModified   int            `json:"filesModified" msgpack:"filesModified"`
	FilesSkipped    int            `json:"filesSkipped" msgpack:"filesSkipped"`
	FilesErrored    int            `json:"filesErrored" msgpack:"filesErrored"`
	TotalIssues     int            `json:"totalIssues" msgpack:"totalIssues"`
	TotalFixes      int            `json:"totalFixes" msgpack:"totalFixes"`
	Faults          int            `json:"faults" msgpack:"faults"`
	BySeverity      map[string]int `json:"bySeverity" msgpack:"bySeverity"`
	ByFormat        map[string]int `json:"byFormat" msgpack:"byFormat"`
}

// NewDocument converts a runner result into a Document.
func NewDocument(result *runner.Result, version string) *Document {
	doc := &Document{
		Version: version,
		Files:   make([]FileDocument, 0),
		Summary: Summary{
			BySeverity: make(map[string]int),
			ByFormat:   make(map[string]int),
		},
	}
	if result == nil {
		return doc
	}

	doc.Files = make([]FileDocument, 0, len(result.Files))
	for _, file := range result.Files {
		doc.Files = append(doc.Files, newFileDocument(file))
	}

	stats := result.Stats
	doc.Summary.FilesChecked = stats.FilesProcessed
	doc.Summary.FilesWithIssues = stats.FilesWithIssues
	doc.Summary.FilesModified = stats.FilesModified
	doc.Summary.FilesSkipped = stats.FilesSkipped
	doc.Summary.FilesErrored = stats.FilesErrored
	doc.Summary.TotalIssues = stats.IssuesTotal
	doc.Summary.TotalFixes = stats.FixesTotal
	doc.Summary.Faults = stats.Faults
	for severity, n := range stats.IssuesBySeverity {
		doc.Summary.BySeverity[string(severity)] = n
	}
	for format, n := range stats.Formats {
		doc.Summary.ByFormat[format] = n
	}
	return doc
}

func newFileDocument(file runner.FileOutcome) FileDocument {
	fd := FileDocument{
		Path:       file.Path,
		Written:    file.Written,
		BackupPath: file.BackupPath,
		Skipped:    file.Skipped,
	}
	if file.Error != nil {
		fd.Error = file.Error.Error()
	}
	if rep := file.Report; rep != nil {
		res := rep.Result
		res.Normalize()
		fd.Result = &res
		fd.AnnotatedCode = rep.Annotated
		fd.DurationMS = rep.Duration.Milliseconds()
		if rep.Fault != nil {
			fd.Fault = rep.Fault.Error()
		}
	}
	return fd
}
