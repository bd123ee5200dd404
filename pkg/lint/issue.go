// Package lint defines the finding and fix model shared by pactfix analyzers,
// the Analyzer contract, and the registry that maps formats to analyzers.
package lint

import "fmt"

// Severity represents the severity level of an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// IsValid reports whether s is a known severity.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityError, SeverityWarning, SeverityInfo:
		return true
	default:
		return false
	}
}

// Rank orders severities so that errors rank highest.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// Issue is a single diagnostic produced by an analyzer.
type Issue struct {
	// Line is the 1-based line the issue refers to.
	Line int `json:"line" msgpack:"line"`

	// Column is the 1-based column the issue refers to.
	Column int `json:"column" msgpack:"column"`

	// Code is a short, format-scoped identifier such as "SC2164" or "PY001".
	Code string `json:"code" msgpack:"code"`

	// Message is the human-readable description.
	Message string `json:"message" msgpack:"message"`

	// Severity is error, warning or info.
	Severity Severity `json:"severity" msgpack:"severity"`
}

// String formats the issue as "line:col CODE message".
func (i Issue) String() string {
	return fmt.Sprintf("%d:%d %s %s", i.Line, i.Column, i.Code, i.Message)
}

// Shifted returns a copy of the issue moved down by offset lines.
func (i Issue) Shifted(offset int) Issue {
	i.Line += offset
	return i
}

// WithMessagePrefix returns a copy of the issue with prefix prepended to its message.
func (i Issue) WithMessagePrefix(prefix string) Issue {
	if prefix != "" {
		i.Message = prefix + " " + i.Message
	}
	return i
}
