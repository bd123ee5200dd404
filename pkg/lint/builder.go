package lint

// IssueBuilder helps construct Issue values.
type IssueBuilder struct {
	issue Issue
}

// NewIssueAt starts building a warning at line, column 1.
func NewIssueAt(code string, line int, message string) *IssueBuilder {
	return &IssueBuilder{
		issue: Issue{
			Line:     line,
			Column:   1,
			Code:     code,
			Message:  message,
			Severity: SeverityWarning,
		},
	}
}

// WithColumn sets the 1-based column.
func (b *IssueBuilder) WithColumn(col int) *IssueBuilder {
	if col > 0 {
		b.issue.Column = col
	}
	return b
}

// WithSeverity sets the severity.
func (b *IssueBuilder) WithSeverity(s Severity) *IssueBuilder {
	b.issue.Severity = s
	return b
}

// Build returns the constructed Issue.
func (b *IssueBuilder) Build() Issue {
	return b.issue
}

// FixBuilder helps construct Fix values.
type FixBuilder struct {
	fix Fix
}

// NewFixAt starts building a fix anchored at line.
func NewFixAt(line int, description string) *FixBuilder {
	return &FixBuilder{fix: Fix{Line: line, Description: description}}
}

// WithSnippets sets the display-only before and after text.
func (b *FixBuilder) WithSnippets(before, after string) *FixBuilder {
	b.fix.Before = before
	b.fix.After = after
	return b
}

// WithEdit appends an edit.
func (b *FixBuilder) WithEdit(edit Edit) *FixBuilder {
	b.fix.Edits = append(b.fix.Edits, edit)
	return b
}

// Build returns the constructed Fix.
func (b *FixBuilder) Build() Fix {
	return b.fix
}
