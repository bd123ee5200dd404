package lint

import "context"

// Analyzer is the rule set for one format.
//
// Analyzers must:
//   - Treat code as the whole document; line numbers are relative to it.
//   - Perform no I/O.
//   - Emit an Edit for every textual change so FixedCode can be rebuilt
//     from OriginalCode.
//   - Return an error only for internal failures, not findings.
type Analyzer interface {
	// Format returns the format identifier this analyzer handles (e.g. "bash").
	Format() string

	// Analyze inspects code and returns its findings and fixes.
	Analyze(ctx context.Context, code string) (Result, error)
}

// AnalyzerFunc adapts a plain function to the Analyzer interface.
type AnalyzerFunc struct {
	ID string
	Fn func(ctx context.Context, code string) (Result, error)
}

// Format implements Analyzer.
func (a AnalyzerFunc) Format() string { return a.ID }

// Analyze implements Analyzer.
func (a AnalyzerFunc) Analyze(ctx context.Context, code string) (Result, error) {
	return a.Fn(ctx, code)
}
