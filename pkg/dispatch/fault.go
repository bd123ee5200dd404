package dispatch

import (
	"errors"
	"fmt"

	"github.com/wronai/pactfix/pkg/lint"
)

// FaultCode is the issue code reported for a failed analyzer.
const FaultCode = "PACTFIX000"

// Sentinel causes.
var (
	ErrMalformedResult = errors.New("malformed result")
	ErrDepthExceeded   = errors.New("nesting depth exceeded")
	ErrPanic           = errors.New("panic")
)

// Fault describes an analyzer that returned an error, panicked, or produced
// a result with an invalid shape.
type Fault struct {
	Format string
	Cause  error
	// Panic holds the recovered value when the analyzer panicked.
	Panic any
}

func (f *Fault) Error() string {
	return fmt.Sprintf("analyzer %s failed: %v", f.Format, f.Cause)
}

func (f *Fault) Unwrap() error { return f.Cause }

// Result converts the fault into a result carrying a single error issue.
// The fixed text is the original text.
func (f *Fault) Result(code string) lint.Result {
	res := lint.NewResult(f.Format, code)
	res.AddIssue(lint.NewIssueAt(FaultCode, 1, f.Error()).
		WithSeverity(lint.SeverityError).
		Build())
	return res
}

// Outcome is either a result or a fault.
type Outcome struct {
	Result lint.Result
	Fault  *Fault
}

// checkShape reports the first issue or fix anchored before line 1.
func checkShape(res lint.Result) error {
	for _, issue := range res.Issues() {
		if issue.Line < 1 {
			return fmt.Errorf("%w: issue %s at line %d", ErrMalformedResult, issue.Code, issue.Line)
		}
	}
	for _, fx := range res.Fixes {
		if fx.Line < 1 {
			return fmt.Errorf("%w: fix %q at line %d", ErrMalformedResult, fx.Description, fx.Line)
		}
	}
	return nil
}
