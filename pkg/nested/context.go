package nested

import (
	"context"

	"github.com/wronai/pactfix/pkg/lint"
)

// Dispatcher analyzes a sub-document. A non-empty force skips
// classification; filename is an optional classification hint.
type Dispatcher interface {
	Analyze(ctx context.Context, text, filename, force string) lint.Result
}

type dispatcherKey struct{}

type depthKey struct{}

// WithDispatcher returns a context carrying d for nested analyzers.
func WithDispatcher(ctx context.Context, d Dispatcher) context.Context {
	return context.WithValue(ctx, dispatcherKey{}, d)
}

// DispatcherFrom returns the dispatcher carried by ctx.
func DispatcherFrom(ctx context.Context) (Dispatcher, bool) {
	d, ok := ctx.Value(dispatcherKey{}).(Dispatcher)
	return d, ok && d != nil
}

// WithDepth records the current nesting depth.
func WithDepth(ctx context.Context, depth int) context.Context {
	return context.WithValue(ctx, depthKey{}, depth)
}

// Depth returns the nesting depth recorded in ctx, 0 at top level.
func Depth(ctx context.Context) int {
	d, _ := ctx.Value(depthKey{}).(int)
	return d
}
