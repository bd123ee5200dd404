package analyzers

import (
	"context"

	"github.com/wronai/pactfix/pkg/lint"
)

// passThrough reports nothing and returns documents unchanged.
type passThrough struct{ id string }

// PassThrough returns an analyzer for format that leaves documents as they
// are. It stands in for disabled formats so that their documents never
// reach the bash fallback, whose rewrites would corrupt them.
func PassThrough(format string) lint.Analyzer { return passThrough{id: format} }

func (p passThrough) Format() string { return p.id }

func (p passThrough) Analyze(_ context.Context, code string) (lint.Result, error) {
	return lint.NewResult(p.id, code), nil
}

// HasRules reports whether a carries rules, as opposed to a pass-through.
func HasRules(a lint.Analyzer) bool {
	_, ok := a.(passThrough)
	return !ok
}
