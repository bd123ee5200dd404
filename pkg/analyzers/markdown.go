package analyzers

import (
	"context"
	"fmt"

	"github.com/wronai/pactfix/pkg/langdetect"
	"github.com/wronai/pactfix/pkg/lint"
	"github.com/wronai/pactfix/pkg/nested"
	"github.com/wronai/pactfix/pkg/parser/goldmark"
)

// Markdown returns the Markdown analyzer. Fenced code blocks are analyzed
// as their own documents through the dispatcher in ctx.
func Markdown() lint.Analyzer {
	p := goldmark.New(goldmark.FlavorGFM)
	return lint.AnalyzerFunc{ID: langdetect.Markdown, Fn: func(ctx context.Context, code string) (lint.Result, error) {
		return analyzeMarkdown(ctx, p, code)
	}}
}

func analyzeMarkdown(ctx context.Context, p *goldmark.Parser, code string) (lint.Result, error) {
	res, err := nested.Analyze(ctx, langdetect.Markdown, code, nested.MarkdownScanner{})
	if err != nil {
		return lint.Result{}, err
	}

	outline, err := p.Parse(ctx, []byte(code))
	if err != nil {
		return lint.Result{}, err
	}

	prev := 0
	for _, h := range outline.Headings {
		if h.Line == 0 {
			continue
		}
		if prev > 0 && h.Level > prev+1 {
			res.AddIssue(lint.NewIssueAt("MD001", h.Line,
				fmt.Sprintf("heading level jumped from H%d to H%d", prev, h.Level)).Build())
		}
		prev = h.Level
	}
	res.Context["headings"] = len(outline.Headings)

	return res, nil
}

// Markpact returns the analyzer for Markdown files carrying markpact blocks.
func Markpact() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.Markpact, Fn: func(ctx context.Context, code string) (lint.Result, error) {
		return nested.Analyze(ctx, langdetect.Markpact, code, nested.MarkpactScanner{})
	}}
}
