// Package nested analyzes documents that embed other documents, such as
// fenced code blocks in Markdown or markpact blocks.
//
// A Scanner finds the embedded regions. The Engine resolves each region to a
// format, dispatches its body recursively, remaps the child's line numbers
// into the host document, and splices the child's fixed text in place of the
// body. Delimiter lines are never touched, so the host's fixed text is always
// the original text with the remapped edits applied.
package nested

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/wronai/pactfix/pkg/fix"
	"github.com/wronai/pactfix/pkg/lint"
)

// ErrNoDispatcher is returned when a nested analyzer runs without a
// dispatcher in its context.
var ErrNoDispatcher = errors.New("no dispatcher in context")

// Region is one embedded sub-document.
type Region struct {
	Kind string // "fence" for Markdown, the block kind for markpact
	Tag  string // language hint as written
	Meta string
	Path string

	OpenLine  int // opening delimiter, 1-based
	BodyStart int // first body line, 1-based
	Body      []string
	CloseLine int // closing delimiter, 0 when unterminated
}

// Terminated reports whether the region has a closing delimiter.
func (r Region) Terminated() bool { return r.CloseLine > 0 }

// EndLine returns the closing delimiter line, or the last body line for an
// unterminated region.
func (r Region) EndLine() int {
	if r.Terminated() {
		return r.CloseLine
	}
	return r.BodyStart + len(r.Body) - 1
}

// Text returns the body joined with newlines.
func (r Region) Text() string { return strings.Join(r.Body, "\n") }

// Target says how to analyze a region.
type Target struct {
	Format   string // empty lets the dispatcher classify the body
	Filename string
	Label    string // prefixed to child messages and descriptions
}

// Scanner finds regions and decides how each is analyzed.
type Scanner interface {
	// Scan returns regions in document order. Regions do not overlap.
	Scan(lines []string) []Region
	// Resolve returns false for regions that pass through unanalyzed.
	Resolve(r Region) (Target, bool)
}

// Checker is implemented by scanners that report findings about the host
// document's structure.
type Checker interface {
	Check(regions []Region) []lint.Issue
}

// Describer is implemented by scanners that add fields to a region's
// context entry.
type Describer interface {
	Describe(r Region, t Target, analyzed bool, block map[string]any)
}

// Engine runs nested analysis through a Dispatcher.
type Engine struct {
	dispatcher Dispatcher
}

// New returns an engine dispatching regions to d.
func New(d Dispatcher) *Engine {
	return &Engine{dispatcher: d}
}

// Analyze runs s over text using the dispatcher carried by ctx.
func Analyze(ctx context.Context, format, text string, s Scanner) (lint.Result, error) {
	d, ok := DispatcherFrom(ctx)
	if !ok {
		return lint.Result{}, ErrNoDispatcher
	}
	return New(d).Analyze(ctx, format, text, s), nil
}

// Analyze scans text, analyzes every resolvable region, and returns the host
// result labeled format.
func (e *Engine) Analyze(ctx context.Context, format, text string, s Scanner) lint.Result {
	lines := lint.Lines(text)
	regions := s.Scan(lines)
	res := lint.NewResult(format, text)
	childCtx := WithDepth(ctx, Depth(ctx)+1)
	describer, _ := s.(Describer)

	out := make([]string, 0, len(lines))
	next := 0
	blocks := make([]map[string]any, 0, len(regions))
	kinds := make(map[string]struct{})
	analyzed := 0

	for _, r := range regions {
		kinds[r.Kind] = struct{}{}

		bodyIdx := r.BodyStart - 1
		out = append(out, lines[next:bodyIdx]...)
		next = bodyIdx + len(r.Body)

		block := map[string]any{
			"kind":               r.Kind,
			"lang":               r.Tag,
			"language":           "",
			"start_line":         r.OpenLine,
			"end_line":           r.EndLine(),
			"content_start_line": r.BodyStart,
			"analyzed":           false,
			"errors":             0,
			"warnings":           0,
			"fixes":              0,
			"issues":             0,
		}

		target, ok := s.Resolve(r)
		if !ok || strings.TrimSpace(r.Text()) == "" {
			out = append(out, r.Body...)
			if describer != nil {
				describer.Describe(r, target, false, block)
			}
			blocks = append(blocks, block)
			continue
		}

		child := e.dispatcher.Analyze(childCtx, r.Text(), target.Filename, target.Format)
		analyzed++
		merge(&res, child, r, target.Label)
		out = append(out, splice(r, child)...)

		block["language"] = child.Language
		block["analyzed"] = true
		block["errors"] = len(child.Errors)
		block["warnings"] = len(child.Warnings)
		block["fixes"] = len(child.Fixes)
		block["issues"] = len(child.Errors) + len(child.Warnings)
		if describer != nil {
			describer.Describe(r, target, true, block)
		}
		blocks = append(blocks, block)
	}
	out = append(out, lines[next:]...)
	res.FixedCode = strings.Join(out, "\n")

	if c, ok := s.(Checker); ok {
		for _, issue := range c.Check(regions) {
			res.AddIssue(issue)
		}
	}

	res.Context["blocks_total"] = len(regions)
	res.Context["blocks_analyzed"] = analyzed
	res.Context["blocks"] = blocks
	res.Context["kinds"] = slices.Sorted(maps.Keys(kinds))
	return res
}

// splice returns the lines that replace r's body. When the child's fixed
// text is its own edits applied to the body, the edits are replayed with the
// same bounds as the remapped host edits, so the host text stays
// reconstructible even when the body is emptied.
func splice(r Region, child lint.Result) []string {
	if fix.VerifyReconstruction(child) == nil {
		return fix.ApplyEdits(r.Body, bodyEdits(child.Edits(), len(r.Body)))
	}
	return lint.Lines(child.FixedCode)
}

func merge(res *lint.Result, child lint.Result, r Region, label string) {
	offset := r.BodyStart - 1

	for _, issue := range child.Issues() {
		res.AddIssue(issue.Shifted(offset).WithMessagePrefix(label))
	}

	for _, fx := range child.Fixes {
		shifted := fx.Shifted(offset).WithDescriptionPrefix(label)
		shifted.Edits = remapEdits(fx.Edits, len(r.Body), offset)
		if shifted.Format == "" {
			shifted.Format = child.Language
		}
		res.Fixes = append(res.Fixes, shifted)
	}
}

// bodyEdits bounds edits to a body of bodyLen lines. Edits the child engine
// would skip are dropped so they cannot land outside the body, and ranges
// are clamped to the body's last line.
func bodyEdits(edits []lint.Edit, bodyLen int) []lint.Edit {
	out := make([]lint.Edit, 0, len(edits))
	for _, e := range edits {
		if e.StartLine.Valid && e.EndLine.Valid {
			if e.StartLine.N < 1 || e.StartLine.N > bodyLen+1 {
				continue
			}
			if !e.IsInsertion() && e.EndLine.N > bodyLen {
				e.EndLine = lint.Line(bodyLen)
			}
		}
		out = append(out, e)
	}
	return out
}

// remapEdits bounds edits to the body and shifts them into host coordinates.
func remapEdits(edits []lint.Edit, bodyLen, offset int) []lint.Edit {
	out := bodyEdits(edits, bodyLen)
	for i := range out {
		out[i] = out[i].Shifted(offset)
	}
	return out
}
