// Package annotate renders a result's fixed text with a comment above every
// line that received a fix, written in the target format's comment syntax.
package annotate

import (
	"slices"
	"strings"

	"github.com/wronai/pactfix/pkg/fix"
	"github.com/wronai/pactfix/pkg/lint"
)

// Defaults for Annotator.
const (
	DefaultMarker     = "pactfix"
	DefaultMaxBefore  = 80
	DefaultMaxMessage = 220
)

const ellipsis = "..."

// Token is the comment syntax of one format.
type Token struct {
	Prefix string
	Suffix string
}

//nolint:gochecknoglobals // fixed lookup table
var tokens = map[string]Token{
	"php":         {Prefix: "//"},
	"javascript":  {Prefix: "//"},
	"nodejs":      {Prefix: "//"},
	"typescript":  {Prefix: "//"},
	"go":          {Prefix: "//"},
	"rust":        {Prefix: "//"},
	"java":        {Prefix: "//"},
	"csharp":      {Prefix: "//"},
	"jenkinsfile": {Prefix: "//"},
	"sql":         {Prefix: "--"},
	"ini":         {Prefix: ";"},
	"html":        {Prefix: "<!--", Suffix: " -->"},
	"markdown":    {Prefix: "<!--", Suffix: " -->"},
	"markpact":    {Prefix: "<!--", Suffix: " -->"},
	"css":         {Prefix: "/*", Suffix: " */"},
}

// CommentToken returns the comment syntax for format. The second result is
// false for formats without comments, currently only json.
func CommentToken(format string) (Token, bool) {
	if format == "json" {
		return Token{}, false
	}
	if t, ok := tokens[format]; ok {
		return t, true
	}
	return Token{Prefix: "#"}, true
}

// Annotator inserts fix comments.
type Annotator struct {
	Marker     string
	MaxBefore  int
	MaxMessage int
}

// New returns an Annotator with the default settings.
func New() *Annotator {
	return &Annotator{Marker: DefaultMarker, MaxBefore: DefaultMaxBefore, MaxMessage: DefaultMaxMessage}
}

// Annotate returns res.FixedCode with one comment line inserted above each
// line that has at least one fix. Code lines are never changed. Lines whose
// format has no comment syntax are left unannotated.
func Annotate(res lint.Result) string {
	return New().Annotate(res)
}

// Annotate renders res with this annotator's settings. A fix made inside an
// embedded region is commented in that region's syntax; when fixes from
// several formats share a line, the first fix decides.
func (a *Annotator) Annotate(res lint.Result) string {
	if len(res.Fixes) == 0 {
		return res.FixedCode
	}

	byLine := make(map[int][]lint.Fix)
	for _, fx := range res.Fixes {
		byLine[fx.Line] = append(byLine[fx.Line], fx)
	}
	anchors := make([]int, 0, len(byLine))
	for line := range byLine {
		anchors = append(anchors, line)
	}
	slices.Sort(anchors)
	slices.Reverse(anchors)

	lines := lint.Lines(res.FixedCode)
	for _, line := range anchors {
		idx := line - 1
		if idx < 0 || idx >= len(lines) {
			continue
		}
		fixes := byLine[line]
		format := res.Language
		if fixes[0].Format != "" {
			format = fixes[0].Format
		}
		token, ok := CommentToken(format)
		if !ok {
			continue
		}
		comment := fix.LeadingSpace(lines[idx]) + token.Prefix + " " + a.marker() + ": " + a.message(fixes) + token.Suffix
		lines = slices.Insert(lines, idx, comment)
	}

	return strings.Join(lines, "\n")
}

func (a *Annotator) marker() string {
	if a.Marker == "" {
		return DefaultMarker
	}
	return a.Marker
}

// message merges every fix on one line into a single payload.
func (a *Annotator) message(fixes []lint.Fix) string {
	parts := make([]string, 0, len(fixes))
	for _, fx := range fixes {
		before := strings.ReplaceAll(strings.TrimSpace(fx.Before), "\n", " ")
		parts = append(parts, fx.Description+" (was: "+truncate(before, orDefault(a.MaxBefore, DefaultMaxBefore))+")")
	}
	return truncate(strings.Join(parts, "; "), orDefault(a.MaxMessage, DefaultMaxMessage))
}

// truncate caps s at limit runes, ending in an ellipsis when cut.
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= len(ellipsis) {
		return string(r[:limit])
	}
	return string(r[:limit-len(ellipsis)]) + ellipsis
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
