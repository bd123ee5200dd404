package analyzers

import (
	"regexp"
	"strings"

	"github.com/wronai/pactfix/pkg/fix"
)

//nolint:gochecknoglobals // compiled once
var (
	loopOpen = regexp.MustCompile(`^(for|while|foreach|do)\b`)
	secretLiteral = regexp.MustCompile(`(?i)\b\w*(password|passwd|secret|api_?key|token|connectionstring)\w*\s*:?=\s*["'` + "`" + `][^"'` + "`" + `]{3,}["'` + "`" + `]`)
)

// braceScope follows block nesting in brace-delimited languages. Blocks can
// be tagged with a kind when they open, so a rule can ask whether the
// current line sits inside, say, a loop.
type braceScope struct {
	depth  int
	frames []braceFrame
}

type braceFrame struct {
	kind  string
	depth int
}

// step consumes one comment-free line. A non-empty kind tags the block the
// line opens.
func (s *braceScope) step(code, kind string) {
	if kind != "" && strings.Contains(code, "{") {
		s.frames = append(s.frames, braceFrame{kind: kind, depth: s.depth})
	}
	s.depth += strings.Count(code, "{") - strings.Count(code, "}")
	for len(s.frames) > 0 && s.depth <= s.frames[len(s.frames)-1].depth {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// in reports whether the current line is inside a block of kind.
func (s *braceScope) in(kind string) bool {
	for _, f := range s.frames {
		if f.kind == kind {
			return true
		}
	}
	return false
}

// isLoop reports whether a trimmed line starts a loop.
func isLoop(stripped string) bool {
	return loopOpen.MatchString(stripped)
}

// hasQuotedSecret reports a credential-named variable assigned a literal
// string, as in C-family languages.
func hasQuotedSecret(stripped string) bool {
	m := secretLiteral.FindString(stripped)
	if m == "" {
		return false
	}
	value := m[strings.IndexAny(m, "\"'`")+1 : len(m)-1]
	return !placeholderValue.MatchString(strings.ToLower(value))
}

// window joins lines [from, to] of the fixer's current text, clamped.
func window(f *fix.LineFixer, from, to int) string {
	from, to = max(from, 1), min(to, f.Len())
	if from > to {
		return ""
	}
	parts := make([]string, 0, to-from+1)
	for n := from; n <= to; n++ {
		parts = append(parts, f.Line(n))
	}
	return strings.Join(parts, "\n")
}
