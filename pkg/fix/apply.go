// Package fix applies line-range edits to documents and computes diffs
// between original and fixed text. It has no knowledge of formats.
package fix

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"github.com/wronai/pactfix/pkg/lint"
)

// SortEdits orders edits so that applying them in sequence never shifts the
// line numbers of an edit still pending: start line descending, then end line
// descending. Ties are broken by replacement text and PreserveIndent so that
// the order is total and independent of input order. Invalid bounds sort last.
func SortEdits(edits []lint.Edit) {
	slices.SortStableFunc(edits, compareEdits)
}

func compareEdits(a, b lint.Edit) int {
	if c := cmpBound(a.StartLine, b.StartLine); c != 0 {
		return c
	}
	if c := cmpBound(a.EndLine, b.EndLine); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Replacement, b.Replacement); c != 0 {
		return c
	}
	switch {
	case a.PreserveIndent == b.PreserveIndent:
		return 0
	case a.PreserveIndent:
		return 1
	default:
		return -1
	}
}

// cmpBound sorts valid bounds descending and invalid ones after them.
func cmpBound(a, b lint.LineRef) int {
	switch {
	case a.Valid && b.Valid:
		return cmp.Compare(b.N, a.N)
	case a.Valid:
		return -1
	case b.Valid:
		return 1
	default:
		return 0
	}
}

// ApplyEdits applies edits to lines as one batch and returns the new lines.
// The input slices are not modified.
//
// Edits with invalid bounds, or whose start lies outside [1, len(lines)+1],
// are skipped. The result is the same for any permutation of edits.
func ApplyEdits(lines []string, edits []lint.Edit) []string {
	out := slices.Clone(lines)
	if len(edits) == 0 {
		return out
	}

	ordered := slices.Clone(edits)
	SortEdits(ordered)

	for _, e := range ordered {
		if !e.StartLine.Valid || !e.EndLine.Valid {
			continue
		}

		startIdx := e.StartLine.N - 1
		if startIdx < 0 || startIdx > len(out) {
			continue
		}

		replacement := splitReplacement(e.Replacement)

		if e.EndLine.N < e.StartLine.N {
			out = slices.Insert(out, startIdx, replacement...)
			continue
		}

		deleteCount := max(0, min(len(out)-startIdx, e.EndLine.N-e.StartLine.N+1))

		if e.PreserveIndent && deleteCount == 1 && len(replacement) == 1 {
			replacement = []string{LeadingSpace(out[startIdx]) + strings.TrimLeftFunc(replacement[0], unicode.IsSpace)}
		}

		out = slices.Replace(out, startIdx, startIdx+deleteCount, replacement...)
	}

	return out
}

// ApplyToText splits text into lines, applies edits, and joins the result.
func ApplyToText(text string, edits []lint.Edit) string {
	if len(edits) == 0 {
		return text
	}
	return strings.Join(ApplyEdits(lint.Lines(text), edits), "\n")
}

// splitReplacement turns replacement text into lines. Empty text is no lines.
func splitReplacement(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// LeadingSpace returns the leading whitespace of line.
func LeadingSpace(line string) string {
	return line[:len(line)-len(strings.TrimLeftFunc(line, unicode.IsSpace))]
}
