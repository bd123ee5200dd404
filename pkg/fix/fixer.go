package fix

import (
	"strings"
	"unicode"

	"github.com/wronai/pactfix/pkg/lint"
)

// LineFixer accumulates issues, fixes and edits for one document while an
// analyzer walks it line by line.
//
// Rewrites are cumulative: several rules may rewrite the same line and each
// sees the text left by the previous one. When the result is built, every
// changed stretch of the document becomes one non-overlapping edit, owned by
// the first fix that touched it. Later fixes on the same stretch carry no
// edit of their own, so the fixed text never depends on how many rules fired.
type LineFixer struct {
	code     string
	original []string
	lines    []string
	changed  []bool
	deleted  []bool
	owner    []int        // first fix that changed each line, -1 if none
	inserts  [][]insertOp // insertions before original line index k, k in [0, len]
	pending  []*PendingFix
	result   lint.Result
}

type insertOp struct {
	owner int
	lines []string
}

// PendingFix is a fix under construction.
type PendingFix struct {
	owner *LineFixer
	index int
	fix   lint.Fix
}

// NewLineFixer starts a fixer for code analyzed as format.
func NewLineFixer(format, code string) *LineFixer {
	original := lint.Lines(code)
	n := len(original)
	f := &LineFixer{
		code:     code,
		original: original,
		lines:    append([]string(nil), original...),
		changed:  make([]bool, n),
		deleted:  make([]bool, n),
		owner:    make([]int, n),
		inserts:  make([][]insertOp, n+1),
		result:   lint.NewResult(format, code),
	}
	for i := range f.owner {
		f.owner[i] = -1
	}
	return f
}

// Len returns the number of lines in the document.
func (f *LineFixer) Len() int { return len(f.lines) }

// Line returns the current text of 1-based line n, including earlier
// rewrites. Out-of-range lines are empty.
func (f *LineFixer) Line(n int) string {
	if n < 1 || n > len(f.lines) {
		return ""
	}
	return f.lines[n-1]
}

// Original returns the unmodified text of line n.
func (f *LineFixer) Original(n int) string {
	if n < 1 || n > len(f.original) {
		return ""
	}
	return f.original[n-1]
}

// Code returns the document as passed to NewLineFixer.
func (f *LineFixer) Code() string { return f.code }

// Error records an error-severity issue.
func (f *LineFixer) Error(line, col int, code, message string) {
	f.result.AddIssue(lint.NewIssueAt(code, line, message).WithColumn(col).WithSeverity(lint.SeverityError).Build())
}

// Warning records a warning.
func (f *LineFixer) Warning(line, col int, code, message string) {
	f.result.AddIssue(lint.NewIssueAt(code, line, message).WithColumn(col).Build())
}

// Info records an informational issue.
func (f *LineFixer) Info(line, col int, code, message string) {
	f.result.AddIssue(lint.NewIssueAt(code, line, message).WithColumn(col).WithSeverity(lint.SeverityInfo).Build())
}

// SetContext stores format-specific side information on the result.
func (f *LineFixer) SetContext(key string, value any) {
	f.result.Context[key] = value
}

// Fix starts a fix anchored at line.
func (f *LineFixer) Fix(line int, description, before, after string) *PendingFix {
	p := &PendingFix{
		owner: f,
		index: len(f.pending),
		fix:   lint.Fix{Line: line, Description: description, Before: before, After: after},
	}
	f.pending = append(f.pending, p)
	return p
}

// Rewrite is shorthand for a fix that rewrites a single line.
func (f *LineFixer) Rewrite(n int, text, description, before, after string) {
	f.Fix(n, description, before, after).Rewrite(n, text)
}

// Rewrite replaces the current text of line n. Text may span several lines.
func (p *PendingFix) Rewrite(n int, text string) *PendingFix {
	f := p.owner
	if n < 1 || n > len(f.lines) || f.lines[n-1] == text {
		return p
	}
	f.lines[n-1] = text
	f.changed[n-1] = true
	if f.owner[n-1] < 0 {
		f.owner[n-1] = p.index
	}
	return p
}

// RewriteIndented replaces line n with text re-indented to the original
// line's leading whitespace.
func (p *PendingFix) RewriteIndented(n int, text string) *PendingFix {
	indent := LeadingSpace(p.owner.Original(n))
	return p.Rewrite(n, indent+strings.TrimLeftFunc(text, unicode.IsSpace))
}

// InsertBefore inserts text before original line n. Use Len()+1 to append.
// Insertions at the same position keep the order they were requested in.
func (p *PendingFix) InsertBefore(n int, text string) *PendingFix {
	f := p.owner
	if n < 1 || n > len(f.lines)+1 || text == "" {
		return p
	}
	f.inserts[n-1] = append(f.inserts[n-1], insertOp{owner: p.index, lines: strings.Split(text, "\n")})
	return p
}

// Delete removes original line n, discarding any rewrite of it.
func (p *PendingFix) Delete(n int) *PendingFix {
	f := p.owner
	if n < 1 || n > len(f.lines) || f.deleted[n-1] {
		return p
	}
	f.deleted[n-1] = true
	f.changed[n-1] = true
	if f.owner[n-1] < 0 {
		f.owner[n-1] = p.index
	}
	return p
}

// touched reports whether position k has insertions or a changed line.
func (f *LineFixer) touched(k int) bool {
	return len(f.inserts[k]) > 0 || (k < len(f.lines) && f.changed[k])
}

// segment returns the final lines standing in for original line k.
func (f *LineFixer) segment(k int) []string {
	if f.deleted[k] {
		return nil
	}
	return strings.Split(f.lines[k], "\n")
}

// hunk is a replacement of original lines [start, end) by lines.
type hunk struct {
	start, end int
	lines      []string
	owner      int
}

func (f *LineFixer) hunks() []hunk {
	n := len(f.lines)
	var out []hunk

	for k := 0; k <= n; {
		if !f.touched(k) {
			k++
			continue
		}

		h := hunk{start: k, owner: len(f.pending)}
		for k <= n && f.touched(k) {
			for _, ins := range f.inserts[k] {
				h.lines = append(h.lines, ins.lines...)
				h.owner = min(h.owner, ins.owner)
			}
			if k == n || !f.changed[k] {
				// Insertions only: the original line at k stays put.
				h.end = k
				k++
				break
			}
			h.lines = append(h.lines, f.segment(k)...)
			h.owner = min(h.owner, f.owner[k])
			k++
			h.end = k
		}

		// A lone empty line cannot be expressed as a replacement, since an
		// empty replacement deletes. Widen the hunk by an untouched neighbor.
		if len(h.lines) == 1 && h.lines[0] == "" && h.end > h.start {
			switch {
			case h.end < n && !f.touched(h.end):
				h.lines = append(h.lines, f.original[h.end])
				h.end++
				k = max(k, h.end)
			case h.start > 0 && (len(out) == 0 || out[len(out)-1].end < h.start):
				h.start--
				h.lines = append([]string{f.original[h.start]}, h.lines...)
			}
		}

		out = append(out, h)
	}

	return out
}

// Result resolves the pending fixes into edits, applies them to the original
// text, and returns the finished result.
func (f *LineFixer) Result() lint.Result {
	res := f.result
	res.Fixes = make([]lint.Fix, len(f.pending))
	for i, p := range f.pending {
		res.Fixes[i] = p.fix
		res.Fixes[i].Edits = []lint.Edit{}
	}

	var all []lint.Edit
	for _, h := range f.hunks() {
		edit := lint.Edit{
			StartLine:   lint.Line(h.start + 1),
			EndLine:     lint.Line(h.end),
			Replacement: strings.Join(h.lines, "\n"),
		}
		all = append(all, edit)
		if h.owner < len(res.Fixes) {
			res.Fixes[h.owner].Edits = append(res.Fixes[h.owner].Edits, edit)
		}
	}

	res.FixedCode = ApplyToText(f.code, all)
	return res
}
