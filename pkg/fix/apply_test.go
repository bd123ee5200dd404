package fix_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wronai/pactfix/pkg/fix"
	"github.com/wronai/pactfix/pkg/lint"
)

func TestApplyEdits(t *testing.T) {
	t.Parallel()

	abcd := []string{"a", "b", "c", "d"}

	tests := []struct {
		name  string
		lines []string
		edits []lint.Edit
		want  []string
	}{
		{
			name:  "no edits returns copy",
			lines: abcd,
			edits: nil,
			want:  abcd,
		},
		{
			name:  "replace single line",
			lines: abcd,
			edits: []lint.Edit{lint.ReplaceLine(2, "B")},
			want:  []string{"a", "B", "c", "d"},
		},
		{
			name:  "insert before first line",
			lines: abcd,
			edits: []lint.Edit{lint.InsertBefore(1, "x")},
			want:  []string{"x", "a", "b", "c", "d"},
		},
		{
			name:  "append after last line",
			lines: abcd,
			edits: []lint.Edit{lint.InsertBefore(5, "z")},
			want:  []string{"a", "b", "c", "d", "z"},
		},
		{
			name:  "delete line",
			lines: abcd,
			edits: []lint.Edit{lint.DeleteLine(3)},
			want:  []string{"a", "b", "d"},
		},
		{
			name:  "delete range with empty replacement",
			lines: abcd,
			edits: []lint.Edit{lint.ReplaceRange(2, 3, "")},
			want:  []string{"a", "d"},
		},
		{
			name:  "replace range with more lines",
			lines: abcd,
			edits: []lint.Edit{lint.ReplaceRange(2, 3, "X\nY\nZ")},
			want:  []string{"a", "X", "Y", "Z", "d"},
		},
		{
			name:  "range past end is clamped",
			lines: abcd,
			edits: []lint.Edit{lint.ReplaceRange(3, 10, "Q")},
			want:  []string{"a", "b", "Q"},
		},
		{
			name:  "start past end is skipped",
			lines: abcd,
			edits: []lint.Edit{lint.ReplaceLine(6, "q")},
			want:  abcd,
		},
		{
			name:  "start before first line is skipped",
			lines: abcd,
			edits: []lint.Edit{lint.ReplaceLine(0, "q")},
			want:  abcd,
		},
		{
			name:  "missing bounds are skipped",
			lines: abcd,
			edits: []lint.Edit{{Replacement: "q"}, {StartLine: lint.Line(1), Replacement: "q"}, lint.ReplaceLine(1, "A")},
			want:  []string{"A", "b", "c", "d"},
		},
		{
			name:  "empty insertion is a no-op",
			lines: abcd,
			edits: []lint.Edit{lint.InsertBefore(2, "")},
			want:  abcd,
		},
		{
			name:  "preserve indent on single line",
			lines: []string{"    foo(x)"},
			edits: []lint.Edit{lint.ReplaceLineIndented(1, "\tbar(y)")},
			want:  []string{"    bar(y)"},
		},
		{
			name:  "preserve indent ignored for multi-line replacement",
			lines: []string{"  foo"},
			edits: []lint.Edit{{StartLine: lint.Line(1), EndLine: lint.Line(1), Replacement: "bar\nbaz", PreserveIndent: true}},
			want:  []string{"bar", "baz"},
		},
		{
			name:  "mixed edits in ascending order",
			lines: abcd,
			edits: []lint.Edit{
				lint.ReplaceLine(1, "A"),
				lint.ReplaceLine(2, "B"),
				lint.InsertBefore(3, "ins"),
				lint.DeleteLine(4),
			},
			want: []string{"A", "B", "ins", "c"},
		},
		{
			name:  "insert and replace at same line",
			lines: abcd,
			edits: []lint.Edit{lint.InsertBefore(2, "pre"), lint.ReplaceLine(2, "B")},
			want:  []string{"a", "pre", "B", "c", "d"},
		},
		{
			name:  "empty document",
			lines: []string{""},
			edits: []lint.Edit{lint.InsertBefore(1, "first")},
			want:  []string{"first", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := fix.ApplyEdits(tt.lines, tt.edits)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyEdits_DoesNotModifyInput(t *testing.T) {
	t.Parallel()

	lines := []string{"a", "b", "c"}
	edits := []lint.Edit{lint.ReplaceLine(1, "x"), lint.DeleteLine(3)}
	editsCopy := append([]lint.Edit(nil), edits...)

	_ = fix.ApplyEdits(lines, edits)

	assert.Equal(t, []string{"a", "b", "c"}, lines)
	assert.Equal(t, editsCopy, edits)
}

func TestApplyEdits_OrderIndependent(t *testing.T) {
	t.Parallel()

	lines := []string{"one", "  two", "three", "four", "five"}
	edits := []lint.Edit{
		lint.ReplaceLine(2, "TWO"),
		lint.InsertBefore(2, "pre-b"),
		lint.InsertBefore(2, "pre-a"),
		lint.InsertBefore(4, "mid"),
		lint.DeleteLine(5),
		lint.ReplaceRange(1, 2, "R"),
		lint.ReplaceLineIndented(2, "indented"),
	}

	want := fix.ApplyEdits(lines, edits)

	count := 0
	permute(edits, func(p []lint.Edit) {
		count++
		got := fix.ApplyEdits(lines, p)
		require.Equal(t, want, got, "permutation %d", count)
	})
	assert.Equal(t, 5040, count)
}

func TestApplyEdits_PureInsertionKeepsLines(t *testing.T) {
	t.Parallel()

	lines := []string{"a", "b", "c"}
	edits := []lint.Edit{
		lint.InsertBefore(1, "x\ny"),
		lint.InsertBefore(3, "z"),
		lint.InsertBefore(4, "tail"),
	}

	got := fix.ApplyEdits(lines, edits)

	require.Len(t, got, len(lines)+4)
	assert.Equal(t, []string{"x", "y", "a", "b", "z", "c", "tail"}, got)
	assertSubsequence(t, lines, got)
}

func TestApplyEdits_IndentPreservation(t *testing.T) {
	t.Parallel()

	for _, indent := range []string{"", " ", "\t", "  \t  "} {
		lines := []string{indent + "old();"}
		got := fix.ApplyEdits(lines, []lint.Edit{lint.ReplaceLineIndented(1, "   \t new();")})
		require.Len(t, got, 1)
		assert.Equal(t, indent+"new();", got[0])
	}
}

func TestApplyToText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "cd /tmp || exit 1", fix.ApplyToText("cd /tmp", []lint.Edit{lint.ReplaceLine(1, "cd /tmp || exit 1")}))
	assert.Equal(t, "a\nc\n", fix.ApplyToText("a\nb\nc\n", []lint.Edit{lint.ReplaceLine(2, "")}))
	assert.Equal(t, "a\n\nc\n", fix.ApplyToText("a\nb\nc\n", []lint.Edit{lint.ReplaceRange(2, 3, "\nc")}))
	assert.Equal(t, "same", fix.ApplyToText("same", nil))
}

func TestSortEdits_InvalidLast(t *testing.T) {
	t.Parallel()

	edits := []lint.Edit{{Replacement: "bad"}, lint.ReplaceLine(1, "a"), lint.ReplaceLine(3, "c")}
	fix.SortEdits(edits)

	assert.Equal(t, lint.Line(3), edits[0].StartLine)
	assert.Equal(t, lint.Line(1), edits[1].StartLine)
	assert.False(t, edits[2].StartLine.Valid)
}

func permute(edits []lint.Edit, visit func([]lint.Edit)) {
	work := append([]lint.Edit(nil), edits...)
	var rec func(k int)
	rec = func(k int) {
		if k == len(work) {
			visit(append([]lint.Edit(nil), work...))
			return
		}
		for i := k; i < len(work); i++ {
			work[k], work[i] = work[i], work[k]
			rec(k + 1)
			work[k], work[i] = work[i], work[k]
		}
	}
	rec(0)
}

func assertSubsequence(t *testing.T, sub, full []string) {
	t.Helper()
	j := 0
	for _, line := range full {
		if j < len(sub) && line == sub[j] {
			j++
		}
	}
	assert.Equal(t, len(sub), j, "%q is not a subsequence of %q", strings.Join(sub, ","), strings.Join(full, ","))
}
