package fix

import (
	"fmt"
	"strings"
)

// DiffLineKind indicates the type of diff line.
type DiffLineKind int

const (
	// DiffLineContext is an unchanged context line.
	DiffLineContext DiffLineKind = iota

	// DiffLineAdd is a line present only in the fixed text.
	DiffLineAdd

	// DiffLineRemove is a line present only in the original text.
	DiffLineRemove
)

// DiffLine is a single line in a hunk.
type DiffLine struct {
	Kind    DiffLineKind
	Content string
}

// DiffHunk is one contiguous block of changes with surrounding context.
type DiffHunk struct {
	OriginalStart int
	OriginalCount int
	FixedStart    int
	FixedCount    int
	Lines         []DiffLine
}

// Diff is a unified line diff between an original and a fixed document.
type Diff struct {
	Path      string
	Hunks     []DiffHunk
	Additions int
	Deletions int
}

// contextLines is the number of unchanged lines shown around a change.
const contextLines = 3

// GenerateDiff returns the unified diff between original and fixed,
// or nil when they are identical.
func GenerateDiff(path, original, fixed string) *Diff {
	if original == fixed {
		return nil
	}

	ops := diffOps(splitDiffLines(original), splitDiffLines(fixed))
	hunks := hunksFromOps(ops)
	if len(hunks) == 0 {
		return nil
	}

	d := &Diff{Path: path, Hunks: hunks}
	for _, op := range ops {
		switch op.Kind {
		case DiffLineAdd:
			d.Additions++
		case DiffLineRemove:
			d.Deletions++
		}
	}
	return d
}

// HasChanges returns true if the diff contains any hunks.
func (d *Diff) HasChanges() bool {
	return d != nil && len(d.Hunks) > 0
}

// String renders the diff in unified format with ---/+++ headers.
func (d *Diff) String() string {
	if !d.HasChanges() {
		return ""
	}

	path := strings.TrimPrefix(d.Path, "/")

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", path, path)
	for _, h := range d.Hunks {
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", h.OriginalStart, h.OriginalCount, h.FixedStart, h.FixedCount)
		for _, l := range h.Lines {
			sb.WriteByte(" +-"[l.Kind])
			sb.WriteString(l.Content)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// splitDiffLines splits text, ignoring a single trailing newline.
func splitDiffLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// diffOps walks an LCS table of a and b and emits one op per line.
func diffOps(a, b []string) []DiffLine {
	n, m := len(a), len(b)

	// lcs[i][j] is the LCS length of a[i:] and b[j:].
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	ops := make([]DiffLine, 0, n+m)
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			ops = append(ops, DiffLine{Kind: DiffLineContext, Content: a[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			ops = append(ops, DiffLine{Kind: DiffLineRemove, Content: a[i]})
			i++
		default:
			ops = append(ops, DiffLine{Kind: DiffLineAdd, Content: b[j]})
			j++
		}
	}
	for ; i < n; i++ {
		ops = append(ops, DiffLine{Kind: DiffLineRemove, Content: a[i]})
	}
	for ; j < m; j++ {
		ops = append(ops, DiffLine{Kind: DiffLineAdd, Content: b[j]})
	}
	return ops
}

// hunksFromOps groups ops into hunks, merging changes closer than twice the
// context width.
func hunksFromOps(ops []DiffLine) []DiffHunk {
	var hunks []DiffHunk

	for idx := 0; idx < len(ops); {
		if ops[idx].Kind == DiffLineContext {
			idx++
			continue
		}

		start := max(0, idx-contextLines)
		end := idx
		for end < len(ops) {
			if ops[end].Kind != DiffLineContext {
				end++
				continue
			}
			next := end
			for next < len(ops) && ops[next].Kind == DiffLineContext {
				next++
			}
			if next == len(ops) || next-end > contextLines*2 {
				break
			}
			end = next
		}
		stop := min(len(ops), end+contextLines)

		hunks = append(hunks, buildHunk(ops, start, stop))
		idx = stop
	}

	return hunks
}

func buildHunk(ops []DiffLine, start, stop int) DiffHunk {
	h := DiffHunk{OriginalStart: 1, FixedStart: 1}
	for _, op := range ops[:start] {
		if op.Kind != DiffLineAdd {
			h.OriginalStart++
		}
		if op.Kind != DiffLineRemove {
			h.FixedStart++
		}
	}
	h.Lines = append(h.Lines, ops[start:stop]...)
	for _, op := range h.Lines {
		if op.Kind != DiffLineAdd {
			h.OriginalCount++
		}
		if op.Kind != DiffLineRemove {
			h.FixedCount++
		}
	}
	return h
}
