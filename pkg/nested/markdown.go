package nested

import (
	"strings"

	"github.com/wronai/pactfix/pkg/langdetect"
	"github.com/wronai/pactfix/pkg/lint"
)

// FenceKind is the region kind of a Markdown code fence.
const FenceKind = "fence"

// MarkdownScanner finds backtick code fences. A fence opens on any line whose
// trimmed text starts with three backticks and closes on a line that is
// exactly three backticks after trimming.
type MarkdownScanner struct{}

// Scan implements Scanner.
func (MarkdownScanner) Scan(lines []string) []Region {
	var (
		regions []Region
		cur     *Region
	)
	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		if cur == nil {
			if rest, ok := strings.CutPrefix(stripped, "```"); ok {
				cur = &Region{
					Kind:      FenceKind,
					Tag:       strings.TrimSpace(rest),
					OpenLine:  i + 1,
					BodyStart: i + 2,
				}
			}
			continue
		}
		if stripped == "```" {
			cur.CloseLine = i + 1
			regions = append(regions, *cur)
			cur = nil
			continue
		}
		cur.Body = append(cur.Body, line)
	}
	if cur != nil {
		regions = append(regions, *cur)
	}
	return regions
}

// Resolve implements Scanner. An untagged fence is classified by content;
// a tag that names no supported format is left alone. Only the first word of
// the info string is the tag.
func (MarkdownScanner) Resolve(r Region) (Target, bool) {
	fields := strings.Fields(r.Tag)
	if len(fields) == 0 {
		return Target{}, true
	}
	format, ok := langdetect.ResolveAlias(fields[0])
	if !ok {
		return Target{}, false
	}
	return Target{Format: format}, true
}

// Check implements Checker.
func (MarkdownScanner) Check(regions []Region) []lint.Issue {
	var issues []lint.Issue
	for _, r := range regions {
		if r.Terminated() {
			continue
		}
		issues = append(issues, lint.NewIssueAt("MD100", r.OpenLine, "code fence is never closed").
			WithSeverity(lint.SeverityInfo).
			Build())
	}
	return issues
}
