package nested

import (
	"regexp"
	"slices"
	"strings"

	"github.com/wronai/pactfix/pkg/langdetect"
	"github.com/wronai/pactfix/pkg/lint"
)

// Markpact block kinds with special meaning.
const (
	KindDeps = "deps"
	KindRun  = "run"
	KindTest = "test"
	KindFile = "file"
)

//nolint:gochecknoglobals // compiled once
var (
	markpactBlock = regexp.MustCompile("(?ms)^```(?:(?P<lang>\\S+)[ \\t]+)?markpact:(?P<kind>\\w+)(?:[ \\t]+(?P<meta>[^\\n]+))?\\n(?P<body>.*?)\\n^```[ \\t]*$")
	metaPath      = regexp.MustCompile(`\bpath=(\S+)`)
)

// MarkpactScanner finds markpact blocks: fences of the form
// "```lang markpact:kind meta" whose body ends at a line of three backticks.
type MarkpactScanner struct{}

// Scan implements Scanner.
func (MarkpactScanner) Scan(lines []string) []Region {
	text := strings.Join(lines, "\n")
	var regions []Region

	for _, m := range markpactBlock.FindAllStringSubmatchIndex(text, -1) {
		group := func(name string) string {
			i := markpactBlock.SubexpIndex(name)
			if m[2*i] < 0 {
				return ""
			}
			return text[m[2*i]:m[2*i+1]]
		}

		bodyAt := m[2*markpactBlock.SubexpIndex("body")]
		body := lint.Lines(group("body"))
		meta := strings.TrimSpace(group("meta"))

		r := Region{
			Kind:      group("kind"),
			Tag:       strings.TrimSpace(group("lang")),
			Meta:      meta,
			OpenLine:  lineAt(text, m[0]),
			BodyStart: lineAt(text, bodyAt),
			Body:      body,
		}
		if pm := metaPath.FindStringSubmatch(meta); pm != nil {
			r.Path = pm[1]
		}
		r.CloseLine = r.BodyStart + len(body)
		regions = append(regions, r)
	}
	return regions
}

func lineAt(text string, offset int) int {
	return strings.Count(text[:offset], "\n") + 1
}

// Resolve implements Scanner. The language hint wins; otherwise run and test
// blocks are shell, deps blocks and HTTP tests are skipped, and the path=
// file name decides.
func (MarkpactScanner) Resolve(r Region) (Target, bool) {
	t := Target{Filename: r.Path, Label: markpactLabel(r)}

	if r.Tag != "" && !strings.EqualFold(r.Tag, "text") {
		if format, ok := langdetect.ResolveAlias(r.Tag); ok {
			t.Format = format
			return t, true
		}
	}

	switch r.Kind {
	case KindDeps:
		return t, false
	case KindRun:
		t.Format = langdetect.Bash
		return t, true
	case KindTest:
		if strings.HasPrefix(strings.ToLower(r.Meta), "http") {
			return t, false
		}
		t.Format = langdetect.Bash
		return t, true
	}

	if r.Path != "" {
		if strings.Contains(strings.ToLower(r.Path), "dockerfile") {
			t.Format = langdetect.Dockerfile
			return t, true
		}
		if d := langdetect.Explain("", r.Path); d.Source == langdetect.SourceFilename || d.Source == langdetect.SourceExtension {
			t.Format = d.Format
			return t, true
		}
	}
	return t, false
}

func markpactLabel(r Region) string {
	label := "[markpact:" + r.Kind
	if r.Path != "" {
		label += " path=" + r.Path
	}
	return label + "]"
}

// Check implements Checker.
func (MarkpactScanner) Check(regions []Region) []lint.Issue {
	if len(regions) == 0 {
		return []lint.Issue{
			lint.NewIssueAt("MP001", 1, "no markpact:* blocks, the file contains no executable code").Build(),
		}
	}

	kinds := make([]string, 0, len(regions))
	for _, r := range regions {
		kinds = append(kinds, r.Kind)
	}

	var issues []lint.Issue
	if slices.Contains(kinds, KindFile) && !slices.Contains(kinds, KindRun) {
		issues = append(issues, lint.NewIssueAt("MP002", 1, "no markpact:run block, the project has no entry point").Build())
	}
	if slices.Contains(kinds, KindRun) && !slices.Contains(kinds, KindDeps) {
		issues = append(issues, lint.NewIssueAt("MP003", 1, "no markpact:deps block, no dependencies are declared").Build())
	}
	return issues
}

// Describe implements Describer.
func (MarkpactScanner) Describe(r Region, t Target, analyzed bool, block map[string]any) {
	block["meta"] = r.Meta
	block["path"] = r.Path
	block["line"] = r.OpenLine
	if analyzed {
		block["resolved_lang"] = block["language"]
	} else {
		block["resolved_lang"] = nil
	}
}
