package nested_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wronai/pactfix/pkg/fix"
	"github.com/wronai/pactfix/pkg/lint"
	"github.com/wronai/pactfix/pkg/nested"
)

type call struct {
	text, filename, force string
	depth                 int
}

// fakeDispatcher guards cd lines and records every call.
type fakeDispatcher struct {
	mu    sync.Mutex
	calls []call
	fail  string // body that produces a fault-style result
}

func (d *fakeDispatcher) Analyze(ctx context.Context, text, filename, force string) lint.Result {
	d.mu.Lock()
	d.calls = append(d.calls, call{text: text, filename: filename, force: force, depth: nested.Depth(ctx)})
	d.mu.Unlock()

	format := force
	if format == "" {
		format = "bash"
	}
	if text == d.fail {
		res := lint.NewResult(format, text)
		res.AddIssue(lint.NewIssueAt("PACTFIX000", 1, "analyzer failed").WithSeverity(lint.SeverityError).Build())
		return res
	}

	f := fix.NewLineFixer(format, text)
	for n := 1; n <= f.Len(); n++ {
		line := f.Line(n)
		if strings.HasPrefix(strings.TrimSpace(line), "cd ") {
			f.Warning(n, 1, "T001", "unguarded cd")
			f.Rewrite(n, line+" || exit 1", "guard cd", line, line+" || exit 1")
		}
	}
	return f.Result()
}

func (d *fakeDispatcher) forces() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.calls))
	for _, c := range d.calls {
		out = append(out, c.force)
	}
	return out
}

func analyzeMarkdown(t *testing.T, d *fakeDispatcher, text string) lint.Result {
	t.Helper()
	res := nested.New(d).Analyze(context.Background(), "markdown", text, nested.MarkdownScanner{})
	require.NoError(t, fix.VerifyReconstruction(res))
	return res
}

func TestEngine_RemapsAndSplices(t *testing.T) {
	t.Parallel()

	d := &fakeDispatcher{}
	res := analyzeMarkdown(t, d, "# Title\n```bash\ncd /a\n```\ntail")

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "T001", res.Warnings[0].Code)
	assert.Equal(t, 3, res.Warnings[0].Line)

	require.Len(t, res.Fixes, 1)
	assert.Equal(t, 3, res.Fixes[0].Line)
	require.Len(t, res.Fixes[0].Edits, 1)
	assert.Equal(t, lint.Line(3), res.Fixes[0].Edits[0].StartLine)

	assert.Equal(t, "# Title\n```bash\ncd /a || exit 1\n```\ntail", res.FixedCode)
	assert.Equal(t, "markdown", res.Language)
	assert.Equal(t, []string{"bash"}, d.forces())

	assert.Equal(t, 1, res.Context["blocks_total"])
	assert.Equal(t, 1, res.Context["blocks_analyzed"])
	assert.Equal(t, []string{nested.FenceKind}, res.Context["kinds"])

	blocks, ok := res.Context["blocks"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, blocks, 1)
	assert.Equal(t, "bash", blocks[0]["language"])
	assert.Equal(t, 2, blocks[0]["start_line"])
	assert.Equal(t, 4, blocks[0]["end_line"])
	assert.Equal(t, 3, blocks[0]["content_start_line"])
	assert.Equal(t, true, blocks[0]["analyzed"])
	assert.Equal(t, 1, blocks[0]["warnings"])
	assert.Equal(t, 1, blocks[0]["fixes"])
}

func TestEngine_Regions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		forces   []string
		fixed    string
		analyzed int
	}{
		{
			name:     "untagged fence is classified",
			text:     "```\ncd /a\n```",
			forces:   []string{""},
			fixed:    "```\ncd /a || exit 1\n```",
			analyzed: 1,
		},
		{
			name:   "unknown tag passes through",
			text:   "```mermaid\ncd /a\n```",
			forces: []string{},
		},
		{
			name:   "blank body is skipped",
			text:   "```bash\n  \n```",
			forces: []string{},
		},
		{
			name:     "alias tag",
			text:     "```sh\ncd /a\n```\n```py\nx = 1\n```",
			forces:   []string{"bash", "python"},
			fixed:    "```sh\ncd /a || exit 1\n```\n```py\nx = 1\n```",
			analyzed: 2,
		},
		{
			name:     "indented fence keeps indentation",
			text:     "- step\n  ```bash\n  cd /a\n  ```",
			forces:   []string{"bash"},
			fixed:    "- step\n  ```bash\n  cd /a || exit 1\n  ```",
			analyzed: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := &fakeDispatcher{}
			res := analyzeMarkdown(t, d, tt.text)
			assert.Equal(t, tt.forces, d.forces())

			want := tt.fixed
			if want == "" {
				want = tt.text
			}
			assert.Equal(t, want, res.FixedCode)
			assert.Equal(t, tt.analyzed, res.Context["blocks_analyzed"])
		})
	}
}

func TestEngine_UnterminatedFence(t *testing.T) {
	t.Parallel()

	res := analyzeMarkdown(t, &fakeDispatcher{}, "intro\n```bash\ncd /a\nls")

	assert.Equal(t, "intro\n```bash\ncd /a || exit 1\nls", res.FixedCode)

	var info []lint.Issue
	for _, issue := range res.Warnings {
		if issue.Code == "MD100" {
			info = append(info, issue)
		}
	}
	require.Len(t, info, 1)
	assert.Equal(t, 2, info[0].Line)
	assert.Equal(t, lint.SeverityInfo, info[0].Severity)
}

func TestEngine_SiblingsSurviveFault(t *testing.T) {
	t.Parallel()

	d := &fakeDispatcher{fail: "boom"}
	res := analyzeMarkdown(t, d, "```bash\nboom\n```\n```bash\ncd /a\n```")

	require.Len(t, res.Errors, 1)
	assert.Equal(t, "PACTFIX000", res.Errors[0].Code)
	assert.Equal(t, 2, res.Errors[0].Line)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, 5, res.Warnings[0].Line)
	assert.Equal(t, "```bash\nboom\n```\n```bash\ncd /a || exit 1\n```", res.FixedCode)
}

func TestEngine_ChildDepth(t *testing.T) {
	t.Parallel()

	d := &fakeDispatcher{}
	ctx := nested.WithDepth(context.Background(), 2)
	nested.New(d).Analyze(ctx, "markdown", "```bash\nls\n```", nested.MarkdownScanner{})

	require.Len(t, d.calls, 1)
	assert.Equal(t, 3, d.calls[0].depth)
}

func TestAnalyze_NeedsDispatcher(t *testing.T) {
	t.Parallel()

	_, err := nested.Analyze(context.Background(), "markdown", "x", nested.MarkdownScanner{})
	require.ErrorIs(t, err, nested.ErrNoDispatcher)

	ctx := nested.WithDispatcher(context.Background(), &fakeDispatcher{})
	res, err := nested.Analyze(ctx, "markdown", "x", nested.MarkdownScanner{})
	require.NoError(t, err)
	assert.Equal(t, "x", res.FixedCode)
}

func TestContext_Depth(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Equal(t, 0, nested.Depth(ctx))
	assert.Equal(t, 4, nested.Depth(nested.WithDepth(ctx, 4)))

	_, ok := nested.DispatcherFrom(ctx)
	assert.False(t, ok)
}

// editsDispatcher answers every region with one fix carrying edits.
type editsDispatcher struct {
	edits []lint.Edit
}

func (d editsDispatcher) Analyze(_ context.Context, text, _, _ string) lint.Result {
	res := lint.NewResult("bash", text)
	res.Fixes = append(res.Fixes, lint.Fix{Line: 1, Description: "rewrite", Edits: d.edits})
	res.FixedCode = fix.ApplyToText(text, d.edits)
	return res
}

func TestEngine_SpliceClampsLikeRemap(t *testing.T) {
	t.Parallel()

	d := editsDispatcher{edits: []lint.Edit{
		lint.InsertBefore(3, "c"),
		lint.ReplaceRange(2, 5, "B"),
	}}
	res := nested.New(d).Analyze(context.Background(), "markdown", "# T\n```bash\na\nb\n```\ntail", nested.MarkdownScanner{})

	require.NoError(t, fix.VerifyReconstruction(res))
	assert.Equal(t, "# T\n```bash\na\nB\nc\n```\ntail", res.FixedCode)
	require.Len(t, res.Fixes, 1)
	assert.Equal(t, lint.Line(4), res.Fixes[0].Edits[1].EndLine)
}

func TestEngine_FixesCarryRegionFormat(t *testing.T) {
	t.Parallel()

	res := analyzeMarkdown(t, &fakeDispatcher{}, "```python\ncd /a\n```")

	require.Len(t, res.Fixes, 1)
	assert.Equal(t, "python", res.Fixes[0].Format)
}
