package nested_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wronai/pactfix/pkg/fix"
	"github.com/wronai/pactfix/pkg/lint"
	"github.com/wronai/pactfix/pkg/nested"
)

func TestMarkdownScanner_Scan(t *testing.T) {
	t.Parallel()

	lines := lint.Lines("text\n```go title=main.go\npackage main\n```\n```\nopen")
	regions := nested.MarkdownScanner{}.Scan(lines)

	require.Len(t, regions, 2)
	assert.Equal(t, "go title=main.go", regions[0].Tag)
	assert.Equal(t, 2, regions[0].OpenLine)
	assert.Equal(t, 3, regions[0].BodyStart)
	assert.Equal(t, 4, regions[0].CloseLine)
	assert.Equal(t, []string{"package main"}, regions[0].Body)
	assert.True(t, regions[0].Terminated())

	assert.False(t, regions[1].Terminated())
	assert.Equal(t, 6, regions[1].EndLine())
	assert.Equal(t, "open", regions[1].Text())
}

func TestMarkdownScanner_Resolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag    string
		format string
		ok     bool
	}{
		{tag: "", format: "", ok: true},
		{tag: "py", format: "python", ok: true},
		{tag: "Bash", format: "bash", ok: true},
		{tag: "yaml title=x", format: "yaml", ok: true},
		{tag: "mermaid", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			t.Parallel()

			target, ok := nested.MarkdownScanner{}.Resolve(nested.Region{Tag: tt.tag})
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.format, target.Format)
		})
	}
}

func TestMarkpactScanner_Scan(t *testing.T) {
	t.Parallel()

	text := strings.Join([]string{
		"# Project",
		"```python markpact:file path=app/main.py",
		"print(1)",
		"print(2)",
		"```",
		"",
		"```markpact:run",
		"python app/main.py",
		"```",
		"```bash",
		"not a markpact block",
		"```",
	}, "\n")

	regions := nested.MarkpactScanner{}.Scan(lint.Lines(text))
	require.Len(t, regions, 2)

	assert.Equal(t, nested.KindFile, regions[0].Kind)
	assert.Equal(t, "python", regions[0].Tag)
	assert.Equal(t, "path=app/main.py", regions[0].Meta)
	assert.Equal(t, "app/main.py", regions[0].Path)
	assert.Equal(t, 2, regions[0].OpenLine)
	assert.Equal(t, 3, regions[0].BodyStart)
	assert.Equal(t, 5, regions[0].CloseLine)
	assert.Equal(t, []string{"print(1)", "print(2)"}, regions[0].Body)

	assert.Equal(t, nested.KindRun, regions[1].Kind)
	assert.Empty(t, regions[1].Tag)
	assert.Equal(t, 7, regions[1].OpenLine)
	assert.Equal(t, 9, regions[1].CloseLine)
}

func TestMarkpactScanner_Resolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		region nested.Region
		format string
		ok     bool
	}{
		{name: "tag wins", region: nested.Region{Kind: nested.KindRun, Tag: "python"}, format: "python", ok: true},
		{name: "run is shell", region: nested.Region{Kind: nested.KindRun}, format: "bash", ok: true},
		{name: "test is shell", region: nested.Region{Kind: nested.KindTest}, format: "bash", ok: true},
		{name: "http test is skipped", region: nested.Region{Kind: nested.KindTest, Meta: "http GET /"}, ok: false},
		{name: "deps are skipped", region: nested.Region{Kind: nested.KindDeps}, ok: false},
		{name: "text tag falls through", region: nested.Region{Kind: nested.KindFile, Tag: "text", Path: "app.py"}, format: "python", ok: true},
		{name: "dockerfile path", region: nested.Region{Kind: nested.KindFile, Path: "docker/Dockerfile.prod"}, format: "dockerfile", ok: true},
		{name: "unknown path", region: nested.Region{Kind: nested.KindFile, Path: "notes.zzz"}, ok: false},
		{name: "no hint", region: nested.Region{Kind: nested.KindFile}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			target, ok := nested.MarkpactScanner{}.Resolve(tt.region)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.format, target.Format)
			}
			assert.Equal(t, tt.region.Path, target.Filename)
		})
	}
}

func TestMarkpactScanner_Check(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		kinds []string
		codes []string
	}{
		{name: "no blocks", codes: []string{"MP001"}},
		{name: "file without run", kinds: []string{"file"}, codes: []string{"MP002"}},
		{name: "run without deps", kinds: []string{"run"}, codes: []string{"MP003"}},
		{name: "complete", kinds: []string{"deps", "file", "run"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			regions := make([]nested.Region, 0, len(tt.kinds))
			for _, k := range tt.kinds {
				regions = append(regions, nested.Region{Kind: k})
			}
			var got []string
			for _, issue := range (nested.MarkpactScanner{}).Check(regions) {
				got = append(got, issue.Code)
			}
			assert.Equal(t, tt.codes, got)
		})
	}
}

func TestMarkpact_LabelsAndContext(t *testing.T) {
	t.Parallel()

	text := "```markpact:deps\nrequests\n```\n```bash markpact:run path=run.sh\ncd /srv\n```"
	res := nested.New(&fakeDispatcher{}).Analyze(context.Background(), "markpact", text, nested.MarkpactScanner{})
	require.NoError(t, fix.VerifyReconstruction(res))

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, 5, res.Warnings[0].Line)
	assert.Equal(t, "[markpact:run path=run.sh] unguarded cd", res.Warnings[0].Message)
	require.Len(t, res.Fixes, 1)
	assert.Equal(t, "[markpact:run path=run.sh] guard cd", res.Fixes[0].Description)
	assert.Equal(t, "```markpact:deps\nrequests\n```\n```bash markpact:run path=run.sh\ncd /srv || exit 1\n```", res.FixedCode)

	blocks, ok := res.Context["blocks"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, blocks, 2)
	assert.Nil(t, blocks[0]["resolved_lang"])
	assert.Equal(t, "bash", blocks[1]["resolved_lang"])
	assert.Equal(t, "path=run.sh", blocks[1]["meta"])
	assert.Equal(t, 4, blocks[1]["line"])
	assert.Equal(t, []string{"deps", "run"}, res.Context["kinds"])
}
