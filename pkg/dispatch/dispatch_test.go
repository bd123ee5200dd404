package dispatch_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wronai/pactfix/pkg/dispatch"
	"github.com/wronai/pactfix/pkg/fix"
	"github.com/wronai/pactfix/pkg/lint"
	"github.com/wronai/pactfix/pkg/nested"
)

// tagger reports a single issue named after its format.
func tagger(format string) lint.Analyzer {
	return lint.AnalyzerFunc{ID: format, Fn: func(_ context.Context, code string) (lint.Result, error) {
		res := lint.NewResult(format, code)
		res.AddIssue(lint.NewIssueAt(strings.ToUpper(format), 1, "seen").Build())
		return res, nil
	}}
}

// guardCd appends an exit guard to every line starting with cd.
func guardCd(format string) lint.Analyzer {
	return lint.AnalyzerFunc{ID: format, Fn: func(_ context.Context, code string) (lint.Result, error) {
		f := fix.NewLineFixer(format, code)
		for n := 1; n <= f.Len(); n++ {
			line := f.Line(n)
			if strings.HasPrefix(line, "cd ") {
				f.Warning(n, 1, "T001", "unguarded cd")
				f.Rewrite(n, line+" || exit 1", "guard cd", line, line+" || exit 1")
			}
		}
		return f.Result(), nil
	}}
}

func newRegistry(t *testing.T, analyzers ...lint.Analyzer) *lint.Registry {
	t.Helper()
	registry := lint.NewRegistry("bash")
	for _, a := range analyzers {
		require.NoError(t, registry.Register(a))
	}
	require.NoError(t, registry.Freeze())
	return registry
}

func codes(res lint.Result) []string {
	var out []string
	for _, issue := range res.Issues() {
		out = append(out, issue.Code)
	}
	return out
}

func TestAnalyze_Routing(t *testing.T) {
	t.Parallel()

	d := dispatch.New(newRegistry(t, tagger("bash"), tagger("python")))

	tests := []struct {
		name     string
		text     string
		filename string
		force    string
		language string
		codes    []string
	}{
		{name: "forced", text: "echo hi", force: "python", language: "python", codes: []string{"PYTHON"}},
		{name: "forced alias", text: "echo hi", force: "py", language: "python", codes: []string{"PYTHON"}},
		{name: "unknown forced format", text: "x", force: "cobol", language: "cobol", codes: []string{"BASH"}},
		{name: "by filename", text: "x = 1", filename: "app.py", language: "python", codes: []string{"PYTHON"}},
		{name: "unregistered format uses fallback", text: "x", filename: "Dockerfile", language: "dockerfile", codes: []string{"BASH"}},
		{name: "empty input", text: "", language: "bash", codes: []string{"BASH"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := d.Analyze(context.Background(), tt.text, tt.filename, tt.force)
			assert.Equal(t, tt.language, res.Language)
			assert.Equal(t, tt.codes, codes(res))
			assert.Equal(t, tt.text, res.OriginalCode)
		})
	}
}

func TestAnalyze_Faults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fn      func(context.Context, string) (lint.Result, error)
		message string
	}{
		{
			name:    "panic",
			fn:      func(context.Context, string) (lint.Result, error) { panic("boom") },
			message: "panic: boom",
		},
		{
			name:    "error",
			fn:      func(context.Context, string) (lint.Result, error) { return lint.Result{}, errors.New("bad input") },
			message: "bad input",
		},
		{
			name: "issue before line 1",
			fn: func(_ context.Context, code string) (lint.Result, error) {
				res := lint.NewResult("bash", code)
				res.AddIssue(lint.NewIssueAt("X", 0, "nowhere").Build())
				return res, nil
			},
			message: "malformed result",
		},
		{
			name: "fix before line 1",
			fn: func(_ context.Context, code string) (lint.Result, error) {
				res := lint.NewResult("bash", code)
				res.Fixes = append(res.Fixes, lint.NewFixAt(-1, "nowhere").Build())
				return res, nil
			},
			message: "malformed result",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			metrics := dispatch.NewMetrics()
			d := dispatch.New(newRegistry(t, lint.AnalyzerFunc{ID: "bash", Fn: tt.fn}), dispatch.WithMetrics(metrics))
			res := d.Analyze(context.Background(), "cd /tmp\nls", "", "bash")

			require.Len(t, res.Errors, 1)
			assert.Empty(t, res.Warnings)
			assert.Empty(t, res.Fixes)
			assert.Equal(t, dispatch.FaultCode, res.Errors[0].Code)
			assert.Equal(t, 1, res.Errors[0].Line)
			assert.Equal(t, lint.SeverityError, res.Errors[0].Severity)
			assert.Contains(t, res.Errors[0].Message, tt.message)
			assert.Equal(t, "cd /tmp\nls", res.FixedCode)
			assert.Equal(t, "bash", res.Language)
			assert.Equal(t, uint64(1), metrics.Faults())
		})
	}
}

func TestAnalyze_Normalizes(t *testing.T) {
	t.Parallel()

	bare := lint.AnalyzerFunc{ID: "bash", Fn: func(_ context.Context, code string) (lint.Result, error) {
		return lint.Result{FixedCode: code}, nil
	}}
	res := dispatch.New(newRegistry(t, bare)).Analyze(context.Background(), "ls", "", "")

	assert.Equal(t, "bash", res.Language)
	assert.Equal(t, "ls", res.OriginalCode)
	assert.NotNil(t, res.Errors)
	assert.NotNil(t, res.Warnings)
	assert.NotNil(t, res.Fixes)
	assert.NotNil(t, res.Context)
}

func TestAnalyze_DepthGuard(t *testing.T) {
	t.Parallel()

	d := dispatch.New(newRegistry(t, tagger("bash")), dispatch.WithOptions(dispatch.Options{MaxDepth: 1}))

	res := d.Analyze(nested.WithDepth(context.Background(), 1), "ls", "", "")
	assert.Equal(t, []string{"BASH"}, codes(res))

	res = d.Analyze(nested.WithDepth(context.Background(), 2), "ls", "", "")
	require.Len(t, res.Errors, 1)
	assert.Equal(t, dispatch.FaultCode, res.Errors[0].Code)
	assert.Contains(t, res.Errors[0].Message, "nesting depth exceeded")
}

func TestAnalyze_ProvidesDispatcher(t *testing.T) {
	t.Parallel()

	host := lint.AnalyzerFunc{ID: "markdown", Fn: func(ctx context.Context, code string) (lint.Result, error) {
		inner, ok := nested.DispatcherFrom(ctx)
		if !ok {
			return lint.Result{}, nested.ErrNoDispatcher
		}
		child := inner.Analyze(ctx, "print 1", "", "python")
		res := lint.NewResult("markdown", code)
		for _, issue := range child.Issues() {
			res.AddIssue(issue)
		}
		return res, nil
	}}

	d := dispatch.New(newRegistry(t, tagger("bash"), tagger("python"), host))
	res := d.Analyze(context.Background(), "# doc", "", "markdown")
	assert.Equal(t, []string{"PYTHON"}, codes(res))
}

func TestAnalyzeFile(t *testing.T) {
	t.Parallel()

	metrics := dispatch.NewMetrics()
	d := dispatch.New(newRegistry(t, guardCd("bash")),
		dispatch.WithOptions(dispatch.Options{Annotate: true}),
		dispatch.WithMetrics(metrics),
	)

	rep := d.AnalyzeFile(context.Background(), "deploy.sh", []byte("cd /tmp\nls"), "")
	require.Nil(t, rep.Fault)
	assert.Equal(t, "deploy.sh", rep.Path)
	assert.True(t, rep.HasIssues())
	assert.Equal(t, 1, rep.IssueCount())
	assert.Equal(t, "cd /tmp || exit 1\nls", rep.Result.FixedCode)
	assert.Equal(t, "# pactfix: guard cd (was: cd /tmp)\ncd /tmp || exit 1\nls", rep.Annotated)
	require.NoError(t, fix.VerifyReconstruction(rep.Result))

	assert.Equal(t, uint64(1), metrics.Documents())
	assert.Equal(t, uint64(1), metrics.Fixes())
	assert.Equal(t, uint64(0), metrics.Faults())
}

func TestAnalyzeFile_Fault(t *testing.T) {
	t.Parallel()

	broken := lint.AnalyzerFunc{ID: "bash", Fn: func(context.Context, string) (lint.Result, error) {
		return lint.Result{}, errors.New("broken")
	}}
	rep := dispatch.New(newRegistry(t, broken)).AnalyzeFile(context.Background(), "a.sh", []byte("ls"), "")

	require.NotNil(t, rep.Fault)
	assert.Equal(t, "bash", rep.Fault.Format)
	assert.EqualError(t, rep.Fault, "analyzer bash failed: broken")
	assert.Equal(t, []string{dispatch.FaultCode}, codes(rep.Result))
	assert.Empty(t, rep.Annotated)
}

func TestMetrics_WritePrometheus(t *testing.T) {
	t.Parallel()

	metrics := dispatch.NewMetrics()
	d := dispatch.New(newRegistry(t, guardCd("bash")), dispatch.WithMetrics(metrics))
	d.Analyze(context.Background(), "cd /a\ncd /b", "", "")
	metrics.FileWritten()

	var buf bytes.Buffer
	metrics.WritePrometheus(&buf)
	out := buf.String()

	assert.Contains(t, out, "pactfix_documents_analyzed_total 1")
	assert.Contains(t, out, "pactfix_fixes_total 2")
	assert.Contains(t, out, "pactfix_files_written_total 1")
	assert.Contains(t, out, `pactfix_analysis_duration_seconds_count{format="bash"} 1`)
}

func TestDispatcher_Surface(t *testing.T) {
	t.Parallel()

	d := dispatch.New(newRegistry(t, tagger("bash")))

	assert.Equal(t, "python", d.Classify("", "main.py"))
	assert.Equal(t, []string{"a", "B", "c"}, d.ApplyEdits([]string{"a", "b", "c"}, []lint.Edit{lint.ReplaceLine(2, "B")}))

	res := lint.NewResult("sql", "SELECT 1;")
	res.Fixes = []lint.Fix{{Line: 1, Description: "checked"}}
	assert.Equal(t, "-- pactfix: checked (was: )\nSELECT 1;", d.Annotate(res))
}
