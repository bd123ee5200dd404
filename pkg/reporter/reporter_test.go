package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/wronai/pactfix/pkg/config"
	"github.com/wronai/pactfix/pkg/dispatch"
	"github.com/wronai/pactfix/pkg/lint"
	"github.com/wronai/pactfix/pkg/reporter"
	"github.com/wronai/pactfix/pkg/runner"
)

const deployScript = "#!/bin/bash\ncd /srv\necho $HOME\n"

// sampleResult has one file with a fix, one clean file, one skipped binary
// and one unreadable file.
func sampleResult() *runner.Result {
	sh := lint.NewResult("bash", deployScript)
	sh.AddIssue(lint.NewIssueAt("SC2164", 2, "cd without error handling").Build())
	sh.AddIssue(lint.NewIssueAt("SC2086", 3, "unquoted variable").WithColumn(6).WithSeverity(lint.SeverityError).Build())
	sh.Fixes = []lint.Fix{
		lint.NewFixAt(2, "guard cd").
			WithSnippets("cd /srv", "cd /srv || exit 1").
			WithEdit(lint.ReplaceLine(2, "cd /srv || exit 1")).
			Build(),
	}
	sh.FixedCode = "#!/bin/bash\ncd /srv || exit 1\necho $HOME\n"

	return &runner.Result{
		Files: []runner.FileOutcome{
			{Path: "deploy.sh", Report: &dispatch.Report{Path: "deploy.sh", Result: sh, Duration: 3 * time.Millisecond}},
			{Path: "ok.py", Report: &dispatch.Report{Path: "ok.py", Result: lint.NewResult("python", "print(1)\n")}},
			{Path: "logo.png", Skipped: runner.SkipBinary},
			{Path: "gone.sh", Error: errors.New("file not found")},
		},
		Stats: runner.Stats{
			FilesDiscovered:  4,
			FilesProcessed:   2,
			FilesSkipped:     1,
			FilesErrored:     1,
			FilesWithIssues:  1,
			IssuesTotal:      2,
			IssuesBySeverity: map[lint.Severity]int{lint.SeverityError: 1, lint.SeverityWarning: 1},
			FixesTotal:       1,
			Formats:          map[string]int{"bash": 1, "python": 1},
		},
	}
}

func plain(format config.OutputFormat, buf *bytes.Buffer) reporter.Options {
	return reporter.Options{
		Writer:      buf,
		Format:      format,
		Color:       config.ColorNever,
		ShowSummary: true,
		Version:     "1.2.3",
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format  config.OutputFormat
		want    any
		wantErr bool
	}{
		{format: "", want: &reporter.TextReporter{}},
		{format: config.FormatText, want: &reporter.TextReporter{}},
		{format: config.FormatTable, want: &reporter.TableReporter{}},
		{format: config.FormatJSON, want: &reporter.JSONReporter{}},
		{format: config.FormatMsgpack, want: &reporter.MsgpackReporter{}},
		{format: config.FormatSARIF, want: &reporter.SARIFReporter{}},
		{format: config.FormatDiff, want: &reporter.DiffReporter{}},
		{format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			rep, err := reporter.New(plain(tt.format, &buf))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, rep)
		})
	}
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := reporter.DefaultOptions()
	assert.NotNil(t, opts.Writer)
	assert.Equal(t, config.FormatText, opts.Format)
	assert.Equal(t, config.ColorAuto, opts.Color)
	assert.True(t, opts.ShowSummary)
}

func TestTextReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := plain(config.FormatText, &buf)
	opts.ShowContext = true
	opts.ShowFixes = true

	n, err := reporter.NewTextReporter(opts).Report(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	want := strings.Join([]string{
		"deploy.sh [bash] (2 issues)",
		"  2:1  warning  cd without error handling  (SC2164)",
		"        cd /srv",
		"        ^",
		"  3:6  error  unquoted variable  (SC2086)",
		"        echo $HOME",
		"             ^",
		"  2  fix: guard cd",
		"        - cd /srv",
		"        + cd /srv || exit 1",
		"",
		"logo.png: skipped (binary file)",
		"gone.sh: error: file not found",
		"2 issues (1 error, 1 warning) in 1 file, 1 fix, 1 file failed",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestTextReporter_Written(t *testing.T) {
	t.Parallel()

	result := sampleResult()
	result.Files = result.Files[:1]
	result.Files[0].Written = true
	result.Files[0].BackupPath = "deploy.sh.pactfix.bak"

	var buf bytes.Buffer
	opts := plain(config.FormatText, &buf)
	opts.ShowSummary = false
	_, err := reporter.NewTextReporter(opts).Report(context.Background(), result)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "  fixed (backup: deploy.sh.pactfix.bak)\n")
}

func TestTextReporter_Empty(t *testing.T) {
	t.Parallel()

	for _, result := range []*runner.Result{nil, {}} {
		var buf bytes.Buffer
		n, err := reporter.NewTextReporter(plain(config.FormatText, &buf)).Report(context.Background(), result)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Equal(t, "No files to check.\n", buf.String())
	}
}

func TestTextReporter_DetailedSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := plain(config.FormatText, &buf)
	opts.DetailedSummary = true
	_, err := reporter.NewTextReporter(opts).Report(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Summary\n")
	assert.Contains(t, buf.String(), "Analysis found errors")
}

func TestTableReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := reporter.NewTableReporter(plain(config.FormatTable, &buf)).Report(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	out := buf.String()
	assert.Contains(t, out, "gone.sh: error: file not found")
	assert.Contains(t, out, "FILE")
	assert.Contains(t, out, "SC2164")
	assert.Contains(t, out, " 2 files checked | 1 error | 1 warning | 1 fix")
	assert.Contains(t, out, "Run with --fix")
}

func TestTableReporter_Clean(t *testing.T) {
	t.Parallel()

	result := &runner.Result{
		Files: []runner.FileOutcome{{Path: "ok.py", Report: &dispatch.Report{Result: lint.NewResult("python", "")}}},
		Stats: runner.Stats{FilesProcessed: 1},
	}

	var buf bytes.Buffer
	_, err := reporter.NewTableReporter(plain(config.FormatTable, &buf)).Report(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, "All files passed!\n1 files checked\n", buf.String())
}

func TestJSONReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := reporter.NewJSONReporter(plain(config.FormatJSON, &buf)).Report(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "1.2.3", doc["version"])

	files, ok := doc["files"].([]any)
	require.True(t, ok)
	require.Len(t, files, 4)

	first, ok := files[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "deploy.sh", first["path"])
	assert.InDelta(t, 3, first["durationMs"], 0)
	res, ok := first["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "bash", res["language"])
	assert.Equal(t, deployScript, res["originalCode"])
	assert.Len(t, res["errors"], 1)
	assert.Len(t, res["warnings"], 1)

	fixes, ok := res["fixes"].([]any)
	require.True(t, ok)
	require.Len(t, fixes, 1)
	fixDoc, ok := fixes[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "guard cd", fixDoc["description"])
	assert.Equal(t, "guard cd", fixDoc["message"])

	skipped, ok := files[2].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "binary file", skipped["skipped"])
	assert.NotContains(t, skipped, "result")

	failed, ok := files[3].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "file not found", failed["error"])

	summary, ok := doc["summary"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 2, summary["totalIssues"], 0)
	assert.InDelta(t, 1, summary["filesErrored"], 0)
	assert.Equal(t, map[string]any{"error": 1.0, "warning": 1.0}, summary["bySeverity"])
	assert.Equal(t, map[string]any{"bash": 1.0, "python": 1.0}, summary["byFormat"])
}

func TestJSONReporter_Compact(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := plain(config.FormatJSON, &buf)
	opts.Compact = true
	_, err := reporter.NewJSONReporter(opts).Report(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t,
		`{"version":"1.2.3","files":[],"summary":{"filesChecked":0,"filesWithIssues":0,"filesModified":0,`+
			`"filesSkipped":0,"filesErrored":0,"totalIssues":0,"totalFixes":0,"faults":0,"bySeverity":{},"byFormat":{}}}`+"\n",
		buf.String())
}

func TestMsgpackReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := reporter.NewMsgpackReporter(plain(config.FormatMsgpack, &buf)).Report(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var doc reporter.Document
	require.NoError(t, msgpack.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "1.2.3", doc.Version)
	require.Len(t, doc.Files, 4)
	require.NotNil(t, doc.Files[0].Result)
	assert.Equal(t, "bash", doc.Files[0].Result.Language)
	require.Len(t, doc.Files[0].Result.Fixes, 1)
	assert.Equal(t, "guard cd", doc.Files[0].Result.Fixes[0].Description)
	assert.Nil(t, doc.Files[2].Result)
	assert.Equal(t, 2, doc.Summary.TotalIssues)
	assert.Equal(t, 1, doc.Summary.BySeverity["error"])
}

func TestSARIFReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := reporter.NewSARIFReporter(plain(config.FormatSARIF, &buf)).Report(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var log struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name    string `json:"name"`
					Version string `json:"version"`
					Rules   []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID  string `json:"ruleId"`
				Level   string `json:"level"`
				Message struct {
					Text string `json:"text"`
				} `json:"message"`
				Locations []struct {
					PhysicalLocation struct {
						ArtifactLocation struct {
							URI string `json:"uri"`
						} `json:"artifactLocation"`
						Region struct {
							StartLine   int `json:"startLine"`
							StartColumn int `json:"startColumn"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
				Properties map[string]any `json:"properties"`
			} `json:"results"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &log))

	assert.Equal(t, "2.1.0", log.Version)
	require.Len(t, log.Runs, 1)
	run := log.Runs[0]
	assert.Equal(t, "pactfix", run.Tool.Driver.Name)
	assert.Equal(t, "1.2.3", run.Tool.Driver.Version)
	assert.Len(t, run.Tool.Driver.Rules, 2)

	require.Len(t, run.Results, 2)
	first := run.Results[0]
	assert.Equal(t, "SC2164", first.RuleID)
	assert.Equal(t, "warning", first.Level)
	assert.Equal(t, "cd without error handling", first.Message.Text)
	require.Len(t, first.Locations, 1)
	assert.Equal(t, "deploy.sh", first.Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, 2, first.Locations[0].PhysicalLocation.Region.StartLine)
	assert.Equal(t, true, first.Properties["fixable"])
	assert.Equal(t, "bash", first.Properties["format"])

	second := run.Results[1]
	assert.Equal(t, "error", second.Level)
	assert.Equal(t, 6, second.Locations[0].PhysicalLocation.Region.StartColumn)
	assert.Equal(t, false, second.Properties["fixable"])
}

func TestDiffReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := reporter.NewDiffReporter(plain(config.FormatDiff, &buf)).Report(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	want := strings.Join([]string{
		"diff --git a/deploy.sh b/deploy.sh",
		"--- a/deploy.sh",
		"+++ b/deploy.sh",
		"@@ -1,3 +1,3 @@",
		" #!/bin/bash",
		"-cd /srv",
		"+cd /srv || exit 1",
		" echo $HOME",
		"",
		"gone.sh: error: file not found",
		"1 file changed, 1 insertion(+), 1 deletion(-)",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestDiffReporter_PrefersAnnotated(t *testing.T) {
	t.Parallel()

	result := sampleResult()
	result.Files[0].Report.Annotated = "#!/bin/bash\n# pactfix: guard cd (was: cd /srv)\ncd /srv || exit 1\necho $HOME\n"

	diff := reporter.FileDiff(result.Files[0])
	require.NotNil(t, diff)
	assert.Equal(t, 2, diff.Additions)
	assert.Nil(t, reporter.FileDiff(result.Files[1]))
	assert.Nil(t, reporter.FileDiff(result.Files[2]))
}

func TestDiffReporter_Nil(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := reporter.NewDiffReporter(plain(config.FormatDiff, &buf)).Report(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, buf.String())
}
