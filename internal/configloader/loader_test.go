package configloader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wronai/pactfix/pkg/config"
)

// sandbox returns a project directory stopped by a VCS root plus an
// environment whose XDG config home lives inside the sandbox.
func sandbox(t *testing.T, env map[string]string) (string, func(string) string) {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	project := filepath.Join(root, "project", "sub")
	require.NoError(t, os.MkdirAll(project, 0o755))

	vars := map[string]string{"XDG_CONFIG_HOME": filepath.Join(root, "xdg")}
	for k, v := range env {
		vars[k] = v
	}
	return project, func(key string) string { return vars[key] }
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	dir, getenv := sandbox(t, nil)
	result, err := Load(context.Background(), LoadOptions{WorkingDir: dir, Getenv: getenv})
	require.NoError(t, err)

	assert.Equal(t, config.NewConfig(), result.Config)
	assert.Empty(t, result.LoadedFrom)
	assert.Empty(t, result.Warnings)
}

func TestLoad_ProjectConfigSearchedUpward(t *testing.T) {
	t.Parallel()

	dir, getenv := sandbox(t, nil)
	projectFile := filepath.Join(filepath.Dir(dir), ".pactfix.yml")
	writeFile(t, projectFile, "output:\n  format: json\nanalyze:\n  jobs: 3\n")

	result, err := Load(context.Background(), LoadOptions{WorkingDir: dir, Getenv: getenv})
	require.NoError(t, err)

	assert.Equal(t, config.FormatJSON, result.Config.Output.Format)
	assert.Equal(t, 3, result.Config.Analyze.Jobs)
	assert.Equal(t, config.FailOnError, result.Config.Output.FailOn, "unset fields keep defaults")
	assert.Equal(t, []string{projectFile}, result.LoadedFrom)
}

func TestLoad_Precedence(t *testing.T) {
	t.Parallel()

	dir, getenv := sandbox(t, map[string]string{"PACTFIX_FAIL_ON": "warning"})
	userFile := filepath.Join(getenv("XDG_CONFIG_HOME"), "pactfix", "config.yml")
	writeFile(t, userFile, "output:\n  format: sarif\n  color: never\nannotate:\n  marker: user\n")
	projectFile := filepath.Join(dir, ".pactfix.yaml")
	writeFile(t, projectFile, "output:\n  format: diff\nformats:\n  overrides:\n    \"*.conf\": nginx\n")

	result, err := Load(context.Background(), LoadOptions{
		WorkingDir: dir,
		Getenv:     getenv,
		Overrides:  &Overrides{Format: Ptr(config.FormatJSON), Fix: Ptr(true)},
	})
	require.NoError(t, err)

	cfg := result.Config
	assert.Equal(t, config.FormatJSON, cfg.Output.Format, "flag beats project and user")
	assert.Equal(t, config.ColorNever, cfg.Output.Color, "user value survives")
	assert.Equal(t, config.FailOnWarning, cfg.Output.FailOn, "env beats defaults")
	assert.Equal(t, "user", cfg.Annotate.Marker)
	assert.True(t, cfg.Analyze.Fix)
	assert.Equal(t, map[string]string{"*.conf": "nginx"}, cfg.Formats.Overrides)
	assert.Equal(t, []string{userFile, projectFile}, result.LoadedFrom)
}

func TestLoad_ExplicitConfigSkipsProject(t *testing.T) {
	t.Parallel()

	dir, getenv := sandbox(t, nil)
	writeFile(t, filepath.Join(dir, ".pactfix.yml"), "output:\n  format: diff\n")
	explicit := filepath.Join(t.TempDir(), "custom.yml")
	writeFile(t, explicit, "analyze:\n  annotate: true\n")

	result, err := Load(context.Background(), LoadOptions{
		WorkingDir:   dir,
		ExplicitPath: explicit,
		Getenv:       getenv,
	})
	require.NoError(t, err)

	assert.Equal(t, config.FormatText, result.Config.Output.Format)
	assert.True(t, result.Config.Analyze.Annotate)
	assert.Equal(t, []string{explicit}, result.LoadedFrom)
	assert.Equal(t, explicit, result.Paths.Explicit)
}

func TestLoad_FlagCanUnsetFileValue(t *testing.T) {
	t.Parallel()

	dir, getenv := sandbox(t, nil)
	writeFile(t, filepath.Join(dir, ".pactfix.yml"), "analyze:\n  fix: true\n")

	result, err := Load(context.Background(), LoadOptions{
		WorkingDir: dir,
		Getenv:     getenv,
		Overrides:  &Overrides{Fix: Ptr(false)},
	})
	require.NoError(t, err)
	assert.False(t, result.Config.Analyze.Fix)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		env     map[string]string
		want    string
	}{
		{name: "bad yaml", content: "output: [", want: "parse yaml"},
		{name: "bad format", content: "output:\n  format: xml\n", want: "output.format"},
		{name: "unknown enabled format", content: "formats:\n  enable: [cobol]\n", want: "formats.enable[0]"},
		{name: "bad glob", content: "files:\n  exclude: [\"[\"]\n", want: "files.exclude[0]"},
		{name: "bad env", env: map[string]string{"PACTFIX_JOBS": "many"}, want: "PACTFIX_JOBS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir, getenv := sandbox(t, tt.env)
			if tt.content != "" {
				writeFile(t, filepath.Join(dir, ".pactfix.yml"), tt.content)
			}

			_, err := Load(context.Background(), LoadOptions{WorkingDir: dir, Getenv: getenv})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_ValidationErrorNamesFile(t *testing.T) {
	t.Parallel()

	dir, getenv := sandbox(t, nil)
	path := filepath.Join(dir, ".pactfix.yml")
	writeFile(t, path, "analyze:\n  jobs: -1\n")

	_, err := Load(context.Background(), LoadOptions{WorkingDir: dir, Getenv: getenv})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, path, verr.FilePath)
	assert.Equal(t, "analyze.jobs", verr.Field)
}

func TestLoad_Warnings(t *testing.T) {
	t.Parallel()

	dir, getenv := sandbox(t, nil)
	writeFile(t, filepath.Join(dir, ".pactfix.yml"), "formats:\n  disable: [cobol, sh]\n")

	result, err := Load(context.Background(), LoadOptions{WorkingDir: dir, Getenv: getenv})
	require.NoError(t, err)
	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0], "unknown format \"cobol\"")
	assert.Contains(t, result.Warnings[1], "cannot be disabled")
}

func TestLoadFromEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"PACTFIX_FORMAT":   "msgpack",
		"PACTFIX_COLOR":    "always",
		"PACTFIX_JOBS":     "4",
		"PACTFIX_ANNOTATE": "1",
		"PACTFIX_MARKER":   "autofix",
	}
	cfg := config.NewConfig()
	require.NoError(t, LoadFromEnv(cfg, func(k string) string { return env[k] }))

	assert.Equal(t, config.FormatMsgpack, cfg.Output.Format)
	assert.Equal(t, config.ColorAlways, cfg.Output.Color)
	assert.Equal(t, 4, cfg.Analyze.Jobs)
	assert.True(t, cfg.Analyze.Annotate)
	assert.False(t, cfg.Analyze.Fix)
	assert.Equal(t, "autofix", cfg.Annotate.Marker)

	err := LoadFromEnv(cfg, func(k string) string {
		if k == "PACTFIX_FIX" {
			return "maybe"
		}
		return ""
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid boolean for PACTFIX_FIX")
}

func TestListEnvVars(t *testing.T) {
	t.Parallel()

	vars := ListEnvVars()
	require.Len(t, vars, len(envMappings))
	assert.Equal(t, "PACTFIX_ANNOTATE", vars[0].Name)
	assert.Equal(t, "PACTFIX_MARKER", GetEnvVarName("annotate.marker"))
	assert.Empty(t, GetEnvVarName("files.include"))
}

func TestFindProjectConfig_StopsAtVCSRoot(t *testing.T) {
	t.Parallel()

	outer := t.TempDir()
	writeFile(t, filepath.Join(outer, ".pactfix.yml"), "")
	repo := filepath.Join(outer, "repo")
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(repo, "a", "b"), 0o755))

	found, err := FindProjectConfig(context.Background(), filepath.Join(repo, "a", "b"))
	require.NoError(t, err)
	assert.Empty(t, found)

	writeFile(t, filepath.Join(repo, "a", ".pactfix.yml"), "")
	found, err = FindProjectConfig(context.Background(), filepath.Join(repo, "a", "b"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(repo, "a", ".pactfix.yml"), found)
}

func TestFindProjectConfig_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FindProjectConfig(ctx, t.TempDir())
	require.ErrorIs(t, err, context.Canceled)
}
