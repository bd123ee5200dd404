package analyzers

import (
	"context"
	"regexp"
	"strings"

	"github.com/wronai/pactfix/pkg/fix"
	"github.com/wronai/pactfix/pkg/langdetect"
	"github.com/wronai/pactfix/pkg/lint"
)

//nolint:gochecknoglobals // compiled once
var (
	ghaUsesBranch = regexp.MustCompile(`^(\s*-?\s*uses:\s*["']?[\w.-]+/[\w./-]+)@(master|main)(["']?\s*)$`)
	ghaInjection  = regexp.MustCompile(`\$\{\{\s*(github\.event\.|github\.head_ref|inputs\.)`)
)

// GitHubActions returns the GitHub Actions workflow analyzer.
func GitHubActions() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.GitHubActions, Fn: analyzeGitHubActions}
}

func analyzeGitHubActions(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.GitHubActions, code)
	ws := hygiene{tabs: "YAML002", trailing: "YAML003", tabsAreErrors: true}
	hasPermissions := false
	jobsLine := 0
	inRun, runIndent := false, 0

	for n := 1; n <= f.Len(); n++ {
		ws.apply(f, n)
		line := f.Line(n)
		stripped := strings.TrimSpace(line)
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			continue
		}
		indent := len(fix.LeadingSpace(line))

		if inRun && indent <= runIndent {
			inRun = false
		}

		switch {
		case strings.HasPrefix(line, "permissions:"):
			hasPermissions = true
		case strings.HasPrefix(line, "jobs:"):
			jobsLine = n
		}

		if m := ghaUsesBranch.FindStringSubmatch(line); m != nil {
			fixed := m[1] + "@v4" + m[3]
			f.Warning(n, 1, "GHA001", "action pinned to @"+m[2]+": use a release tag or commit SHA")
			f.Rewrite(n, fixed, "pinned action to a release tag", stripped, strings.TrimSpace(fixed))
		}

		if strings.Contains(stripped, "pull_request_target") {
			f.Warning(n, 1, "GHA002", "pull_request_target runs with write access on untrusted code")
		}

		if m := yamlSecretKey.FindStringSubmatch(stripped); m != nil && yamlHardcoded(m[3]) &&
			!strings.Contains(m[3], "secrets.") {
			f.Error(n, 1, "GHA003", "hardcoded secret: use ${{ secrets.NAME }}")
		}

		key := strings.TrimPrefix(stripped, "- ")
		if strings.HasPrefix(key, "run:") {
			if ghaInjection.MatchString(key) {
				f.Warning(n, 1, "GHA004", "untrusted input interpolated into a run script: possible shell injection")
			}
			value := strings.TrimSpace(strings.TrimPrefix(key, "run:"))
			if value == "|" || value == ">" || value == "|-" || value == ">-" {
				inRun, runIndent = true, indent
			}
			continue
		}
		if inRun && ghaInjection.MatchString(stripped) {
			f.Warning(n, 1, "GHA004", "untrusted input interpolated into a run script: possible shell injection")
		}
	}

	if jobsLine > 0 && !hasPermissions {
		f.Warning(jobsLine, 1, "GHA005", "no top-level permissions: set the minimum the workflow needs")
	}

	yamlParse(f, "YAML011")
	return f.Result(), nil
}
