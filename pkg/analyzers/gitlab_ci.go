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
	gitlabImage     = regexp.MustCompile(`^(?:-\s*)?(?:image|name)\s*:\s*["']?([^"'\s]+)["']?\s*$`)
	gitlabPipeShell = regexp.MustCompile(`\b(curl|wget)\b[^|]*\|\s*(sudo\s+)?(ba|z)?sh\b`)
	gitlabOnlyExcpt = regexp.MustCompile(`^(only|except)\s*:`)
	gitlabAllowFail = regexp.MustCompile(`^allow_failure\s*:\s*true\b`)
)

// GitLabCI returns the GitLab CI pipeline analyzer.
func GitLabCI() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.GitLabCI, Fn: analyzeGitLabCI}
}

func analyzeGitLabCI(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.GitLabCI, code)
	ws := hygiene{tabs: "YAML002", trailing: "YAML003", tabsAreErrors: true}

	for n := 1; n <= f.Len(); n++ {
		ws.apply(f, n)
		stripped := strings.TrimSpace(f.Line(n))
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			continue
		}

		if m := gitlabImage.FindStringSubmatch(stripped); m != nil && !strings.Contains(m[1], "$") &&
			(strings.HasPrefix(stripped, "image") || strings.Contains(f.Line(n-1), "image:")) {
			if tag, digest := imageTag(m[1]); !digest && (tag == "" || tag == "latest") {
				f.Warning(n, 1, "GITLAB001", "job image is not pinned: use a specific tag")
			}
		}
		if m := yamlSecretKey.FindStringSubmatch(stripped); m != nil && yamlHardcoded(m[3]) && !strings.Contains(m[3], "$") {
			f.Error(n, 1, "GITLAB002", "hardcoded secret: use a masked CI/CD variable")
		}
		if gitlabOnlyExcpt.MatchString(stripped) {
			f.Info(n, 1, "GITLAB003", "only/except is deprecated: use rules")
		}
		if gitlabAllowFail.MatchString(stripped) {
			f.Warning(n, 1, "GITLAB004", "allow_failure: true hides job failures")
		}
		if gitlabPipeShell.MatchString(stripped) {
			f.Error(n, 1, "GITLAB005", "piping a download into a shell runs unverified code")
		}
	}

	yamlParse(f, "YAML011")
	return f.Result(), nil
}
