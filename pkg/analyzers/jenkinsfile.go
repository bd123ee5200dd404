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
	jenkinsAgentAny = regexp.MustCompile(`^agent\s+any\b`)
	jenkinsShInterp = regexp.MustCompile(`^(sh|bat|powershell)\s*\(?\s*"[^"]*\$\{`)
	jenkinsLibrary  = regexp.MustCompile(`@Library\(\s*['"]([^'"@]+)(?:@([^'"]+))?['"]`)
)

// Jenkinsfile returns the declarative Jenkins pipeline analyzer.
func Jenkinsfile() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.Jenkinsfile, Fn: analyzeJenkinsfile}
}

func analyzeJenkinsfile(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.Jenkinsfile, code)
	pipelineLine := 0

	for n := 1; n <= f.Len(); n++ {
		body, _ := splitLineComment(f.Line(n))
		stripped := strings.TrimSpace(body)
		if stripped == "" {
			continue
		}

		if strings.HasPrefix(stripped, "pipeline") && strings.HasSuffix(stripped, "{") && pipelineLine == 0 {
			pipelineLine = n
		}
		if jenkinsAgentAny.MatchString(stripped) {
			f.Warning(n, 1, "JENKINS001", "agent any: run on a labeled agent")
		}
		if hasQuotedSecret(stripped) {
			f.Error(n, 1, "JENKINS002", "hardcoded credential: use credentials()")
		}
		if jenkinsShInterp.MatchString(stripped) {
			f.Warning(n, 1, "JENKINS003", "Groovy interpolation in a shell step can leak secrets: use single quotes")
		}
		if m := jenkinsLibrary.FindStringSubmatch(stripped); m != nil && (m[2] == "" || m[2] == "master" || m[2] == "main") {
			f.Warning(n, 1, "JENKINS005", "shared library "+m[1]+" is not pinned to a version")
		}
	}

	if pipelineLine > 0 && !strings.Contains(code, "timeout(") {
		f.Warning(pipelineLine, 1, "JENKINS004", "pipeline without a timeout")
	}
	return f.Result(), nil
}
