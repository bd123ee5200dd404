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
	helmTemplateCall = regexp.MustCompile(`(\{\{-?\s*)template(\s+")`)
	helmImageTag     = regexp.MustCompile(`^-?\s*tag\s*:\s*["']?latest["']?\s*$`)
	helmImage        = regexp.MustCompile(`^-?\s*image\s*:\s*["']?([^"'\s{]+)["']?\s*$`)
	helmEmptyRes     = regexp.MustCompile(`^resources\s*:\s*\{\s*\}\s*$`)
)

// Helm returns the Helm chart analyzer. Templates are not valid YAML before
// rendering, so only line rules apply.
func Helm() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.Helm, Fn: analyzeHelm}
}

func analyzeHelm(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.Helm, code)
	ws := hygiene{tabs: "YAML002", trailing: "YAML003", tabsAreErrors: true}
	chart := helmIsChart(f)

	for n := 1; n <= f.Len(); n++ {
		ws.apply(f, n)
		line := f.Line(n)
		stripped := strings.TrimSpace(line)
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			continue
		}

		if chart && line == "apiVersion: v1" {
			f.Warning(n, 1, "HELM001", "chart apiVersion v1 is Helm 2: use v2")
			f.Rewrite(n, "apiVersion: v2", "set the chart apiVersion to v2", stripped, "apiVersion: v2")
		}
		if helmImageTag.MatchString(stripped) {
			f.Warning(n, 1, "HELM002", "image tag latest: pin a specific version")
		} else if m := helmImage.FindStringSubmatch(stripped); m != nil {
			if tag, digest := imageTag(m[1]); !digest && (tag == "" || tag == "latest") {
				f.Warning(n, 1, "HELM002", "image without a pinned tag: pin a specific version")
			}
		}
		if m := yamlSecretKey.FindStringSubmatch(stripped); m != nil && yamlHardcoded(m[3]) {
			f.Error(n, 1, "HELM003", "hardcoded secret in chart values: reference an existing Secret")
		}
		if helmEmptyRes.MatchString(stripped) {
			f.Warning(n, 1, "HELM004", "empty resources: set requests and limits")
		}
		if helmTemplateCall.MatchString(line) {
			f.Info(n, 1, "HELM005", "use include instead of template so the output can be piped")
			fixed := helmTemplateCall.ReplaceAllString(line, "${1}include${2}")
			f.Rewrite(n, fixed, "replaced template with include", stripped, strings.TrimSpace(fixed))
		}
	}

	return f.Result(), nil
}

// helmIsChart reports whether the document looks like a Chart.yaml: a
// top-level name and version without a kind.
func helmIsChart(f *fix.LineFixer) bool {
	var name, version, kind bool
	for n := 1; n <= f.Len(); n++ {
		line := f.Line(n)
		switch {
		case strings.HasPrefix(line, "name:"):
			name = true
		case strings.HasPrefix(line, "version:"):
			version = true
		case strings.HasPrefix(line, "kind:"):
			kind = true
		}
	}
	return name && version && !kind
}
