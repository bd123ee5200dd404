package langdetect

import (
	"path"
	"strings"
)

// fileHint is the normalized filename handed to filename rules.
type fileHint struct {
	full string // lowercased, forward slashes
	base string // lowercased final element
	code string
}

func newFileHint(filename, code string) fileHint {
	full := strings.ToLower(strings.ReplaceAll(filename, "\\", "/"))
	return fileHint{full: full, base: path.Base(full), code: code}
}

func (h fileHint) hasSuffix(suffixes ...string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(h.full, s) {
			return true
		}
	}
	return false
}

func (h fileHint) contains(parts ...string) bool {
	for _, p := range parts {
		if strings.Contains(h.full, p) {
			return true
		}
	}
	return false
}

func (h fileHint) named(names ...string) bool {
	for _, n := range names {
		if h.base == n {
			return true
		}
	}
	return false
}

func (h fileHint) yaml() bool { return h.hasSuffix(".yml", ".yaml") }

// filenameRule returns a format, or "" when it does not apply.
type filenameRule struct {
	name  string
	match func(h fileHint) string
}

func when(ok bool, format string) string {
	if ok {
		return format
	}
	return ""
}

//nolint:gochecknoglobals // ordered rule table
var filenameRules = []filenameRule{
	{"dockerfile", func(h fileHint) string { return when(h.base == "dockerfile", Dockerfile) }},
	{"compose", func(h fileHint) string {
		return when(h.hasSuffix("docker-compose.yml", "docker-compose.yaml", "compose.yml", "compose.yaml"), DockerCompose)
	}},
	{"terraform", func(h fileHint) string { return when(h.hasSuffix(".tf"), Terraform) }},
	{"sql", func(h fileHint) string { return when(h.hasSuffix(".sql"), SQL) }},
	{"nginx", func(h fileHint) string { return when(h.hasSuffix("nginx.conf") || h.contains(".nginx"), Nginx) }},
	{"github-actions", func(h fileHint) string {
		return when(h.yaml() && h.contains("workflow", ".github"), GitHubActions)
	}},
	{"gitlab-ci", func(h fileHint) string { return when(h.named(".gitlab-ci.yml", ".gitlab-ci.yaml"), GitLabCI) }},
	{"ansible", func(h fileHint) string { return when(h.contains("playbook", "ansible"), Ansible) }},
	{"helm", func(h fileHint) string {
		return when(h.named("chart.yaml", "chart.yml", "values.yaml", "values.yml") ||
			(h.contains("/templates/") && h.yaml()) ||
			h.hasSuffix(".tpl", ".gotmpl"), Helm)
	}},
	{"extension", matchExtension},
	{"markdown", func(h fileHint) string {
		if !h.hasSuffix(".md", ".markdown", ".mdx") {
			return ""
		}
		return markdownFlavor(h.code)
	}},
	{"jenkinsfile", func(h fileHint) string { return when(h.base == "jenkinsfile", Jenkinsfile) }},
	{"yaml", func(h fileHint) string {
		if !h.yaml() {
			return ""
		}
		if h.contains("deployment", "service", "configmap", "secret", "ingress", "statefulset", "daemonset", "cronjob") {
			return Kubernetes
		}
		return YAML
	}},
}

// extensionFormats maps plain file extensions to formats.
//
//nolint:gochecknoglobals // fixed lookup table
var extensionFormats = map[string]string{
	".py":      Python,
	".php":     PHP,
	".sh":      Bash,
	".ts":      TypeScript,
	".tsx":     TypeScript,
	".go":      Go,
	".rs":      Rust,
	".java":    Java,
	".cs":      CSharp,
	".rb":      Ruby,
	".json":    JSON,
	".jsonc":   JSON,
	".toml":    TOML,
	".ini":     INI,
	".cfg":     INI,
	".mk":      Makefile,
	".html":    HTML,
	".htm":     HTML,
	".css":     CSS,
	".service": Systemd,
	".timer":   Systemd,
}

func matchExtension(h fileHint) string {
	ext := path.Ext(h.base)
	switch {
	case ext == ".js":
		if strings.Contains(h.code, "require(") || strings.Contains(h.code, "module.exports") {
			return NodeJS
		}
		return JavaScript
	case h.base == "makefile":
		return Makefile
	case ext == ".conf" && h.contains("apache"):
		return Apache
	}
	return extensionFormats[ext]
}

func markdownFlavor(code string) string {
	if strings.Contains(code, "markpact:") {
		return Markpact
	}
	return Markdown
}
