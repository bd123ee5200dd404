package langdetect

import (
	"maps"
	"slices"
	"strings"
)

// Format identifiers. Each names exactly one analyzer.
const (
	Bash          = "bash"
	Python        = "python"
	PHP           = "php"
	JavaScript    = "javascript"
	NodeJS        = "nodejs"
	Dockerfile    = "dockerfile"
	DockerCompose = "docker-compose"
	SQL           = "sql"
	Terraform     = "terraform"
	Kubernetes    = "kubernetes"
	Nginx         = "nginx"
	GitHubActions = "github-actions"
	Ansible       = "ansible"
	TypeScript    = "typescript"
	Go            = "go"
	Rust          = "rust"
	Java          = "java"
	CSharp        = "csharp"
	Ruby          = "ruby"
	Makefile      = "makefile"
	YAML          = "yaml"
	Apache        = "apache"
	Systemd       = "systemd"
	HTML          = "html"
	CSS           = "css"
	JSON          = "json"
	TOML          = "toml"
	INI           = "ini"
	Helm          = "helm"
	GitLabCI      = "gitlab-ci"
	Jenkinsfile   = "jenkinsfile"
	Markdown      = "markdown"
	Markpact      = "markpact"
)

// Fallback is the format used when nothing else matches.
const Fallback = Bash

//nolint:gochecknoglobals // fixed lookup tables
var (
	supported = []string{
		Bash, Python, PHP, JavaScript, NodeJS, Dockerfile, DockerCompose, SQL,
		Terraform, Kubernetes, Nginx, GitHubActions, Ansible, TypeScript, Go,
		Rust, Java, CSharp, Ruby, Makefile, YAML, Apache, Systemd, HTML, CSS,
		JSON, TOML, INI, Helm, GitLabCI, Jenkinsfile, Markdown, Markpact,
	}

	// aliases maps fence tags and common short names to format IDs.
	aliases = map[string]string{
		"sh":      Bash,
		"shell":   Bash,
		"zsh":     Bash,
		"py":      Python,
		"python3": Python,
		"js":      JavaScript,
		"node":    NodeJS,
		"ts":      TypeScript,
		"tsx":     TypeScript,
		"docker":  Dockerfile,
		"compose": DockerCompose,
		"tf":      Terraform,
		"hcl":     Terraform,
		"k8s":     Kubernetes,
		"golang":  Go,
		"rs":      Rust,
		"cs":      CSharp,
		"c#":      CSharp,
		"rb":      Ruby,
		"make":    Makefile,
		"mk":      Makefile,
		"yml":     YAML,
		"jsonc":   JSON,
		"htm":     HTML,
		"md":      Markdown,
		"gitlab":  GitLabCI,
		"jenkins": Jenkinsfile,
		"groovy":  Jenkinsfile,
	}

	// enryNames maps go-enry language names that differ from our IDs.
	enryNames = map[string]string{
		"Shell":              Bash,
		"C#":                 CSharp,
		"HCL":                Terraform,
		"JSON with Comments": JSON,
		"ApacheConf":         Apache,
		"PLpgSQL":            SQL,
		"TSX":                TypeScript,
		"MDX":                Markdown,
	}
)

// SupportedFormats returns every format ID in a stable order.
func SupportedFormats() []string {
	return slices.Clone(supported)
}

// IsSupported reports whether id names an analyzer.
func IsSupported(id string) bool {
	return slices.Contains(supported, id)
}

// Aliases returns a copy of the alias table.
func Aliases() map[string]string {
	return maps.Clone(aliases)
}

// ResolveAlias maps a tag such as "py" or "K8S" to a format ID. The second
// result is false when the tag names no supported format.
func ResolveAlias(tag string) (string, bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if id, ok := aliases[tag]; ok {
		return id, true
	}
	if IsSupported(tag) {
		return tag, true
	}
	return "", false
}

// normalizeEnry converts a go-enry language name into a format ID.
func normalizeEnry(lang string) (string, bool) {
	if lang == "" {
		return "", false
	}
	if id, ok := enryNames[lang]; ok {
		return id, true
	}
	return ResolveAlias(lang)
}
