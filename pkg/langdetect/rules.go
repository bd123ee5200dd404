package langdetect

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-enry/go-enry/v2"
)

// Sample is a document prepared for content rules.
type Sample struct {
	Code      string
	Upper     string
	Lower     string
	Lines     []string // lines of the trimmed document
	FirstLine string
}

// NewSample prepares code for rule evaluation.
func NewSample(code string) *Sample {
	lines := strings.Split(strings.TrimSpace(code), "\n")
	return &Sample{
		Code:      code,
		Upper:     strings.ToUpper(code),
		Lower:     strings.ToLower(code),
		Lines:     lines,
		FirstLine: lines[0],
	}
}

func (s *Sample) has(subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s.Code, sub) {
			return true
		}
	}
	return false
}

func (s *Sample) anyLine(re *regexp.Regexp) bool {
	for _, l := range s.Lines {
		if re.MatchString(l) {
			return true
		}
	}
	return false
}

// Rule is one named row of the content rule table.
type Rule struct {
	Name   string
	Format string
	Match  func(s *Sample) bool

	// Resolve replaces Format and Match for rules whose result depends on
	// the input.
	Resolve func(s *Sample) (string, bool)
}

// Apply evaluates the rule.
func (r Rule) Apply(s *Sample) (string, bool) {
	if r.Resolve != nil {
		return r.Resolve(s)
	}
	if r.Match(s) {
		return r.Format, true
	}
	return "", false
}

//nolint:gochecknoglobals // compiled once
var (
	yamlKeyLine     = regexp.MustCompile(`^\s*[A-Za-z0-9_.-]+\s*:`)
	recipeKeyPrefix = regexp.MustCompile(`^[A-Za-z0-9_.-]+\s*:`)
	shellAssignment = regexp.MustCompile(`(?m)^\s*(?:export\s+)?[A-Za-z_][A-Za-z0-9_]*\s*[:+?]?=`)
	makeTarget      = regexp.MustCompile(`(?m)^[A-Za-z0-9_.-]+:\s*$`)
	cssSelector     = regexp.MustCompile(`[.#]\w+\s*\{`)
	sectionHeader   = regexp.MustCompile(`(?m)^\s*\[[^\]]+\]\s*$`)
	iniAssignment   = regexp.MustCompile(`(?m)^\s*[^#;\[][^=]*=`)

	pythonLine = []*regexp.Regexp{
		regexp.MustCompile(`^def\s+\w+\s*\(`),
		regexp.MustCompile(`^class\s+\w+.*:`),
		regexp.MustCompile(`^import\s+\w+`),
		regexp.MustCompile(`^from\s+\w+\s+import`),
	}
	javascriptLine = []*regexp.Regexp{
		regexp.MustCompile(`\bconst\s+\w+\s*=`),
		regexp.MustCompile(`\blet\s+\w+\s*=`),
		regexp.MustCompile(`\bvar\s+\w+\s*=`),
		regexp.MustCompile(`function\s+\w+\s*\(`),
	}
)

// hasMakeRecipe reports a tab-indented line that is not itself a key.
func hasMakeRecipe(s *Sample) bool {
	for _, l := range strings.Split(s.Code, "\n") {
		rest, ok := strings.CutPrefix(l, "\t")
		if !ok || rest == "" || unicode.IsSpace(rune(rest[0])) {
			continue
		}
		if !recipeKeyPrefix.MatchString(rest) {
			return true
		}
	}
	return false
}

func anyLineOf(s *Sample, res []*regexp.Regexp) bool {
	for _, re := range res {
		if s.anyLine(re) {
			return true
		}
	}
	return false
}

func shebang(s *Sample) (string, bool) {
	first := s.FirstLine
	if !strings.HasPrefix(first, "#!") {
		return "", false
	}
	switch {
	case strings.Contains(strings.ToLower(first), "python"):
		return Python, true
	case strings.Contains(first, "bash"), strings.Contains(first, "sh"):
		return Bash, true
	case strings.Contains(first, "node"):
		return NodeJS, true
	}
	if lang, _ := enry.GetLanguageByShebang([]byte(strings.TrimSpace(s.Code))); lang != "" {
		return normalizeEnry(lang)
	}
	return "", false
}

func looksLikeDockerfile(s *Sample) bool {
	for _, l := range s.Lines[:min(20, len(s.Lines))] {
		l = strings.ToUpper(strings.TrimSpace(l))
		for _, kw := range []string{"FROM ", "RUN ", "COPY ", "ENTRYPOINT "} {
			if strings.HasPrefix(l, kw) {
				return strings.Contains(s.Upper, "FROM ")
			}
		}
	}
	return false
}

func looksLikeSQL(s *Sample) bool {
	for _, kw := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE TABLE", "DROP "} {
		if strings.Contains(s.Upper, kw) {
			return true
		}
	}
	return false
}

func looksLikeYAML(s *Sample) bool {
	keys := 0
	for _, l := range s.Lines {
		if yamlKeyLine.MatchString(l) {
			keys++
		}
	}
	return keys >= 3 && !hasMakeRecipe(s) && !shellAssignment.MatchString(s.Code)
}

func looksLikeMakefile(s *Sample) bool {
	phony := s.has(".PHONY:")
	return (makeTarget.MatchString(s.Code) || phony) && (hasMakeRecipe(s) || phony)
}

//nolint:gochecknoglobals // ordered rule table
var contentRules = []Rule{
	{Name: "shebang", Resolve: shebang},

	{Name: "dockerfile", Format: Dockerfile, Match: looksLikeDockerfile},
	{Name: "docker-compose", Format: DockerCompose, Match: func(s *Sample) bool {
		return s.has("services:") && s.has("image:", "build:")
	}},
	{Name: "kubernetes", Format: Kubernetes, Match: func(s *Sample) bool {
		return s.has("apiVersion:") && s.has("kind:")
	}},
	{Name: "terraform", Format: Terraform, Match: func(s *Sample) bool {
		return s.has(`resource "`, `provider "`, `variable "`)
	}},
	{Name: "sql", Format: SQL, Match: looksLikeSQL},
	{Name: "github-actions", Format: GitHubActions, Match: func(s *Sample) bool {
		return s.has("on:") && s.has("push:", "pull_request:") && s.has("jobs:")
	}},
	{Name: "gitlab-ci", Format: GitLabCI, Match: func(s *Sample) bool {
		return s.has("stages:") && s.has("script:") && strings.Contains(s.Lower, "gitlab")
	}},
	{Name: "jenkinsfile", Format: Jenkinsfile, Match: func(s *Sample) bool {
		return s.has("pipeline {", "node {") && s.has("stage(", "stages {")
	}},
	{Name: "ansible", Format: Ansible, Match: func(s *Sample) bool {
		return s.has("- hosts:") || (s.has("- name:") && s.has("tasks:"))
	}},
	{Name: "helm", Format: Helm, Match: func(s *Sample) bool {
		return s.has("{{") && s.has("}}") && s.has(".Values", ".Release", ".Chart")
	}},
	{Name: "nginx", Format: Nginx, Match: func(s *Sample) bool {
		return s.has("server {", "location ")
	}},
	{Name: "typescript", Format: TypeScript, Match: func(s *Sample) bool {
		return s.has("interface ") && s.has("{") && s.has(":", "export ")
	}},
	{Name: "go", Format: Go, Match: func(s *Sample) bool {
		return s.has("package ") && s.has("func ", "import (")
	}},
	{Name: "rust", Format: Rust, Match: func(s *Sample) bool {
		return s.has("fn ") && s.has("let ", "use ") && s.has("::")
	}},
	{Name: "java", Format: Java, Match: func(s *Sample) bool {
		return s.has("public class ", "private class ") && s.has("void ")
	}},
	{Name: "csharp", Format: CSharp, Match: func(s *Sample) bool {
		return s.has("namespace ") && s.has("class ", "interface ")
	}},
	{Name: "ruby", Format: Ruby, Match: func(s *Sample) bool {
		return s.has("def ") && s.has("end") && s.has("class ", "module ")
	}},

	{Name: "yaml", Format: YAML, Match: looksLikeYAML},
	{Name: "makefile", Format: Makefile, Match: looksLikeMakefile},
	{Name: "html", Format: HTML, Match: func(s *Sample) bool {
		return strings.Contains(s.Upper, "<!DOCTYPE") || strings.Contains(s.Lower, "<html")
	}},
	{Name: "css", Format: CSS, Match: func(s *Sample) bool {
		return cssSelector.MatchString(s.Code) && s.has(":") && s.has(";")
	}},
	{Name: "apache", Format: Apache, Match: func(s *Sample) bool {
		return s.has("<VirtualHost", "ServerName", "DocumentRoot")
	}},
	{Name: "systemd", Format: Systemd, Match: func(s *Sample) bool {
		return s.has("[Unit]", "[Service]", "[Install]")
	}},
	{Name: "php", Format: PHP, Match: func(s *Sample) bool { return s.has("<?php") }},
	{Name: "python", Format: Python, Match: func(s *Sample) bool { return anyLineOf(s, pythonLine) }},
	{Name: "nodejs", Format: NodeJS, Match: func(s *Sample) bool {
		return s.has("require(", "module.exports")
	}},
	{Name: "javascript", Format: JavaScript, Match: func(s *Sample) bool { return anyLineOf(s, javascriptLine) }},
	{Name: "json", Format: JSON, Match: func(s *Sample) bool {
		trimmed := strings.TrimLeftFunc(s.Code, unicode.IsSpace)
		return (strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")) && s.has(":")
	}},
	{Name: "toml", Format: TOML, Match: func(s *Sample) bool {
		return sectionHeader.MatchString(s.Code) && s.has("=")
	}},
	{Name: "ini", Format: INI, Match: func(s *Sample) bool {
		return sectionHeader.MatchString(s.Code) && iniAssignment.MatchString(s.Code)
	}},
}

// ContentRules returns the content rule table in evaluation order.
func ContentRules() []Rule {
	return append([]Rule(nil), contentRules...)
}
