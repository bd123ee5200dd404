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
	ansiblePassword = regexp.MustCompile(`(?i)^-?\s*[\w.-]*password[\w.-]*\s*:\s*(.+)$`)
	ansibleCommand  = regexp.MustCompile(`^-?\s*(ansible\.builtin\.)?(shell|command|raw)\s*:`)
	ansibleBecome   = regexp.MustCompile(`^-?\s*become\s*:\s*(true|yes)\b`)
	ansibleIgnore   = regexp.MustCompile(`^-?\s*ignore_errors\s*:\s*(true|yes)\b`)
)

// Ansible returns the Ansible playbook analyzer.
func Ansible() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.Ansible, Fn: analyzeAnsible}
}

func analyzeAnsible(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.Ansible, code)
	ws := hygiene{tabs: "YAML002", trailing: "YAML003", tabsAreErrors: true}

	for n := 1; n <= f.Len(); n++ {
		ws.apply(f, n)
		stripped := strings.TrimSpace(f.Line(n))
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			continue
		}

		if m := ansiblePassword.FindStringSubmatch(stripped); m != nil && yamlHardcoded(m[1]) &&
			!strings.HasPrefix(strings.TrimSpace(m[1]), "!vault") {
			f.Error(n, 1, "ANS001", "plain text password: use ansible-vault")
		}
		if ansibleCommand.MatchString(stripped) && !ansibleTaskHas(f, n, "changed_when", "creates:", "removes:") {
			f.Warning(n, 1, "ANS002", "shell/command task without changed_when")
		}
		if ansibleBecome.MatchString(stripped) && !strings.Contains(window(f, n-3, n+3), "become_user") {
			f.Info(n, 1, "ANS003", "become without become_user runs as root")
		}
		if ansibleIgnore.MatchString(stripped) {
			f.Warning(n, 1, "ANS004", "ignore_errors hides failures: use failed_when")
		}
	}

	yamlParse(f, "YAML011")
	return f.Result(), nil
}

// ansibleTaskHas reports whether the task around line n sets any of keys.
// The task is the nearest list item at or above n and ends at the next line
// whose indent is not deeper than the item's.
func ansibleTaskHas(f *fix.LineFixer, n int, keys ...string) bool {
	start := n
	for start > 1 && !strings.HasPrefix(strings.TrimSpace(f.Line(start)), "- ") {
		start--
	}
	indent := len(fix.LeadingSpace(f.Line(start)))
	for i := start; i <= f.Len(); i++ {
		line := f.Line(i)
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		if i > start && len(fix.LeadingSpace(line)) <= indent {
			break
		}
		for _, key := range keys {
			if strings.HasPrefix(strings.TrimPrefix(stripped, "- "), key) {
				return true
			}
		}
	}
	return false
}
