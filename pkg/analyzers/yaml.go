package analyzers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wronai/pactfix/pkg/fix"
	"github.com/wronai/pactfix/pkg/langdetect"
	"github.com/wronai/pactfix/pkg/lint"
)

// YAMLMaxLineLength is the longest line YAML006 accepts.
const YAMLMaxLineLength = 120

//nolint:gochecknoglobals // compiled once
var (
	yamlScalarLine = regexp.MustCompile(`^(\s*[^:#]+:\s+)([^#]+?)(\s+#.*)?$`)
	yamlValue      = regexp.MustCompile(`:\s+([^"'\[{#|>&*!][^#]*)`)
	yamlEmptyKey   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*:\s*$`)
	yamlAnchor     = regexp.MustCompile(`(?:^|[\s:-])&([\w-]+)`)
	yamlSecretKey  = regexp.MustCompile(`(?i)^-?\s*([\w.-]*(password|passwd|secret|api_key|apikey|token|credential)[\w.-]*)\s*:\s*(.+)$`)
	yamlErrLine    = regexp.MustCompile(`line (\d+)`)
)

//nolint:gochecknoglobals // read-only
var yamlBooleanish = map[string]bool{"yes": true, "no": true, "on": true, "off": true, "y": true, "n": true}

// YAML returns the generic YAML analyzer.
func YAML() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.YAML, Fn: analyzeYAML}
}

func analyzeYAML(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.YAML, code)
	ws := hygiene{tabs: "YAML002", trailing: "YAML003", tabsAreErrors: true}
	prevIndent := 0

	for n := 1; n <= f.Len(); n++ {
		ws.apply(f, n)

		line := f.Line(n)
		stripped := strings.TrimSpace(line)
		if stripped == "" || strings.HasPrefix(stripped, "#") || stripped == "---" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " "))

		if diff := indent - prevIndent; indent > 0 && diff > 0 && diff != 2 && diff != 4 && indent%2 != 0 {
			f.Warning(n, 1, "YAML001", "inconsistent indentation: use 2 or 4 spaces")
		}
		prevIndent = indent

		yamlQuoteBooleanish(f, n)
		yamlQuoteColon(f, n)

		if len(f.Line(n)) > YAMLMaxLineLength {
			f.Warning(n, YAMLMaxLineLength+1, "YAML006", fmt.Sprintf("line longer than %d characters: consider a multiline string", YAMLMaxLineLength))
		}

		yamlDuplicateKey(f, n, indent)

		if m := yamlSecretKey.FindStringSubmatch(stripped); m != nil && yamlHardcoded(m[3]) {
			f.Error(n, 1, "YAML008", fmt.Sprintf("hardcoded %s: use an environment variable or secret store", strings.ToLower(m[2])))
		}

		if yamlEmptyKey.MatchString(stripped) && !yamlHasChildren(f, n, indent) {
			f.Warning(n, 1, "YAML009", "empty value: is this intended?")
		}

		if m := yamlAnchor.FindStringSubmatch(stripped); m != nil && !strings.Contains(code, "*"+m[1]) {
			f.Warning(n, 1, "YAML010", fmt.Sprintf("anchor &%s is never referenced by an alias", m[1]))
		}
	}

	yamlParse(f, "YAML011")
	return f.Result(), nil
}

func yamlQuoteBooleanish(f *fix.LineFixer, n int) {
	line := f.Line(n)
	m := yamlScalarLine.FindStringSubmatch(line)
	if m == nil {
		return
	}
	value := strings.TrimSpace(m[2])
	if !yamlBooleanish[strings.ToLower(value)] {
		return
	}
	f.Warning(n, len(m[1])+1, "YAML004", fmt.Sprintf("value %s may be interpreted as a boolean", value))
	fixed := strings.TrimRight(m[1]+`"`+value+`"`+m[3], " \t")
	f.Rewrite(n, fixed, "quoted value "+value, line, fixed)
}

// yamlQuoteColon quotes plain scalars containing ": ", which YAML would
// read as a nested mapping.
func yamlQuoteColon(f *fix.LineFixer, n int) {
	line := f.Line(n)
	v := yamlValue.FindStringSubmatch(strings.TrimSpace(line))
	if v == nil {
		return
	}
	value := strings.TrimSpace(v[1])
	if !strings.Contains(value, ": ") && !strings.HasSuffix(value, ":") {
		return
	}
	m := yamlScalarLine.FindStringSubmatch(line)
	if m == nil {
		return
	}
	raw := strings.TrimSpace(m[2])
	if strings.HasPrefix(raw, `"`) || strings.HasPrefix(raw, "'") {
		return
	}
	f.Warning(n, len(m[1])+1, "YAML005", "colon in an unquoted value")
	fixed := strings.TrimRight(m[1]+strconv.Quote(raw)+m[3], " \t")
	f.Rewrite(n, fixed, "quoted value containing a colon", line, fixed)
}

// yamlDuplicateKey looks back through siblings at the same indent, stopping
// at the parent.
func yamlDuplicateKey(f *fix.LineFixer, n, indent int) {
	stripped := strings.TrimSpace(f.Line(n))
	key, _, ok := strings.Cut(stripped, ":")
	if !ok || strings.HasPrefix(stripped, "-") || strings.ContainsAny(key, `"' `) {
		return
	}
	for k := n - 1; k >= max(1, n-20); k-- {
		other := f.Line(k)
		trimmed := strings.TrimSpace(other)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		otherIndent := len(other) - len(strings.TrimLeft(other, " "))
		if otherIndent < indent || trimmed == "---" {
			return
		}
		if otherIndent == indent && strings.HasPrefix(trimmed, key+":") {
			f.Warning(n, 1, "YAML007", "possible duplicate key: "+key)
			return
		}
	}
}

func yamlHasChildren(f *fix.LineFixer, n, indent int) bool {
	for k := n + 1; k <= f.Len(); k++ {
		line := f.Line(k)
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		childIndent := len(line) - len(strings.TrimLeft(line, " "))
		return childIndent > indent || (childIndent == indent && strings.HasPrefix(trimmed, "- "))
	}
	return false
}

func yamlHardcoded(value string) bool {
	value = strings.TrimSpace(value)
	if i := strings.Index(value, " #"); i >= 0 {
		value = strings.TrimSpace(value[:i])
	}
	value = strings.Trim(value, `"'`)
	if value == "" || strings.ContainsAny(value[:1], "|>&*[{") {
		return false
	}
	if strings.Contains(value, "${") || strings.Contains(value, "$(") || strings.Contains(value, "{{") {
		return false
	}
	return !placeholderValue.MatchString(strings.ToLower(value))
}

// yamlParse reports the first syntax error of the current text.
func yamlParse(f *fix.LineFixer, code string) {
	if err := yamlDecodeAll(fixedText(f), nil); err != nil {
		line := 1
		if m := yamlErrLine.FindStringSubmatch(err.Error()); m != nil {
			line, _ = strconv.Atoi(m[1])
		}
		f.Error(min(max(line, 1), f.Len()), 1, code, "invalid YAML: "+strings.TrimPrefix(err.Error(), "yaml: "))
	}
}

// yamlDecodeAll decodes every document of text, calling visit for each.
func yamlDecodeAll(text string, visit func(doc *yaml.Node)) error {
	dec := yaml.NewDecoder(strings.NewReader(text))
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if visit != nil {
			visit(&doc)
		}
	}
}

// fixedText returns the fixer's current lines joined.
func fixedText(f *fix.LineFixer) string {
	lines := make([]string, f.Len())
	for n := range lines {
		lines[n] = f.Line(n + 1)
	}
	return strings.Join(lines, "\n")
}
