package analyzers

import (
	"regexp"
	"strings"

	"github.com/wronai/pactfix/pkg/fix"
)

//nolint:gochecknoglobals // compiled once
var (
	secretKey        = regexp.MustCompile(`(?i)(password|passwd|secret|api[_-]?key|access[_-]?key|token|private[_-]?key|credential)`)
	secretAssignment = regexp.MustCompile(`(?i)\b[\w.-]*(password|passwd|secret|api[_-]?key|access[_-]?key|token|private[_-]?key)[\w.-]*\s*[=:]\s*["']?([^\s"'$]{3,})`)
	placeholderValue = regexp.MustCompile(`^(<.*>|\{\{.*\}\}|changeme|xxx+|\*+|example|none|null|false|true)$`)
)

// splitComment splits line at the first unquoted comment marker. A shell
// style '#' only starts a comment at the beginning of a word.
func splitComment(line string, marker byte, wordStart bool) (code, comment string) {
	inSingle, inDouble, escaped := false, false, false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '\'' && !inDouble:
			inSingle = !inSingle
		case ch == '"' && !inSingle:
			inDouble = !inDouble
		case ch == marker && !inSingle && !inDouble:
			if wordStart && i > 0 && line[i-1] != ' ' && line[i-1] != '\t' {
				continue
			}
			return line[:i], line[i:]
		}
	}
	return line, ""
}

// hasSecret reports a credential-looking assignment whose value is not a
// placeholder or a variable reference.
func hasSecret(line string) bool {
	m := secretAssignment.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	return !placeholderValue.MatchString(strings.ToLower(m[2]))
}

func isBlank(line string) bool { return strings.TrimSpace(line) == "" }

// replaceTrimmed replaces the trimmed content of line with repl, keeping the
// surrounding whitespace.
func replaceTrimmed(line, repl string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return line
	}
	i := strings.Index(line, trimmed)
	return line[:i] + repl + line[i+len(trimmed):]
}

// trailingWhitespace reports whether line ends in spaces or tabs.
func trailingWhitespace(line string) bool {
	return line != strings.TrimRight(line, " \t")
}

// hygiene holds the codes for the whitespace rules shared by data formats.
type hygiene struct {
	tabs, trailing string
	tabsAreErrors  bool
}

// apply replaces tabs with two spaces and strips trailing whitespace on
// line n.
func (h hygiene) apply(f *fix.LineFixer, n int) {
	line := f.Line(n)
	if h.tabs != "" && strings.Contains(line, "\t") {
		if h.tabsAreErrors {
			f.Error(n, strings.Index(line, "\t")+1, h.tabs, "tab characters are not allowed: use spaces")
		} else {
			f.Warning(n, strings.Index(line, "\t")+1, h.tabs, "tab characters: use spaces")
		}
		fixed := strings.ReplaceAll(line, "\t", "  ")
		f.Rewrite(n, fixed, "replaced tabs with spaces", line, fixed)
		line = fixed
	}
	if h.trailing != "" && trailingWhitespace(line) {
		fixed := strings.TrimRight(line, " \t")
		f.Warning(n, len(fixed)+1, h.trailing, "trailing whitespace")
		f.Rewrite(n, fixed, "removed trailing whitespace", line, fixed)
	}
}
