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
	bashUnbraced     = regexp.MustCompile(`\$[A-Za-z_][A-Za-z0-9_]*`)
	bashCd           = regexp.MustCompile(`^cd\s+`)
	bashRead         = regexp.MustCompile(`^read\s+`)
	bashReadRaw      = regexp.MustCompile(`^read\s+(?:-\w*r|.*\s-\w*r)`)
	bashSplitQuote   = regexp.MustCompile(`(\w+)="([^"]*)"(\w+)`)
	bashSubstitution = regexp.MustCompile(`\$\(([^)]*)\)`)
)

// Bash returns the shell script analyzer. It is also the registry fallback.
func Bash() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.Bash, Fn: analyzeBash}
}

func analyzeBash(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.Bash, code)

	for n := 1; n <= f.Len(); n++ {
		bashBraces(f, n)
		bashCdGuard(f, n)
		bashReadFlag(f, n)
		bashQuotes(f, n)
	}

	return f.Result(), nil
}

// bashBraces rewrites $VAR as ${VAR} outside single quotes and comments.
func bashBraces(f *fix.LineFixer, n int) {
	line := f.Line(n)
	stripped := strings.TrimSpace(line)
	if strings.HasPrefix(stripped, "#") || !bashUnbraced.MatchString(line) {
		return
	}
	code, comment := splitComment(line, '#', true)
	braced := braceVars(code)
	if braced == code {
		return
	}
	next := braced + comment
	f.Warning(n, 1, "BASH001", "unbraced variable: use ${VAR} syntax")
	f.Rewrite(n, next, "added braces to variables", stripped, strings.TrimSpace(next))
}

func braceVars(line string) string {
	var b strings.Builder
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
		case ch == '$' && !inSingle && i+1 < len(line) && isNameStart(line[i+1]):
			j := i + 2
			for j < len(line) && isNameChar(line[j]) {
				j++
			}
			b.WriteString("${" + line[i+1:j] + "}")
			i = j - 1
			continue
		}
		b.WriteByte(ch)
	}
	return b.String()
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

// bashCdGuard appends "|| exit 1" to a bare cd.
func bashCdGuard(f *fix.LineFixer, n int) {
	line := f.Line(n)
	code, comment := splitComment(line, '#', true)
	stripped := strings.TrimSpace(code)
	if !bashCd.MatchString(stripped) || strings.Contains(stripped, "||") || strings.Contains(stripped, "&&") {
		return
	}
	guarded := stripped + " || exit 1"
	next := replaceTrimmed(code, guarded)
	if comment != "" {
		next = strings.TrimRight(next, " \t") + " " + comment
	}
	f.Warning(n, 1, "SC2164", "cd without error handling: use cd ... || exit")
	f.Rewrite(n, next, "added error handling to cd", stripped, guarded)
}

func bashReadFlag(f *fix.LineFixer, n int) {
	stripped := strings.TrimSpace(f.Line(n))
	if !bashRead.MatchString(stripped) || bashReadRaw.MatchString(stripped) {
		return
	}
	f.Warning(n, 1, "SC2162", "read without -r will mangle backslashes")
	after := "read -r " + strings.TrimLeft(strings.TrimPrefix(stripped, "read"), " \t")
	f.Rewrite(n, replaceTrimmed(f.Line(n), after), "added -r to read", stripped, after)
}

// bashQuotes repairs a closing quote placed before the end of a word or
// inside a command substitution.
func bashQuotes(f *fix.LineFixer, n int) {
	line := f.Line(n)
	if m := bashSplitQuote.FindStringSubmatch(line); m != nil {
		fixed := m[1] + `="` + m[2] + m[3] + `"`
		f.Error(n, 1, "SC1073", "misplaced quotes")
		f.Rewrite(n, strings.Replace(line, m[0], fixed, 1), "fixed quote placement", m[0], fixed)
		line = f.Line(n)
	}

	loc := bashSubstitution.FindStringSubmatchIndex(line)
	if loc == nil {
		return
	}
	inner := line[loc[2]:loc[3]]
	if strings.Count(inner, `"`) != 1 {
		return
	}
	before := line[loc[0]:loc[1]]
	after := "$(" + strings.Replace(inner, `"`, "", 1) + `)"`
	f.Error(n, 1, "SC1073", "misplaced quote inside command substitution")
	f.Rewrite(n, line[:loc[0]]+after+line[loc[1]:], "moved quote out of command substitution", before, after)
}
