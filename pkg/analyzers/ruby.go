package analyzers

import (
	"context"
	"regexp"
	"strings"

	"github.com/wronai/pactfix/pkg/fix"
	"github.com/wronai/pactfix/pkg/langdetect"
	"github.com/wronai/pactfix/pkg/lint"
)

// rubyMaxMethod is the longest method body, in lines, before RUBY012 fires.
const rubyMaxMethod = 20

//nolint:gochecknoglobals // compiled once
var (
	rubyEqNil     = regexp.MustCompile(`\s*==\s*nil\b`)
	rubySecret    = regexp.MustCompile(`(?i)\b\w*(password|secret|api_key|token)\w*\s*=\s*["'][^"']+["']`)
	rubyEval      = regexp.MustCompile(`\beval[\s(]`)
	rubySQLCall   = regexp.MustCompile(`\.(where|find_by_sql|execute)\(`)
	rubyConstant  = regexp.MustCompile(`^[A-Z][A-Z0-9_]*\s*=\s*("[^"]*"|'[^']*')$`)
	rubyProcOpen  = regexp.MustCompile(`\b(proc|Proc\.new)\b`)
	rubyBlockOpen = regexp.MustCompile(`^(def|class|module|if|unless|while|until|case|begin|for)\b|\bdo(\s*\|[^|]*\|)?$`)
)

// Ruby returns the Ruby analyzer.
func Ruby() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.Ruby, Fn: analyzeRuby}
}

func analyzeRuby(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.Ruby, code)

	for n := 1; n <= f.Len(); n++ {
		line := f.Line(n)
		body, comment := splitComment(line, '#', true)
		stripped := strings.TrimSpace(body)
		if stripped == "" {
			continue
		}

		if rubyEqNil.MatchString(stripped) {
			f.Warning(n, 1, "RUBY001", "use .nil? instead of == nil")
			fixed := rubyEqNil.ReplaceAllString(body, ".nil?") + comment
			f.Rewrite(n, fixed, "replaced == nil with .nil?", strings.TrimSpace(line), strings.TrimSpace(fixed))
		}
		if stripped == "rescue" {
			f.Warning(n, 1, "RUBY002", "rescue without an exception class catches StandardError")
		}
		if strings.HasPrefix(stripped, "rescue Exception") {
			f.Error(n, 1, "RUBY003", "rescue Exception also catches SystemExit and Interrupt")
		}
		if strings.HasPrefix(stripped, "puts ") || strings.HasPrefix(stripped, "print ") {
			f.Warning(n, 1, "RUBY004", "puts/print used for logging: use Logger")
		}
		if rubySecret.MatchString(stripped) {
			f.Error(n, 1, "RUBY005", "hardcoded credential")
		}
		if rubyEval.MatchString(stripped) {
			f.Error(n, 1, "RUBY006", "eval is dangerous")
		}
		if strings.Contains(stripped, ".send(") {
			f.Warning(n, 1, "RUBY007", "send() with outside input can call any method: use public_send")
		}
		if rubySQLCall.MatchString(stripped) && (strings.Contains(stripped, "#{") || strings.Contains(stripped, "+")) {
			f.Error(n, 1, "RUBY008", "possible SQL injection: use placeholders")
		}
		if strings.Contains(stripped, "@@") {
			f.Warning(n, 1, "RUBY009", "class variable @@: consider a class instance variable")
		}
		if rubyConstant.MatchString(stripped) {
			f.Warning(n, 1, "RUBY010", "string constant without .freeze")
			current := f.Line(n)
			b, c := splitComment(current, '#', true)
			trimmed := strings.TrimRight(b, " \t")
			fixed := trimmed + ".freeze" + b[len(trimmed):] + c
			f.Rewrite(n, fixed, "added .freeze to the constant", strings.TrimSpace(current), strings.TrimSpace(fixed))
		}
		if strings.HasPrefix(stripped, "return ") && rubyProcOpen.MatchString(window(f, n-5, n-1)) {
			f.Warning(n, 1, "RUBY011", "return inside a proc returns from the enclosing method: use a lambda")
		}
		if strings.HasPrefix(stripped, "def ") {
			if length := rubyMethodLength(f, n); length > rubyMaxMethod {
				f.Info(n, 1, "RUBY012", "method is too long: consider refactoring")
			}
		}
		if stripped == "begin" && strings.Contains(window(f, n+1, n+5), "rescue") {
			f.Info(n, 1, "RUBY013", "begin/rescue used for control flow: prefer a condition")
		}
		if strings.Contains(stripped, "!!") {
			f.Info(n, 1, "RUBY014", "double negation: use a predicate method")
		}
	}

	return f.Result(), nil
}

// rubyMethodLength counts the lines between the def on line n and its end,
// or 0 when no matching end is found.
func rubyMethodLength(f *fix.LineFixer, n int) int {
	depth := 0
	for i := n; i <= f.Len(); i++ {
		body, _ := splitComment(f.Line(i), '#', true)
		stripped := strings.TrimSpace(body)
		if rubyBlockOpen.MatchString(stripped) && !strings.HasSuffix(stripped, " end") {
			depth++
		}
		if stripped == "end" || strings.HasPrefix(stripped, "end ") || strings.HasPrefix(stripped, "end.") {
			depth--
			if depth == 0 {
				return i - n - 1
			}
		}
	}
	return 0
}
