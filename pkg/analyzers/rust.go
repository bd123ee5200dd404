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
	rustExpect       = regexp.MustCompile(`\.expect\("([^"]*)"\)`)
	rustFnDecl       = regexp.MustCompile(`\bfn\s+(\w+)`)
	rustLetMut       = regexp.MustCompile(`\blet\s+mut\s+(\w+)`)
	rustStringParam  = regexp.MustCompile(`\bfn\s+\w+\s*(<[^>]*>)?\([^)]*:\s*String\s*[,)]`)
	rustSecret       = regexp.MustCompile(`(?i)\b\w*(password|secret|api_key|token)\w*\s*(:\s*&?\w+\s*)?=\s*"[^"]+"`)
	rustEmptyArm     = regexp.MustCompile(`=>\s*(\{\s*\}|\(\))\s*,?$`)
	rustLiteralToStr = regexp.MustCompile(`("(?:[^"\\]|\\.)*")\.to_string\(\)`)
	rustClosure      = regexp.MustCompile(`\|(\w+)\|\s*[\w:]+\((\w+)\)`)
)

// Rust returns the Rust analyzer.
func Rust() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.Rust, Fn: analyzeRust}
}

func analyzeRust(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.Rust, code)
	currentFn := ""

	for n := 1; n <= f.Len(); n++ {
		line := f.Line(n)
		body, _ := splitLineComment(line)
		stripped := strings.TrimSpace(body)
		if stripped == "" {
			continue
		}
		if m := rustFnDecl.FindStringSubmatch(stripped); m != nil {
			currentFn = m[1]
		}

		if strings.Contains(stripped, ".unwrap()") {
			f.Warning(n, 1, "RUST001", "unwrap() can panic: use ? or match")
		}
		if m := rustExpect.FindStringSubmatch(stripped); m != nil && len(m[1]) < 10 {
			f.Warning(n, 1, "RUST002", "expect() with a short message: describe what went wrong")
		}
		if strings.Contains(stripped, ".clone()") {
			f.Info(n, 1, "RUST003", "clone() may be expensive: consider borrowing")
		}
		if strings.Contains(stripped, "panic!") && currentFn != "main" {
			f.Warning(n, 1, "RUST004", "panic! outside main: return a Result")
		}
		if m := rustLetMut.FindStringSubmatch(stripped); m != nil && !rustMutated(f, n, m[1]) {
			f.Warning(n, 1, "RUST005", "unnecessary mut on "+m[1])
		}
		if rustStringParam.MatchString(stripped) {
			f.Info(n, 1, "RUST006", "consider &str instead of String for parameters")
		}
		if strings.Contains(stripped, "Box<dyn Error>") && !strings.Contains(stripped, "Send") {
			f.Info(n, 1, "RUST007", "Box<dyn Error> without Send + Sync")
		}
		if strings.Contains(stripped, "println!") && !strings.Contains(strings.ToLower(stripped), "debug") {
			f.Warning(n, 1, "RUST008", "println! used for logging: use the log or tracing crate")
		}
		if rustSecret.MatchString(stripped) {
			f.Error(n, 1, "RUST009", "hardcoded credential")
		}
		if strings.Contains(stripped, "unsafe {") || strings.Contains(stripped, "unsafe fn") {
			prev := strings.TrimSpace(f.Line(n - 1))
			if !strings.HasPrefix(prev, "//") {
				f.Warning(n, 1, "RUST010", "unsafe without a // SAFETY: comment")
			}
		}
		if rustEmptyArm.MatchString(stripped) {
			f.Warning(n, 1, "RUST011", "empty match arm: handle the case or explain it")
		}
		if rustLiteralToStr.MatchString(body) {
			f.Warning(n, 1, "RUST012", `use String::from() instead of "".to_string()`)
			code, rest := splitLineComment(f.Line(n))
			fixed := rustLiteralToStr.ReplaceAllString(code, "String::from($1)") + rest
			f.Rewrite(n, fixed, "replaced .to_string() on a literal with String::from()", strings.TrimSpace(line), strings.TrimSpace(fixed))
		}
		if m := rustClosure.FindStringSubmatch(stripped); m != nil && m[1] == m[2] {
			f.Info(n, 1, "RUST013", "redundant closure: pass the function directly")
		}
		if strings.HasPrefix(stripped, "pub fn") && strings.Contains(stripped, "-> Result") &&
			!strings.Contains(window(f, n-2, n-1), "#[must_use]") {
			f.Info(n, 1, "RUST014", "consider #[must_use] on a function returning Result")
		}
	}

	return f.Result(), nil
}

// rustMutated reports whether name is reassigned or has a method called on
// it after line n.
func rustMutated(f *fix.LineFixer, n int, name string) bool {
	use := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\s*(\.|[-+*/]?=[^=]|\[)|&mut\s+` + regexp.QuoteMeta(name) + `\b`)
	return use.MatchString(window(f, n+1, f.Len()))
}
