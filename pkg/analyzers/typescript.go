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
	tsAny           = regexp.MustCompile(`:\s*any\b|<any>|\bas\s+any\b`)
	tsNonNull       = regexp.MustCompile(`\w!\.`)
	tsLooseEq       = regexp.MustCompile(`([^=!<>])==([^=])`)
	tsEmptyIface    = regexp.MustCompile(`^(export\s+)?interface\s+\w+\s*\{\s*\}$`)
	tsNoReturnType  = regexp.MustCompile(`\bfunction\s+\w+\s*(<[^>]*>)?\s*\([^)]*\)\s*\{`)
	tsObjectType    = regexp.MustCompile(`:\s*Object\b`)
	tsWrapperType   = regexp.MustCompile(`:\s*(String|Number|Boolean)\b`)
	tsNamedImports  = regexp.MustCompile(`^import\s+(?:type\s+)?\{([^}]+)\}\s+from\b`)
	tsIgnoreComment = regexp.MustCompile(`@ts-ignore(.*)$`)
)

// TypeScript returns the TypeScript analyzer.
func TypeScript() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.TypeScript, Fn: analyzeTypeScript}
}

func analyzeTypeScript(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.TypeScript, code)
	hasAwait := strings.Contains(code, "await")

	for n := 1; n <= f.Len(); n++ {
		line := f.Line(n)
		body, comment := splitLineComment(line)
		stripped := strings.TrimSpace(body)

		if m := tsIgnoreComment.FindStringSubmatch(comment); m != nil && len(strings.TrimSpace(m[1])) < 5 {
			f.Warning(n, 1, "TS007", "@ts-ignore without an explanation")
		}
		if stripped == "" {
			continue
		}

		if tsAny.MatchString(stripped) {
			f.Warning(n, 1, "TS001", "avoid any: use unknown or a concrete type")
		}
		if tsNonNull.MatchString(stripped) {
			f.Warning(n, 1, "TS002", "non-null assertion: consider optional chaining")
		}
		if jsVar.MatchString(stripped) {
			f.Warning(n, 1, "TS003", "use let/const instead of var")
			fixed := jsVarKw.ReplaceAllString(f.Line(n), "let")
			f.Rewrite(n, fixed, "replaced var with let", strings.TrimSpace(line), strings.TrimSpace(fixed))
		}
		if tsLooseEq.MatchString(stripped) {
			f.Warning(n, 1, "TS004", "use === instead of ==")
			current := f.Line(n)
			code, rest := splitLineComment(current)
			fixed := tsLooseEq.ReplaceAllString(code, "$1===$2") + rest
			f.Rewrite(n, fixed, "replaced == with ===", strings.TrimSpace(current), strings.TrimSpace(fixed))
		}
		if strings.Contains(stripped, "console.log") {
			f.Warning(n, 1, "TS005", "console.log left in production code")
		}
		if strings.Contains(stripped, "eval(") {
			f.Error(n, 1, "TS006", "eval() is dangerous: avoid it")
		}
		if tsEmptyIface.MatchString(stripped) {
			f.Warning(n, 1, "TS008", "empty interface: use a type alias or Record<string, never>")
		}
		if tsNoReturnType.MatchString(stripped) {
			f.Warning(n, 1, "TS009", "function without a return type")
		}
		if strings.Contains(stripped, "async ") && !hasAwait {
			f.Warning(n, 1, "TS010", "async function without await")
		}
		if strings.Contains(stripped, "new Promise") && strings.Contains(stripped, "async") {
			f.Warning(n, 1, "TS011", "Promise constructor inside an async function")
		}
		if tsObjectType.MatchString(stripped) {
			f.Warning(n, 1, "TS012", "use object or Record instead of Object")
		}
		for _, m := range tsWrapperType.FindAllStringSubmatch(stripped, -1) {
			f.Warning(n, 1, "TS013", "use "+strings.ToLower(m[1])+" instead of "+m[1])
		}
		if m := tsNamedImports.FindStringSubmatch(stripped); m != nil {
			tsUnusedImports(f, n, m[1], code)
		}
	}

	return f.Result(), nil
}

// tsUnusedImports reports named imports on line n that never appear
// elsewhere in the document.
func tsUnusedImports(f *fix.LineFixer, n int, names, code string) {
	rest := strings.Replace(code, f.Original(n), "", 1)
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(name), "type "))
		if i := strings.Index(name, " as "); i >= 0 {
			name = strings.TrimSpace(name[i+len(" as "):])
		}
		if name == "" {
			continue
		}
		if !regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`).MatchString(rest) {
			f.Warning(n, 1, "TS014", "possibly unused import: "+name)
		}
	}
}
