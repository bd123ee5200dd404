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
	jsVar       = regexp.MustCompile(`\bvar\s+\w+`)
	jsVarKw     = regexp.MustCompile(`\bvar\b`)
	jsLooseEq   = regexp.MustCompile(`[^=!]==[^=]`)
	jsSyncIO    = regexp.MustCompile(`\b(readFileSync|writeFileSync|appendFileSync|existsSync)\b`)
	jsStrictEqs = regexp.MustCompile(`[=!]==`)
)

// JavaScript returns the browser JavaScript analyzer.
func JavaScript() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.JavaScript, Fn: func(ctx context.Context, code string) (lint.Result, error) {
		return analyzeJS(ctx, langdetect.JavaScript, code)
	}}
}

// NodeJS returns the JavaScript analyzer with Node.js checks enabled.
func NodeJS() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.NodeJS, Fn: func(ctx context.Context, code string) (lint.Result, error) {
		return analyzeJS(ctx, langdetect.NodeJS, code)
	}}
}

func analyzeJS(_ context.Context, format, code string) (lint.Result, error) {
	f := fix.NewLineFixer(format, code)
	node := format == langdetect.NodeJS

	for n := 1; n <= f.Len(); n++ {
		line := f.Line(n)
		body, _ := splitLineComment(line)
		stripped := strings.TrimSpace(body)
		if stripped == "" {
			continue
		}

		if jsVar.MatchString(stripped) {
			f.Warning(n, 1, "JS001", "use let/const instead of var")
			fixed := jsVarKw.ReplaceAllString(line, "let")
			f.Rewrite(n, fixed, "replaced var with let", strings.TrimSpace(line), strings.TrimSpace(fixed))
		}

		if jsLooseEq.MatchString(jsStrictEqs.ReplaceAllString(stripped, "   ")) {
			f.Warning(n, 1, "JS002", "use === instead of ==")
		}

		if strings.Contains(stripped, "console.log") {
			f.Warning(n, 1, "JS003", "console.log left in production code")
		}

		if strings.Contains(stripped, "eval(") {
			f.Error(n, 1, "JS004", "eval() is dangerous: avoid it")
		}

		if node && jsSyncIO.MatchString(stripped) {
			f.Warning(n, 1, "NODE002", "synchronous I/O blocks the event loop: use the async API")
		}
	}

	return f.Result(), nil
}

// splitLineComment splits a C-style line at an unquoted "//".
func splitLineComment(line string) (code, comment string) {
	inSingle, inDouble, inBack, escaped := false, false, false, false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '\'' && !inDouble && !inBack:
			inSingle = !inSingle
		case ch == '"' && !inSingle && !inBack:
			inDouble = !inDouble
		case ch == '`' && !inSingle && !inDouble:
			inBack = !inBack
		case ch == '/' && !inSingle && !inDouble && !inBack && i+1 < len(line) && line[i+1] == '/':
			if i > 0 && line[i-1] == ':' {
				continue
			}
			return line[:i], line[i:]
		}
	}
	return line, ""
}
