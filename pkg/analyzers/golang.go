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
	goErrAssign   = regexp.MustCompile(`,\s*err\s*:?=`)
	goFuncDecl    = regexp.MustCompile(`^func\s+(?:\([^)]*\)\s*)?(\w+)`)
	goGoroutine   = regexp.MustCompile(`^go\s+(func\s*\(|[\w.]+\()`)
	goSliceEq     = regexp.MustCompile(`[=!]=\s*\[\]\w+\{`)
	goStructOpen  = regexp.MustCompile(`^type\s+\w+\s+struct\s*\{`)
	goSQLCall     = regexp.MustCompile(`\.(Query|QueryRow|Exec|QueryContext|QueryRowContext|ExecContext)\(`)
	goEmptyErrorf = regexp.MustCompile(`errors\.New\(""\)|fmt\.Errorf\(""\)`)
)

// Go returns the Go analyzer.
func Go() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.Go, Fn: analyzeGo}
}

func analyzeGo(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.Go, code)
	synced := strings.Contains(code, "sync.") || strings.Contains(code, "chan ") || strings.Contains(code, "<-")
	var scope braceScope
	currentFunc := ""
	seenPackage := false

	for n := 1; n <= f.Len(); n++ {
		line := f.Line(n)
		body, _ := splitLineComment(line)
		stripped := strings.TrimSpace(body)
		if stripped == "" {
			continue
		}

		kind := ""
		switch {
		case isLoop(stripped):
			kind = "loop"
		case goStructOpen.MatchString(stripped):
			kind = "struct"
		}

		if m := goFuncDecl.FindStringSubmatch(stripped); m != nil {
			currentFunc = m[1]
		}

		if strings.HasPrefix(stripped, "package ") && !seenPackage {
			seenPackage = true
			if !strings.HasPrefix(strings.TrimSpace(f.Line(n-1)), "//") {
				f.Info(n, 1, "GO013", "package without a doc comment")
			}
		}

		if goErrAssign.MatchString(stripped) && !strings.Contains(stripped, "err != nil") {
			next := window(f, n+1, n+3)
			if !strings.Contains(next, "err != nil") && !strings.Contains(next, "_ = err") && !strings.Contains(next, "return err") {
				f.Warning(n, 1, "GO001", "error is not checked: add if err != nil")
			}
		}
		if strings.Contains(stripped, "panic(") && currentFunc != "main" && currentFunc != "init" {
			f.Warning(n, 1, "GO002", "panic() outside main: return an error")
		}
		if goEmptyErrorf.MatchString(stripped) {
			f.Error(n, 1, "GO003", "empty error message")
		}
		if strings.Contains(stripped, "fmt.Sprintf(") && !strings.Contains(stripped, "%") {
			f.Warning(n, 1, "GO004", "fmt.Sprintf without formatting verbs: use the string directly")
		}
		if goGoroutine.MatchString(stripped) && !synced {
			f.Warning(n, 1, "GO005", "goroutine without synchronization")
		}
		if goSliceEq.MatchString(stripped) {
			f.Error(n, 1, "GO006", "slices cannot be compared with ==: use slices.Equal")
		}
		if strings.HasPrefix(stripped, "defer ") && scope.in("loop") {
			f.Warning(n, 1, "GO007", "defer inside a loop runs only when the function returns")
		}
		if strings.Contains(stripped, "time.Sleep") {
			f.Warning(n, 1, "GO008", "time.Sleep in production code: consider a timer or context deadline")
		}
		if hasQuotedSecret(stripped) {
			f.Error(n, 1, "GO009", "hardcoded credential: read it from the environment")
		}
		if goSQLCall.MatchString(stripped) && (strings.Contains(stripped, "+") || strings.Contains(stripped, "fmt.Sprintf")) {
			f.Error(n, 1, "GO010", "possible SQL injection: use query parameters")
		}
		if scope.in("struct") && strings.Contains(stripped, "context.Context") {
			f.Warning(n, 1, "GO011", "context.Context stored in a struct: pass it as a parameter")
		}
		if strings.HasPrefix(stripped, "func init()") {
			f.Warning(n, 1, "GO012", "init() makes packages harder to test")
		}
		if strings.Contains(body, "interface{}") {
			f.Warning(n, 1, "GO014", "use any instead of interface{}")
			code, rest := splitLineComment(line)
			fixed := strings.ReplaceAll(code, "interface{}", "any") + rest
			f.Rewrite(n, fixed, "replaced interface{} with any", strings.TrimSpace(line), strings.TrimSpace(fixed))
		}

		scope.step(stripped, kind)
	}

	return f.Result(), nil
}
