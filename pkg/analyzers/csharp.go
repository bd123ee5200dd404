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
	csStringEq     = regexp.MustCompile(`==\s*"`)
	csCatchGeneric = regexp.MustCompile(`^}?\s*catch\s*(\(\s*Exception\b[^)]*\))?\s*\{?$`)
	csVarUnclear   = regexp.MustCompile(`^var\s+\w+\s*=\s*\w+\.\w+\(`)
	csPublicField  = regexp.MustCompile(`^public\s+(?:static\s+|readonly\s+)*[\w<>\[\],]+\s+\w+\s*(=[^;]*)?;$`)
	csAsyncVoid    = regexp.MustCompile(`^(public|private|protected|internal)?\s*(static\s+)?async\s+void\s+\w+\s*\(([^)]*)\)`)
	csAsyncCall    = regexp.MustCompile(`\b\w+Async\(`)
	csLockThis     = regexp.MustCompile(`\block\s*\(\s*this\s*\)`)
	csConcat       = regexp.MustCompile(`"\s*\+\s*\w+(\.\w+)*\s*\+\s*"`)
	csDisposable   = regexp.MustCompile(`new\s+\w*(Stream|Reader|Writer|Connection)\b`)
	csSQLCall      = regexp.MustCompile(`\bnew\s+SqlCommand\(|\.ExecuteReader\(|\.ExecuteNonQuery\(`)
	csMagicNumber  = regexp.MustCompile(`[=<>]\s*\d{2,}\b`)
)

// CSharp returns the C# analyzer.
func CSharp() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.CSharp, Fn: analyzeCSharp}
}

func analyzeCSharp(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.CSharp, code)

	for n := 1; n <= f.Len(); n++ {
		body, comment := splitLineComment(f.Line(n))
		stripped := strings.TrimSpace(body)
		if stripped == "" || strings.HasPrefix(stripped, "*") || strings.HasPrefix(stripped, "/*") {
			continue
		}

		if csStringEq.MatchString(stripped) && !strings.Contains(stripped, "nameof") {
			f.Info(n, 1, "CS001", "consider String.Equals with a StringComparison")
		}
		if csCatchGeneric.MatchString(stripped) {
			f.Warning(n, 1, "CS002", "catching a generic exception: catch the specific type")
		}
		if strings.Contains(stripped, "catch") {
			after := stripped[strings.Index(stripped, "catch"):]
			if javaEmptyBlock.MatchString(after + "\n" + window(f, n+1, n+2)) {
				f.Error(n, 1, "CS003", "empty catch block")
			}
		}
		if strings.Contains(stripped, "Console.Write") {
			f.Warning(n, 1, "CS004", "use ILogger instead of Console.Write")
		}
		if hasQuotedSecret(stripped) {
			f.Error(n, 1, "CS005", "hardcoded credential")
		}
		if csVarUnclear.MatchString(stripped) {
			f.Info(n, 1, "CS006", "var hides the type: consider an explicit type")
		}
		if csPublicField.MatchString(stripped) && !strings.Contains(stripped, "const ") {
			f.Warning(n, 1, "CS007", "public field: use a property")
		}
		if m := csAsyncVoid.FindStringSubmatch(stripped); m != nil && !strings.Contains(m[3], "EventArgs") {
			f.Error(n, 1, "CS008", "async void: return async Task")
		}
		if csAsyncCall.MatchString(stripped) && !strings.Contains(stripped, "await") &&
			!strings.Contains(stripped, "Task") && !strings.HasPrefix(stripped, "return ") {
			f.Warning(n, 1, "CS009", "async call without await")
		}
		if csLockThis.MatchString(stripped) {
			f.Error(n, 1, "CS010", "lock(this) is unsafe: lock on a private object")
		}
		if csConcat.MatchString(stripped) {
			f.Info(n, 1, "CS011", `string concatenation: use interpolation $""`)
		}
		if csDisposable.MatchString(stripped) && !strings.Contains(stripped, "using") &&
			!strings.Contains(f.Line(n-1), "using") {
			f.Warning(n, 1, "CS012", "IDisposable created without using")
		}
		if csSQLCall.MatchString(stripped) && (strings.Contains(stripped, "+") || strings.Contains(stripped, "String.Format")) {
			f.Error(n, 1, "CS013", "possible SQL injection: use parameters")
		}
		if strings.Contains(stripped, "Thread.Sleep") {
			f.Warning(n, 1, "CS014", "Thread.Sleep: use await Task.Delay")
		}
		if strings.Contains(stripped, "DateTime.Now") || strings.Contains(stripped, "DateTime.Today") {
			f.Info(n, 1, "CS016", "consider DateTimeOffset or DateTime.UtcNow")
		}
		if comment == "" && csMagicNumber.MatchString(stripped) && !strings.Contains(stripped, "const ") {
			f.Info(n, 1, "CS017", "magic number: use a named constant")
		}
	}

	return f.Result(), nil
}
