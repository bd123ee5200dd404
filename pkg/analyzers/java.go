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
	javaStringEq     = regexp.MustCompile(`==\s*"|"\s*==`)
	javaCatchGeneric = regexp.MustCompile(`^}?\s*catch\s*\(\s*(Exception|Throwable)\s+\w+\s*\)`)
	javaEmptyBlock   = regexp.MustCompile(`\{\s*\}`)
	javaRawType      = regexp.MustCompile(`\b(List|Map|Set|ArrayList|HashMap|HashSet)\s+\w+\s*=`)
	javaPublicField  = regexp.MustCompile(`^public\s+(\w+)\s+\w+\s*(=[^;]*)?;$`)
	javaOverridable  = regexp.MustCompile(`^public\s+\w+\s+(equals|hashCode|toString)\s*\(`)
	javaConcat       = regexp.MustCompile(`\+=\s*"|\w\s*\+\s*"|"\s*\+\s*\w`)
	javaResource     = regexp.MustCompile(`new\s+(FileInputStream|FileOutputStream|FileReader|FileWriter|BufferedReader|BufferedWriter)\b`)
	javaSyncMethod   = regexp.MustCompile(`\bsynchronized\s+[\w<>\[\], ]+\s+\w+\s*\(`)
	javaSQLCall      = regexp.MustCompile(`\.(executeQuery|executeUpdate|execute)\(`)
	javaNullAssign   = regexp.MustCompile(`\b(\w+)\s*=\s*null\s*;`)
)

//nolint:gochecknoglobals // read-only
var javaFieldModifiers = map[string]bool{"static": true, "final": true, "class": true, "interface": true, "enum": true, "abstract": true}

// Java returns the Java analyzer.
func Java() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.Java, Fn: analyzeJava}
}

func analyzeJava(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.Java, code)
	var scope braceScope

	for n := 1; n <= f.Len(); n++ {
		body, _ := splitLineComment(f.Line(n))
		stripped := strings.TrimSpace(body)
		if stripped == "" || strings.HasPrefix(stripped, "*") || strings.HasPrefix(stripped, "/*") {
			continue
		}

		if javaStringEq.MatchString(stripped) {
			f.Warning(n, 1, "JAVA001", "use .equals() to compare strings")
		}
		if javaCatchGeneric.MatchString(stripped) {
			f.Warning(n, 1, "JAVA002", "catching a generic exception: catch the specific type")
		}
		if strings.Contains(stripped, "catch") {
			after := stripped[strings.Index(stripped, "catch"):]
			if javaEmptyBlock.MatchString(after + "\n" + window(f, n+1, n+2)) {
				f.Error(n, 1, "JAVA003", "empty catch block: handle or log the exception")
			}
		}
		if strings.Contains(stripped, "System.out.print") || strings.Contains(stripped, "System.err.print") {
			f.Warning(n, 1, "JAVA004", "use a logger instead of System.out/err")
		}
		if hasQuotedSecret(stripped) {
			f.Error(n, 1, "JAVA005", "hardcoded credential")
		}
		if m := javaRawType.FindStringSubmatch(stripped); m != nil && !strings.Contains(stripped, "<") {
			f.Warning(n, 1, "JAVA006", "raw type "+m[1]+": add a type parameter")
		}
		if m := javaPublicField.FindStringSubmatch(stripped); m != nil && !javaFieldModifiers[m[1]] {
			f.Warning(n, 1, "JAVA007", "public field: make it private and add accessors")
		}
		if javaOverridable.MatchString(stripped) && !strings.Contains(f.Line(n-1), "@Override") {
			f.Warning(n, 1, "JAVA008", "missing @Override")
		}
		if scope.in("loop") && strings.Contains(stripped, "=") && javaConcat.MatchString(stripped) {
			f.Warning(n, 1, "JAVA009", "string concatenation in a loop: use StringBuilder")
		}
		if javaResource.MatchString(stripped) && !strings.HasPrefix(stripped, "try") &&
			!strings.HasPrefix(strings.TrimSpace(f.Line(n-1)), "try") {
			f.Warning(n, 1, "JAVA010", "resource opened outside try-with-resources")
		}
		if strings.Contains(stripped, "Thread.sleep") {
			f.Warning(n, 1, "JAVA011", "Thread.sleep: consider a ScheduledExecutorService")
		}
		if javaSyncMethod.MatchString(stripped) {
			f.Info(n, 1, "JAVA012", "synchronized method: consider a synchronized block")
		}
		if strings.Contains(stripped, "new Date()") || strings.Contains(stripped, "java.util.Date") {
			f.Warning(n, 1, "JAVA013", "java.util.Date: use the java.time API")
		}
		if javaSQLCall.MatchString(stripped) && (strings.Contains(stripped, "+") || strings.Contains(stripped, "String.format")) {
			f.Error(n, 1, "JAVA014", "possible SQL injection: use PreparedStatement")
		}
		javaNullDeref(f, n, stripped)

		kind := ""
		if isLoop(stripped) {
			kind = "loop"
		}
		scope.step(stripped, kind)
	}

	return f.Result(), nil
}

// javaNullDeref reports a method call on a variable assigned null in the
// previous three lines.
func javaNullDeref(f *fix.LineFixer, n int, stripped string) {
	for _, m := range javaNullAssign.FindAllStringSubmatch(window(f, n-3, n-1), -1) {
		name := m[1]
		if strings.Contains(stripped, name+" != null") || strings.Contains(stripped, name+" == null") {
			continue
		}
		if regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\.\w+\(`).MatchString(stripped) {
			f.Warning(n, 1, "JAVA015", "possible NullPointerException: "+name+" may be null")
			return
		}
	}
}
