package analyzers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/wronai/pactfix/pkg/fix"
	"github.com/wronai/pactfix/pkg/langdetect"
	"github.com/wronai/pactfix/pkg/lint"
)

//nolint:gochecknoglobals // compiled once
var (
	pyDef          = regexp.MustCompile(`^\s*def\s+\w+\s*\(`)
	pyPrint        = regexp.MustCompile(`^print\s+(["'\w].*)$`)
	pyBareExcept   = regexp.MustCompile(`^except\s*:`)
	pyExceptEOL    = regexp.MustCompile(`^except\s*:\s*$`)
	pyMutableDef   = regexp.MustCompile(`^(\s*def\s+\w+\s*\()([^)]*)(\)\s*(?:->[^:]*)?:.*)$`)
	pyMutableArg   = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s*=\s*(\[\]|\{\})`)
	pyEqNone       = regexp.MustCompile(`==\s*None\b`)
	pyNeNone       = regexp.MustCompile(`!=\s*None\b`)
	pyTypeCompare  = regexp.MustCompile(`\btype\s*\(\s*([^)]+?)\s*\)\s*==\s*(list|dict|tuple|set)\b`)
	pyIsNotLiteral = regexp.MustCompile(`\bis\s+not\s+("[^"]*"|'[^']*'|\d+\b)`)
	pyIsLiteral    = regexp.MustCompile(`\bis\s+("[^"]*"|'[^']*'|\d+\b)`)
	pyImport       = regexp.MustCompile(`^import\s+([\w.]+)(?:\s+as\s+(\w+))?\s*$`)
	pyFromImport   = regexp.MustCompile(`^from\s+([\w.]+)\s+import\s+(\w+)(?:\s+as\s+(\w+))?\s*$`)
)

// Python returns the Python analyzer.
func Python() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.Python, Fn: analyzePython}
}

func analyzePython(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.Python, code)

	for n := 1; n <= f.Len(); n++ {
		pyDocstring(f, n)
		pyPrintCall(f, n)
		pyExcept(f, n)
		pyMutableDefault(f, n)
		pyConditions(f, n)
	}
	pyUnusedImports(f)

	return f.Result(), nil
}

// pyCode splits a line into code and trailing comment.
func pyCode(line string) (code, comment string) {
	return splitComment(line, '#', false)
}

// pyBody returns the first non-blank line after n and its number, or 0.
func pyBody(f *fix.LineFixer, n int) (string, int) {
	for k := n + 1; k <= f.Len(); k++ {
		if !isBlank(f.Line(k)) {
			return f.Line(k), k
		}
	}
	return "", 0
}

func pyBodyIndent(f *fix.LineFixer, n int) string {
	indent := fix.LeadingSpace(f.Line(n))
	if body, k := pyBody(f, n); k > 0 {
		if bi := fix.LeadingSpace(body); len(bi) > len(indent) {
			return bi
		}
	}
	return indent + "    "
}

func pyDocstring(f *fix.LineFixer, n int) {
	line := f.Line(n)
	code, _ := pyCode(line)
	if !pyDef.MatchString(line) || !strings.HasSuffix(strings.TrimSpace(code), ":") {
		return
	}
	body, k := pyBody(f, n)
	if k == 0 {
		return
	}
	trimmed := strings.TrimSpace(body)
	if strings.HasPrefix(trimmed, `"""`) || strings.HasPrefix(trimmed, "'''") {
		return
	}
	f.Warning(n, 1, "PY006", "function has no docstring")
	f.Fix(n, "added docstring template", strings.TrimSpace(line), "").
		InsertBefore(n+1, pyBodyIndent(f, n)+`"""TODO: docstring."""`)
}

func pyPrintCall(f *fix.LineFixer, n int) {
	line := f.Line(n)
	code, comment := pyCode(line)
	stripped := strings.TrimSpace(code)
	if strings.HasPrefix(stripped, "print(") {
		return
	}
	m := pyPrint.FindStringSubmatch(stripped)
	if m == nil {
		return
	}
	f.Error(n, 1, "PY001", "use print() with parentheses (Python 3)")
	fixed := "print(" + strings.TrimRight(m[1], " \t") + ")"
	next := replaceTrimmed(code, fixed)
	if comment != "" {
		next = strings.TrimRight(next, " \t") + "  " + comment
	}
	f.Rewrite(n, next, "added parentheses to print()", stripped, fixed)
}

func pyExcept(f *fix.LineFixer, n int) {
	code, comment := pyCode(f.Line(n))
	stripped := strings.TrimSpace(code)
	if !pyBareExcept.MatchString(stripped) {
		return
	}
	f.Warning(n, 1, "PY002", "avoid bare except: catch specific exceptions")
	if !pyExceptEOL.MatchString(stripped) {
		return
	}
	fixed := "except Exception:"
	next := fix.LeadingSpace(code) + fixed
	if comment != "" {
		next += "  " + comment
	}
	f.Rewrite(n, next, "changed except: to except Exception:", stripped, fixed)
}

func pyMutableDefault(f *fix.LineFixer, n int) {
	line := f.Line(n)
	m := pyMutableDef.FindStringSubmatch(line)
	if m == nil {
		return
	}
	arg := pyMutableArg.FindStringSubmatch(m[2])
	if arg == nil {
		return
	}
	name, literal := arg[1], arg[2]
	f.Warning(n, 1, "PY003", "mutable default argument: use None")

	next := m[1] + strings.Replace(m[2], arg[0], name+"=None", 1) + m[3]
	p := f.Fix(n, fmt.Sprintf("changed mutable default argument %s to None", name),
		strings.TrimSpace(line), strings.TrimSpace(next)).
		Rewrite(n, next)

	guard := regexp.MustCompile(`^\s*if\s+` + regexp.QuoteMeta(name) + `\s+is\s+None\s*:`)
	if n < f.Len() && guard.MatchString(f.Line(n+1)) {
		return
	}
	p.InsertBefore(n+1, fmt.Sprintf("%sif %s is None: %s = %s", pyBodyIndent(f, n), name, name, literal))
}

func pyConditions(f *fix.LineFixer, n int) {
	code, comment := pyCode(f.Line(n))
	if !pyIsCondition(strings.TrimSpace(code)) {
		return
	}

	if pyEqNone.MatchString(code) || pyNeNone.MatchString(code) {
		f.Warning(n, 1, "PY004", `use "is None" instead of "== None"`)
		fixed := pyNeNone.ReplaceAllString(pyEqNone.ReplaceAllString(code, "is None"), "is not None")
		f.Rewrite(n, fixed+comment, "replaced comparison to None with is None / is not None",
			strings.TrimSpace(code), strings.TrimSpace(fixed))
		code = fixed
	}

	if m := pyTypeCompare.FindStringSubmatch(code); m != nil {
		f.Warning(n, 1, "PY007", "consider isinstance() instead of type() == ...")
		after := fmt.Sprintf("isinstance(%s, %s)", m[1], m[2])
		fixed := strings.Replace(code, m[0], after, 1)
		f.Rewrite(n, fixed+comment, "replaced type(x) == T with isinstance(x, T)", m[0], after)
		code = fixed
	}

	if pyIsNotLiteral.MatchString(code) || pyIsLiteral.MatchString(code) {
		f.Warning(n, 1, "PY008", `do not use "is" to compare with literals: use ==`)
		fixed := pyIsLiteral.ReplaceAllString(pyIsNotLiteral.ReplaceAllString(code, "!= $1"), "== $1")
		f.Rewrite(n, fixed+comment, `replaced "is" with == for literals`, strings.TrimSpace(code), strings.TrimSpace(fixed))
	}
}

func pyIsCondition(stmt string) bool {
	for _, kw := range []string{"if ", "elif ", "while ", "assert "} {
		if strings.HasPrefix(stmt, kw) {
			return true
		}
	}
	return false
}

type pyImportLine struct {
	line int
	name string
}

// pyUnusedImports deletes top-level single-name imports whose name never
// appears elsewhere in the code.
func pyUnusedImports(f *fix.LineFixer) {
	var imports []pyImportLine
	importLines := make(map[int]bool)
	for n := 1; n <= f.Len(); n++ {
		code, _ := pyCode(f.Line(n))
		code = strings.TrimRight(code, " \t")
		if m := pyImport.FindStringSubmatch(code); m != nil {
			name := m[2]
			if name == "" {
				name, _, _ = strings.Cut(m[1], ".")
			}
			imports = append(imports, pyImportLine{line: n, name: name})
			importLines[n] = true
		} else if m := pyFromImport.FindStringSubmatch(code); m != nil && m[1] != "__future__" {
			name := m[3]
			if name == "" {
				name = m[2]
			}
			imports = append(imports, pyImportLine{line: n, name: name})
			importLines[n] = true
		}
	}

	for _, imp := range imports {
		used := regexp.MustCompile(`\b` + regexp.QuoteMeta(imp.name) + `\b`)
		found := false
		for n := 1; n <= f.Len() && !found; n++ {
			if importLines[n] {
				continue
			}
			code, _ := pyCode(f.Line(n))
			found = used.MatchString(code)
		}
		if found {
			continue
		}
		before := strings.TrimSpace(f.Line(imp.line))
		f.Warning(imp.line, 1, "PY005", fmt.Sprintf("import %q may be unused", imp.name))
		f.Fix(imp.line, "removed unused import: "+imp.name, before, "").Delete(imp.line)
	}
}
