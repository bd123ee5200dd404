package analyzers

import (
	"context"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/wronai/pactfix/pkg/fix"
	"github.com/wronai/pactfix/pkg/langdetect"
	"github.com/wronai/pactfix/pkg/lint"
)

//nolint:gochecknoglobals // compiled once
var (
	sqlCreateTable = regexp.MustCompile(`CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?[` + "`" + `"\[]?(\w+)`)
	sqlReference   = regexp.MustCompile(`(?:FROM|JOIN|INTO|UPDATE)\s+[` + "`" + `"\[]?(\w+)`)
	sqlSelectStar  = regexp.MustCompile(`\bSELECT\s+\*`)
	sqlDrop        = regexp.MustCompile(`(?i)\bDROP\s+(TABLE|VIEW|INDEX|DATABASE|SCHEMA|SEQUENCE|TRIGGER|FUNCTION|PROCEDURE)\s+`)
	sqlPassword    = regexp.MustCompile(`PASSWORD\s*[=:]?\s*['"][^'"]+['"]`)
)

//nolint:gochecknoglobals // read-only
var sqlBuiltinTables = map[string]bool{"dual": true, "information_schema": true}

// SQL returns the SQL analyzer.
func SQL() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.SQL, Fn: analyzeSQL}
}

func analyzeSQL(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.SQL, code)
	created := make(map[string]bool)
	referenced := make(map[string]bool)

	for n := 1; n <= f.Len(); n++ {
		line := f.Line(n)
		body, _, _ := strings.Cut(line, "--")
		stripped := strings.TrimSpace(body)
		upper := strings.ToUpper(stripped)
		if stripped == "" {
			continue
		}

		for _, m := range sqlCreateTable.FindAllStringSubmatch(upper, -1) {
			created[strings.ToLower(m[1])] = true
		}
		for _, m := range sqlReference.FindAllStringSubmatch(upper, -1) {
			referenced[strings.ToLower(m[1])] = true
		}

		if sqlSelectStar.MatchString(upper) {
			f.Warning(n, 1, "SQL001", "SELECT *: list the columns you need")
		}

		if (strings.Contains(upper, "UPDATE ") || strings.Contains(upper, "DELETE FROM")) &&
			!strings.Contains(upper, "WHERE") && (strings.Contains(stripped, ";") || n == f.Len()) {
			f.Error(n, 1, "SQL003", "UPDATE/DELETE without WHERE")
		}

		if m := sqlDrop.FindStringSubmatchIndex(line); m != nil && !strings.Contains(upper, "IF EXISTS") {
			f.Warning(n, 1, "SQL004", "DROP without IF EXISTS")
			fixed := line[:m[1]] + "IF EXISTS " + line[m[1]:]
			f.Rewrite(n, fixed, "added IF EXISTS", stripped, strings.TrimSpace(fixed))
		}

		if strings.Contains(upper, "CREATE TABLE") && !strings.Contains(upper, "IF NOT EXISTS") {
			f.Warning(n, 1, "SQL005", "CREATE TABLE without IF NOT EXISTS")
		}

		if strings.Contains(upper, "GRANT ALL") {
			f.Warning(n, 1, "SQL007", "GRANT ALL: grant only the privileges required")
		}

		if sqlPassword.MatchString(upper) {
			f.Error(n, 1, "SQL008", "plaintext password")
		}
	}

	var missing []string
	for t := range referenced {
		if !created[t] && !sqlBuiltinTables[t] {
			missing = append(missing, t)
		}
	}
	slices.Sort(missing)

	f.SetContext("tables_created", nonNil(slices.Sorted(maps.Keys(created))))
	f.SetContext("tables_referenced", nonNil(slices.Sorted(maps.Keys(referenced))))
	f.SetContext("potentially_missing", nonNil(missing))
	return f.Result(), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
