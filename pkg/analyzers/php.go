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
	phpSuperglobal = regexp.MustCompile(`\$_(GET|POST|REQUEST|COOKIE)\[`)
	phpMySQL       = regexp.MustCompile(`\bmysql_(connect|query|fetch\w*)\s*\(`)
	phpLooseNull   = regexp.MustCompile(`(?i)[^=!]==\s*(null|false)\b|\b(null|false)\s*==[^=]`)
	phpShortTag    = regexp.MustCompile(`^<\?(\s|$)`)
)

// PHP returns the PHP analyzer.
func PHP() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.PHP, Fn: analyzePHP}
}

func analyzePHP(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.PHP, code)

	for n := 1; n <= f.Len(); n++ {
		body, _ := splitLineComment(f.Line(n))
		stripped := strings.TrimSpace(body)
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			continue
		}

		if phpSuperglobal.MatchString(stripped) &&
			!strings.Contains(stripped, "htmlspecialchars") && !strings.Contains(stripped, "filter_") {
			f.Warning(n, 1, "PHP001", "unvalidated request input: use filter_input or htmlspecialchars")
		}
		if phpLooseNull.MatchString(stripped) {
			f.Warning(n, 1, "PHP002", "use === instead of == when comparing with null or false")
		}
		if phpMySQL.MatchString(stripped) {
			f.Error(n, 1, "PHP003", "mysql_* functions were removed: use PDO or mysqli")
		}
		if strings.Contains(stripped, "extract(") {
			f.Error(n, 1, "PHP004", "extract() is dangerous: assign variables explicitly")
		}
		if strings.HasPrefix(stripped, "@") {
			f.Warning(n, 1, "PHP005", "the @ operator suppresses errors: handle them instead")
		}
		if strings.Contains(stripped, "<?=") || phpShortTag.MatchString(stripped) {
			f.Warning(n, 1, "PHP006", "short open tag: use <?php")
		}
		if phpShortTag.MatchString(stripped) {
			line := f.Line(n)
			fixed := strings.Replace(line, "<?", "<?php", 1)
			f.Rewrite(n, fixed, "replaced the short open tag with <?php", strings.TrimSpace(line), strings.TrimSpace(fixed))
		}
	}

	return f.Result(), nil
}
