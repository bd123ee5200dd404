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
	iniSection = regexp.MustCompile(`^\[[^\]]+\]$`)
	iniOption  = regexp.MustCompile(`^[^=:\s][^=:]*[=:]`)
)

// INI returns the INI/CFG analyzer.
func INI() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.INI, Fn: analyzeINI}
}

func analyzeINI(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.INI, code)
	ws := hygiene{tabs: "INI002", trailing: "INI003"}

	for n := 1; n <= f.Len(); n++ {
		ws.apply(f, n)
	}

	seenSection, inOption := false, false
	for n := 1; n <= f.Len(); n++ {
		line := f.Line(n)
		stripped := strings.TrimSpace(line)
		switch {
		case stripped == "":
			inOption = false
			continue
		case strings.HasPrefix(stripped, ";"), strings.HasPrefix(stripped, "#"):
			continue
		case iniSection.MatchString(stripped):
			seenSection, inOption = true, false
			continue
		case inOption && fix.LeadingSpace(line) != "":
			// Continuation of the previous value.
			continue
		}

		if !seenSection {
			f.Error(1, 1, "INI001", "missing section header at the start of the file: added [DEFAULT]")
			f.Fix(1, "added [DEFAULT] at the start of the file", "", "[DEFAULT]").InsertBefore(1, "[DEFAULT]")
			seenSection = true
		}

		if !iniOption.MatchString(stripped) {
			f.Error(n, 1, "INI004", "malformed line: expected key = value")
			inOption = false
			continue
		}
		inOption = true
	}

	return f.Result(), nil
}
