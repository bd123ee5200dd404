package analyzers

import (
	"context"
	"regexp"
	"slices"
	"strings"

	"github.com/wronai/pactfix/pkg/fix"
	"github.com/wronai/pactfix/pkg/langdetect"
	"github.com/wronai/pactfix/pkg/lint"
)

//nolint:gochecknoglobals // compiled once
var (
	makeTargetLine   = regexp.MustCompile(`^([A-Za-z0-9_.%/-]+(?:\s+[A-Za-z0-9_.%/-]+)*)\s*::?(?:[^=]|$)`)
	makeHardcoded    = regexp.MustCompile(`/usr/local/|/home/\w+|C:\\`)
	makeShellSimple  = regexp.MustCompile(`\$\(shell\s+(echo|cat|pwd)\s`)
	makeRecursive    = regexp.MustCompile(`^(\t[@+-]*)make(\s|$)`)
	makeRm           = regexp.MustCompile(`\brm\s`)
	makeRmForce      = regexp.MustCompile(`\brm\s+(?:-\w*f|--force)`)
	makePhonyTargets = []string{"all", "build", "check", "clean", "help", "install", "lint", "test"}
)

// Makefile returns the Makefile analyzer.
func Makefile() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.Makefile, Fn: analyzeMakefile}
}

func analyzeMakefile(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.Makefile, code)
	targets := make(map[string]int)
	phony := make(map[string]bool)
	phonyLine, firstTarget := 0, 0
	inRule := false

	for n := 1; n <= f.Len(); n++ {
		line := f.Line(n)
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			inRule = false
			continue
		}
		if strings.HasPrefix(stripped, "#") {
			continue
		}

		recipe := strings.HasPrefix(line, "\t")
		if !recipe && inRule && strings.HasPrefix(line, " ") && !strings.Contains(stripped, "=") {
			f.Error(n, 1, "MAKE001", "recipe lines must start with a tab, not spaces")
			f.Rewrite(n, "\t"+stripped, "replaced leading spaces with a tab", line, "\t"+stripped)
			line, recipe = f.Line(n), true
		}

		if !recipe {
			inRule = false
			if rest, ok := strings.CutPrefix(stripped, ".PHONY:"); ok {
				for _, t := range strings.Fields(rest) {
					phony[t] = true
				}
				phonyLine = n
				continue
			}
			if m := makeTargetLine.FindStringSubmatch(stripped); m != nil && !strings.HasPrefix(stripped, ".") {
				for _, t := range strings.Fields(m[1]) {
					if _, seen := targets[t]; !seen {
						targets[t] = n
					}
				}
				if firstTarget == 0 {
					firstTarget = n
				}
				inRule = true
			}
			if strings.Contains(stripped, "::") && !strings.Contains(stripped, "::=") {
				f.Warning(n, 1, "MAKE014", "double-colon rule (::): make sure this is intended")
			}
			if strings.Contains(stripped, "$(wildcard") && strings.Contains(stripped, ":") && !strings.Contains(stripped, "=") {
				f.Warning(n, 1, "MAKE013", "$(wildcard) in prerequisites can be unpredictable")
			}
		}

		if makeHardcoded.MatchString(stripped) {
			f.Warning(n, 1, "MAKE004", "hardcoded path: use a variable")
		}
		if makeShellSimple.MatchString(stripped) {
			f.Warning(n, 1, "MAKE006", "$(shell echo/cat/pwd): consider a simpler built-in")
		}
		if !recipe {
			continue
		}

		if strings.Contains(stripped, "cd ") && !strings.Contains(stripped, "&&") {
			f.Warning(n, 1, "MAKE005", "cd without && continues after a failure")
		}
		if m := makeRecursive.FindStringSubmatchIndex(line); m != nil {
			fixed := line[:m[3]] + "$(MAKE)" + line[m[3]+len("make"):]
			f.Warning(n, 1, "MAKE007", "use $(MAKE) instead of make for recursive calls")
			f.Rewrite(n, fixed, "replaced make with $(MAKE)", line, fixed)
		}
		if makeRm.MatchString(stripped) && !makeRmForce.MatchString(stripped) {
			f.Warning(n, 1, "MAKE011", "rm without -f fails on missing files")
		}
	}

	var missing []string
	for _, t := range makePhonyTargets {
		if _, ok := targets[t]; ok && !phony[t] {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		f.Warning(1, 1, "MAKE003", ".PHONY is missing for: "+strings.Join(missing, ", "))
		makeAddPhony(f, missing, phonyLine, firstTarget)
	}

	if _, ok := targets["clean"]; !ok {
		f.Warning(1, 1, "MAKE012", "no clean target")
	}

	names := make([]string, 0, len(targets))
	for t := range targets {
		names = append(names, t)
	}
	slices.Sort(names)
	f.SetContext("targets", names)
	return f.Result(), nil
}

// makeAddPhony extends the existing .PHONY line, or declares one before the
// first rule.
func makeAddPhony(f *fix.LineFixer, missing []string, phonyLine, firstTarget int) {
	list := strings.Join(missing, " ")
	if phonyLine > 0 {
		line := f.Line(phonyLine)
		fixed := strings.TrimRight(line, " \t") + " " + list
		f.Rewrite(phonyLine, fixed, "declared missing .PHONY targets", line, fixed)
		return
	}
	if firstTarget == 0 {
		return
	}
	decl := ".PHONY: " + list
	f.Fix(firstTarget, "declared missing .PHONY targets", "", decl).InsertBefore(firstTarget, decl)
}
