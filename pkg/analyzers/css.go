package analyzers

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/wronai/pactfix/pkg/fix"
	"github.com/wronai/pactfix/pkg/langdetect"
	"github.com/wronai/pactfix/pkg/lint"
)

// cssMaxZIndex is the largest z-index accepted silently.
const cssMaxZIndex = 100

//nolint:gochecknoglobals // compiled once
var (
	cssIDSelector  = regexp.MustCompile(`^#[\w-]+[^{]*\{`)
	cssHexColor    = regexp.MustCompile(`#[0-9a-fA-F]{3,8}\b`)
	cssZeroUnit    = regexp.MustCompile(`:(\s*)0(px|em|rem|%)([\s;!]|$)`)
	cssUniversal   = regexp.MustCompile(`(^|\s)\*\s*\{`)
	cssEmptyRule   = regexp.MustCompile(`\{\s*\}`)
	cssZIndex      = regexp.MustCompile(`z-index:\s*(\d+)`)
	cssCalc        = regexp.MustCompile(`calc\(([^)]+)\)`)
	cssUnit        = regexp.MustCompile(`\d(px|em|rem|%|vh|vw)`)
	cssOutlineNone = regexp.MustCompile(`outline:\s*(none|0)\b`)
	cssUppercase   = regexp.MustCompile(`text-transform:\s*uppercase`)
)

//nolint:gochecknoglobals // read-only
var (
	cssVendorPrefixes = []string{"-webkit-", "-moz-", "-ms-", "-o-"}
	cssDeprecated     = []string{"clip", "zoom"}
)

// CSS returns the CSS analyzer.
func CSS() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.CSS, Fn: analyzeCSS}
}

// cssDeclaration splits the declaration on a trimmed line into its
// property and value. A declaration may follow an opening brace.
func cssDeclaration(stripped string) (prop, value string, ok bool) {
	if i := strings.LastIndex(stripped, "{"); i >= 0 {
		stripped = stripped[i+1:]
	}
	stripped = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(stripped), "}"))
	prop, value, ok = strings.Cut(stripped, ":")
	prop = strings.TrimSpace(prop)
	if !ok || prop == "" || strings.ContainsAny(prop, " \t}") {
		return "", "", false
	}
	return prop, strings.TrimSpace(value), true
}

func analyzeCSS(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.CSS, code)
	seen := map[string]int{}
	inComment := false

	for n := 1; n <= f.Len(); n++ {
		stripped := strings.TrimSpace(f.Line(n))
		if inComment {
			inComment = !strings.Contains(stripped, "*/")
			continue
		}
		if strings.HasPrefix(stripped, "/*") {
			inComment = !strings.Contains(stripped, "*/")
			continue
		}
		if stripped == "" {
			continue
		}
		if strings.Contains(stripped, "{") {
			clear(seen)
		}

		if strings.Contains(stripped, "!important") {
			f.Warning(n, 1, "CSS001", "!important: increase specificity instead")
		}
		if cssIDSelector.MatchString(stripped) {
			f.Info(n, 1, "CSS002", "ID selector: use a class for reuse")
		}
		if cssUniversal.MatchString(stripped) {
			f.Info(n, 1, "CSS007", "universal selector can be slow")
		}
		if cssEmptyRule.MatchString(stripped) {
			f.Warning(n, 1, "CSS008", "empty rule")
		}

		if prop, value, ok := cssDeclaration(stripped); ok {
			cssDeclarationRules(f, n, prop, value)
			if first, dup := seen[prop]; dup && first != n {
				f.Warning(n, 1, "CSS009", "duplicate property: "+prop)
			} else {
				seen[prop] = n
			}
		}

		if strings.Contains(stripped, "}") {
			clear(seen)
		}
	}

	return f.Result(), nil
}

func cssDeclarationRules(f *fix.LineFixer, n int, prop, value string) {
	for _, prefix := range cssVendorPrefixes {
		if standard, ok := strings.CutPrefix(prop, prefix); ok && !cssHasProperty(f, n, standard) {
			f.Warning(n, 1, "CSS003", "vendor prefix without the standard property: "+standard)
		}
	}
	if cssHexColor.MatchString(value) {
		f.Info(n, 1, "CSS004", "hardcoded color: consider a CSS variable")
	}
	if prop == "font-size" && strings.Contains(value, "px") {
		f.Info(n, 1, "CSS005", "font-size in px: consider rem or em")
	}
	if line := f.Line(n); cssZeroUnit.MatchString(line) {
		f.Warning(n, 1, "CSS006", "unit on a zero value is unnecessary")
		fixed := cssZeroUnit.ReplaceAllString(line, ":${1}0$3")
		f.Rewrite(n, fixed, "removed the unit from 0", strings.TrimSpace(line), strings.TrimSpace(fixed))
	}
	if prop == "float" {
		f.Info(n, 1, "CSS010", "float: consider Flexbox or Grid")
	}
	if cssOutlineNone.MatchString(prop + ": " + value) {
		f.Warning(n, 1, "CSS011", "outline: none removes the focus indicator: provide an alternative")
	}
	if m := cssZIndex.FindStringSubmatch(prop + ": " + value); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil && v > cssMaxZIndex {
			f.Info(n, 1, "CSS012", "high z-index: "+m[1])
		}
	}
	if m := cssCalc.FindStringSubmatch(value); m != nil {
		units := map[string]bool{}
		for _, u := range cssUnit.FindAllStringSubmatch(m[1], -1) {
			units[u[1]] = true
		}
		if len(units) > 2 {
			f.Info(n, 1, "CSS013", "calc() mixes many units")
		}
	}
	for _, old := range cssDeprecated {
		if prop == old {
			f.Warning(n, 1, "CSS014", "deprecated property: "+old)
		}
	}
	if cssUppercase.MatchString(prop + ": " + value) {
		f.Info(n, 1, "CSS015", "text-transform: uppercase can break some locales")
	}
}

// cssHasProperty reports whether prop is declared within three lines of n.
func cssHasProperty(f *fix.LineFixer, n int, prop string) bool {
	for i := max(n-3, 1); i <= min(n+3, f.Len()); i++ {
		if p, _, ok := cssDeclaration(strings.TrimSpace(f.Line(i))); ok && p == prop {
			return true
		}
	}
	return false
}
