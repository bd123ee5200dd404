package analyzers

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/wronai/pactfix/pkg/fix"
	"github.com/wronai/pactfix/pkg/langdetect"
	"github.com/wronai/pactfix/pkg/lint"
)

//nolint:gochecknoglobals // compiled once
var tomlSpacedKey = regexp.MustCompile(`^\s*[A-Za-z0-9_.-]+\s+[A-Za-z0-9_.-]+\s*=`)

// TOML returns the TOML analyzer.
func TOML() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.TOML, Fn: analyzeTOML}
}

func analyzeTOML(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.TOML, code)
	ws := hygiene{tabs: "TOML002", trailing: "TOML003"}

	for n := 1; n <= f.Len(); n++ {
		ws.apply(f, n)
		if tomlSpacedKey.MatchString(f.Line(n)) {
			f.Warning(n, 1, "TOML004", "bare key contains spaces before =: quote it or use a dotted key")
		}
	}

	var doc map[string]any
	if _, err := toml.Decode(fixedText(f), &doc); err != nil {
		line, msg := 1, err.Error()
		var perr toml.ParseError
		if errors.As(err, &perr) {
			line = max(perr.Position.Line, 1)
			msg = perr.Message
		}
		f.Error(min(line, f.Len()), 1, "TOML001", "invalid TOML: "+strings.TrimPrefix(msg, "toml: "))
	}

	return f.Result(), nil
}
