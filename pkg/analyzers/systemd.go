package analyzers

import (
	"context"
	"strings"

	"github.com/wronai/pactfix/pkg/fix"
	"github.com/wronai/pactfix/pkg/langdetect"
	"github.com/wronai/pactfix/pkg/lint"
)

//nolint:gochecknoglobals // read-only
var systemdTypes = map[string]bool{
	"simple": true, "exec": true, "forking": true, "oneshot": true,
	"dbus": true, "notify": true, "notify-reload": true, "idle": true,
}

// Systemd returns the systemd unit file analyzer.
func Systemd() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.Systemd, Fn: analyzeSystemd}
}

type unitDirective struct {
	line           int
	section, key   string
	value, rawLine string
}

func systemdDirectives(f *fix.LineFixer) []unitDirective {
	var out []unitDirective
	section := ""
	for n := 1; n <= f.Len(); n++ {
		line := f.Line(n)
		stripped := strings.TrimSpace(line)
		switch {
		case stripped == "", strings.HasPrefix(stripped, "#"), strings.HasPrefix(stripped, ";"):
			continue
		case strings.HasPrefix(stripped, "[") && strings.HasSuffix(stripped, "]"):
			section = stripped[1 : len(stripped)-1]
			continue
		}
		key, value, ok := strings.Cut(stripped, "=")
		if !ok {
			continue
		}
		out = append(out, unitDirective{
			line:    n,
			section: section,
			key:     strings.TrimSpace(key),
			value:   strings.TrimSpace(value),
			rawLine: line,
		})
	}
	return out
}

func analyzeSystemd(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.Systemd, code)
	directives := systemdDirectives(f)

	hasDescription, hasRestart, hasUser := false, false, false
	restartSec := false
	for _, d := range directives {
		if d.key == "RestartSec" {
			restartSec = true
		}
	}

	for _, d := range directives {
		switch d.key {
		case "Description":
			hasDescription = true
			if len(d.value) < 3 {
				f.Warning(d.line, 1, "SYSTEMD001", "unit description is too short")
			}
		case "Restart":
			hasRestart = true
			switch d.value {
			case "no":
				f.Warning(d.line, 1, "SYSTEMD003", "Restart=no: the service will not be restarted")
			case "always":
				if !restartSec {
					f.Warning(d.line, 1, "SYSTEMD009", "Restart=always without RestartSec")
					indent := fix.LeadingSpace(d.rawLine)
					f.Fix(d.line, "added RestartSec", "", indent+"RestartSec=5").
						InsertBefore(d.line+1, indent+"RestartSec=5")
				}
			}
		case "User":
			hasUser = true
			if d.value == "root" {
				f.Warning(d.line, 1, "SYSTEMD004", "service runs as root: consider a dedicated user")
			}
		case "Type":
			if d.section == "Service" && !systemdTypes[d.value] {
				f.Error(d.line, 1, "SYSTEMD006", "invalid Type: "+d.value)
			}
		case "ExecStart", "ExecStartPre", "ExecStartPost", "ExecStop", "ExecReload":
			cmd := strings.TrimLeft(d.value, "-@:+!")
			if cmd != "" && !strings.HasPrefix(cmd, "/") && !strings.HasPrefix(cmd, "$") {
				f.Error(d.line, 1, "SYSTEMD007", d.key+" must use an absolute path")
			}
		case "Environment":
			if hasSecret(d.value) && !strings.Contains(d.value, "${") {
				f.Error(d.line, 1, "SYSTEMD008", "hardcoded secret in Environment: use EnvironmentFile or credentials")
			}
		case "PrivateTmp":
			if strings.EqualFold(d.value, "false") {
				f.Warning(d.line, 1, "SYSTEMD010", "PrivateTmp=false: consider true")
			}
		case "ProtectSystem":
			if d.value != "full" && d.value != "strict" && d.value != "true" {
				f.Warning(d.line, 1, "SYSTEMD011", "ProtectSystem: consider strict or full")
			}
		case "NoNewPrivileges":
			if strings.EqualFold(d.value, "false") {
				f.Warning(d.line, 1, "SYSTEMD012", "NoNewPrivileges=false: consider true")
			}
		case "KillMode":
			if d.value == "none" {
				f.Warning(d.line, 1, "SYSTEMD015", "KillMode=none: processes may be left running")
			}
		}

		if strings.HasPrefix(d.key, "Timeout") && strings.EqualFold(d.value, "infinity") {
			f.Warning(d.line, 1, "SYSTEMD013", d.key+"=infinity can block the system")
		}
	}

	if !hasDescription {
		f.Warning(1, 1, "SYSTEMD001", "missing Description in [Unit]")
	}
	if !hasRestart {
		f.Warning(1, 1, "SYSTEMD003", "no Restart policy")
	}
	if !hasUser {
		f.Warning(1, 1, "SYSTEMD004", "no User=: the service will run as root")
	}

	return f.Result(), nil
}
