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

// apacheMaxTimeout is the largest Timeout, in seconds, accepted silently.
const apacheMaxTimeout = 300

//nolint:gochecknoglobals // compiled once
var (
	apacheWeakProto = regexp.MustCompile(`(?i)(^|\s)[+]?(SSLv2|SSLv3|TLSv1|TLSv1\.1)(\s|$)`)
	apacheNumber    = regexp.MustCompile(`\d+`)
)

//nolint:gochecknoglobals // read-only
var apacheWeakCiphers = []string{"RC4", "MD5", "DES", "EXPORT", "NULL"}

// Apache returns the Apache httpd configuration analyzer.
func Apache() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.Apache, Fn: analyzeApache}
}

// apacheDirective splits a directive line into its lower-cased name and
// its arguments.
func apacheDirective(stripped string) (name, args string) {
	name, args, _ = strings.Cut(stripped, " ")
	return strings.ToLower(name), strings.TrimSpace(args)
}

func analyzeApache(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.Apache, code)
	var hasTokens, hasSSL, hasHeaders bool

	for n := 1; n <= f.Len(); n++ {
		line := f.Line(n)
		stripped := strings.TrimSpace(line)
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			continue
		}
		name, args := apacheDirective(stripped)
		indent := fix.LeadingSpace(line)

		switch name {
		case "servertokens":
			hasTokens = true
			if !strings.EqualFold(args, "Prod") && !strings.EqualFold(args, "ProductOnly") {
				f.Warning(n, 1, "APACHE001", "ServerTokens should be Prod")
				f.Rewrite(n, indent+"ServerTokens Prod", "set ServerTokens to Prod", stripped, "ServerTokens Prod")
			}
		case "serversignature":
			if !strings.EqualFold(args, "Off") {
				f.Warning(n, 1, "APACHE002", "ServerSignature should be Off")
				f.Rewrite(n, indent+"ServerSignature Off", "set ServerSignature to Off", stripped, "ServerSignature Off")
			}
		case "traceenable":
			if !strings.EqualFold(args, "Off") {
				f.Error(n, 1, "APACHE003", "TraceEnable should be Off")
				f.Rewrite(n, indent+"TraceEnable Off", "set TraceEnable to Off", stripped, "TraceEnable Off")
			}
		case "options":
			if strings.Contains(args, "+Indexes") || strings.Contains(" "+args+" ", " Indexes ") {
				f.Warning(n, 1, "APACHE004", "directory listing is enabled")
				fixed := strings.Replace(line, "+Indexes", "-Indexes", 1)
				if fixed == line {
					fixed = strings.Replace(line, " Indexes", " -Indexes", 1)
				}
				f.Rewrite(n, fixed, "disabled directory listing", stripped, strings.TrimSpace(fixed))
			}
		case "allowoverride":
			if strings.EqualFold(args, "All") {
				f.Warning(n, 1, "APACHE005", "AllowOverride All is too permissive")
			}
		case "sslengine":
			if strings.EqualFold(args, "on") {
				hasSSL = true
			}
		case "sslprotocol":
			if apacheWeakProto.MatchString(args) {
				f.Error(n, 1, "APACHE007", "weak SSL/TLS protocols: allow TLSv1.2 and later only")
				after := "SSLProtocol -all +TLSv1.2 +TLSv1.3"
				f.Rewrite(n, indent+after, "restricted SSLProtocol to TLSv1.2 and TLSv1.3", stripped, after)
			}
		case "sslciphersuite":
			upper := strings.ToUpper(args)
			for _, weak := range apacheWeakCiphers {
				if strings.Contains(upper, weak) && !strings.Contains(upper, "!"+weak) {
					f.Error(n, 1, "APACHE008", "weak cipher: "+weak)
				}
			}
		case "header":
			hasHeaders = true
			if strings.Contains(args, "X-Powered-By") && !strings.HasPrefix(strings.ToLower(args), "unset") &&
				!strings.HasPrefix(strings.ToLower(args), "always unset") {
				f.Warning(n, 1, "APACHE013", "X-Powered-By reveals the server technology")
			}
		case "documentroot":
			path := strings.Trim(args, `"`)
			if path != "" && !strings.HasPrefix(path, "/var/www") && !strings.HasPrefix(path, "/srv") {
				f.Info(n, 1, "APACHE010", "DocumentRoot outside /var/www or /srv")
			}
		case "timeout":
			if v, err := strconv.Atoi(apacheNumber.FindString(args)); err == nil && v > apacheMaxTimeout {
				f.Warning(n, 1, "APACHE011", "Timeout above 300s ties up workers")
			}
		case "keepalive":
			if strings.EqualFold(args, "Off") {
				f.Info(n, 1, "APACHE012", "KeepAlive Off: consider turning it on")
			}
		case "<directory":
			if !apacheHasRequire(f, n) {
				f.Warning(n, 1, "APACHE014", "Directory block without a Require directive")
			}
		}
	}

	if !hasTokens {
		f.Warning(1, 1, "APACHE001", "ServerTokens is not set: the default reveals the version")
	}
	if hasSSL && !hasHeaders {
		f.Warning(1, 1, "APACHE009", "SSL is enabled but no security headers are set")
	}
	return f.Result(), nil
}

// apacheHasRequire reports whether the <Directory> block opened on line n
// contains a Require directive.
func apacheHasRequire(f *fix.LineFixer, n int) bool {
	for i := n + 1; i <= f.Len(); i++ {
		name, _ := apacheDirective(strings.TrimSpace(f.Line(i)))
		switch name {
		case "require":
			return true
		case "</directory>":
			return false
		}
	}
	return false
}
