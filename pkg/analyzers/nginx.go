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
	nginxServerOpen = regexp.MustCompile(`^server\s*\{$`)
	nginxDotfiles   = regexp.MustCompile(`^location\s+~\s*/\\\.\s*\{$`)
	nginxListen443  = regexp.MustCompile(`^listen\s+(?:\S+:)?443\b`)
	nginxListen80   = regexp.MustCompile(`^listen\s+(?:\S+:)?80\b`)
	nginxWeakProto  = regexp.MustCompile(`\s(SSLv2|SSLv3|TLSv1|TLSv1\.1)(?:\s|;|$)`)
)

//nolint:gochecknoglobals // read-only
var nginxSecurityHeaders = []string{
	`add_header X-Frame-Options "SAMEORIGIN" always;`,
	`add_header X-Content-Type-Options "nosniff" always;`,
	`add_header Referrer-Policy "strict-origin-when-cross-origin" always;`,
	`add_header Strict-Transport-Security "max-age=31536000; includeSubDomains" always;`,
}

// Nginx returns the nginx configuration analyzer.
func Nginx() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.Nginx, Fn: analyzeNginx}
}

// nginxBlock is a brace-delimited block, by 1-based line of its opening and
// closing brace.
type nginxBlock struct {
	open, close int
}

func nginxDirective(line string) string {
	code, _ := splitComment(line, '#', true)
	return strings.TrimSpace(code)
}

func analyzeNginx(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.Nginx, code)

	for n := 1; n <= f.Len(); n++ {
		nginxDirectives(f, n)
	}

	servers := nginxBlocks(f, nginxServerOpen)
	anySSL := false
	for n := 1; n <= f.Len(); n++ {
		d := nginxDirective(f.Line(n))
		if nginxListen443.MatchString(d) || strings.HasPrefix(d, "ssl_certificate") {
			anySSL = true
			break
		}
	}

	for _, b := range servers {
		nginxServer(f, b, anySSL)
	}
	f.SetContext("server_blocks", len(servers))
	return f.Result(), nil
}

func nginxDirectives(f *fix.LineFixer, n int) {
	line := f.Line(n)
	d := nginxDirective(line)
	switch {
	case strings.HasPrefix(d, "server_tokens") && strings.Contains(d, " on"):
		f.Warning(n, 1, "NGINX001", "server_tokens on reveals the nginx version")
		fixed := strings.Replace(line, "server_tokens on", "server_tokens off", 1)
		f.Rewrite(n, fixed, "turned server_tokens off", d, nginxDirective(fixed))
	case strings.HasPrefix(d, "autoindex") && strings.Contains(d, " on"):
		f.Warning(n, 1, "NGINX002", "autoindex on exposes the directory structure")
		fixed := strings.Replace(line, "autoindex on", "autoindex off", 1)
		f.Rewrite(n, fixed, "turned autoindex off", d, nginxDirective(fixed))
	case strings.HasPrefix(d, "ssl_protocols") && nginxWeakProto.MatchString(d):
		f.Error(n, 1, "NGINX003", "weak SSL/TLS protocols enabled")
		after := "ssl_protocols TLSv1.2 TLSv1.3;"
		f.Rewrite(n, fix.LeadingSpace(line)+after, "restricted ssl_protocols to TLSv1.2 and TLSv1.3", d, after)
	case strings.HasPrefix(d, "ssl_ciphers"):
		upper := strings.ToUpper(d)
		if !strings.Contains(upper, "RC4") && !strings.Contains(upper, "MD5") && !strings.Contains(upper, "DES") {
			return
		}
		if strings.Contains(upper, "!RC4") && strings.Contains(upper, "!MD5") && strings.Contains(upper, "!3DES") {
			return
		}
		f.Error(n, 1, "NGINX004", "weak ciphers in ssl_ciphers")
		after := "ssl_ciphers 'HIGH:!aNULL:!MD5:!3DES:!RC4';"
		f.Rewrite(n, fix.LeadingSpace(line)+after, "set strong ssl_ciphers", d, after)
	}
}

// nginxBlocks returns the blocks opened by lines matching open.
func nginxBlocks(f *fix.LineFixer, open *regexp.Regexp) []nginxBlock {
	var out []nginxBlock
	depth := 0
	var stack []struct{ line, depth int }
	for n := 1; n <= f.Len(); n++ {
		d := nginxDirective(f.Line(n))
		if open.MatchString(d) {
			stack = append(stack, struct{ line, depth int }{n, depth})
		}
		depth += strings.Count(d, "{") - strings.Count(d, "}")
		for len(stack) > 0 && depth <= stack[len(stack)-1].depth {
			if top := stack[len(stack)-1]; top.line < n {
				out = append(out, nginxBlock{open: top.line, close: n})
			}
			stack = stack[:len(stack)-1]
		}
	}
	return out
}

// nginxServer checks one server block. Hardening directives go right after
// server_name, otherwise right after the opening brace.
func nginxServer(f *fix.LineFixer, b nginxBlock, anySSL bool) {
	var hasSSL, hasHTTP, hasHeaders, hasRedirect, hasTickets, hasPrefer bool
	insertAt := b.open + 1
	indent := fix.LeadingSpace(f.Line(b.open)) + "    "
	for n := b.open + 1; n < b.close; n++ {
		d := nginxDirective(f.Line(n))
		switch {
		case nginxListen443.MatchString(d), strings.HasPrefix(d, "listen") && strings.Contains(d, " ssl"):
			hasSSL = true
		case nginxListen80.MatchString(d):
			hasHTTP = true
		case strings.HasPrefix(d, "add_header"):
			hasHeaders = true
		case strings.HasPrefix(d, "return 301 https://"):
			hasRedirect = true
		case strings.HasPrefix(d, "ssl_session_tickets"):
			hasTickets = true
		case strings.HasPrefix(d, "ssl_prefer_server_ciphers"):
			hasPrefer = true
		case strings.HasPrefix(d, "server_name") && insertAt == b.open+1:
			insertAt = n + 1
			indent = fix.LeadingSpace(f.Line(n))
		}
	}

	if hasHTTP && !hasSSL && anySSL && !hasRedirect {
		f.Warning(b.open, 1, "NGINX007", "no HTTP to HTTPS redirect")
		f.Fix(b.open, "added HTTPS redirect", "", "return 301 https://$host$request_uri;").
			InsertBefore(insertAt, indent+"return 301 https://$host$request_uri;")
	}
	if !hasSSL {
		nginxDotfileDeny(f, b)
		return
	}

	if !hasHeaders {
		f.Warning(b.open, 1, "NGINX005", "no security headers")
		lines := make([]string, len(nginxSecurityHeaders))
		for i, h := range nginxSecurityHeaders {
			lines[i] = indent + h
		}
		f.Fix(b.open, "added security headers", "", nginxSecurityHeaders[0]).
			InsertBefore(insertAt, strings.Join(lines, "\n"))
	}
	if !hasTickets {
		f.Warning(b.open, 1, "NGINX008", "ssl_session_tickets is not turned off")
		f.Fix(b.open, "turned ssl_session_tickets off", "", "ssl_session_tickets off;").
			InsertBefore(insertAt, indent+"ssl_session_tickets off;")
	}
	if !hasPrefer {
		f.Warning(b.open, 1, "NGINX009", "ssl_prefer_server_ciphers is not turned on")
		f.Fix(b.open, "turned ssl_prefer_server_ciphers on", "", "ssl_prefer_server_ciphers on;").
			InsertBefore(insertAt, indent+"ssl_prefer_server_ciphers on;")
	}
	nginxDotfileDeny(f, b)
}

// nginxDotfileDeny makes a dotfile location inside b deny all requests.
func nginxDotfileDeny(f *fix.LineFixer, b nginxBlock) {
	for _, loc := range nginxBlocks(f, nginxDotfiles) {
		if loc.open <= b.open || loc.close >= b.close {
			continue
		}
		denied := false
		for n := loc.open + 1; n < loc.close; n++ {
			if nginxDirective(f.Line(n)) == "deny all;" {
				denied = true
			}
		}
		if denied {
			continue
		}
		indent := fix.LeadingSpace(f.Line(loc.open)) + "    "
		f.Warning(loc.open, 1, "NGINX006", "dotfile location does not deny access")
		f.Fix(loc.open, "added deny all to the dotfile location", "", "deny all;").
			InsertBefore(loc.open+1, indent+"deny all;")
	}
}
