package analyzers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wronai/pactfix/pkg/annotate"
)

func TestHTML(t *testing.T) {
	t.Parallel()

	runCases(t, "html", []analyzerCase{
		{name: "img without alt", code: `<img src="a.png">`, want: []string{"HTML006"}, fixed: `<img alt="" src="a.png">`},
		{name: "img with alt", code: `<img src="a.png" alt="Logo">`, absent: []string{"HTML006"}},
		{
			name:  "blank target",
			code:  `<a href="https://x.io" target="_blank">x</a>`,
			want:  []string{"HTML012"},
			fixed: `<a href="https://x.io" target="_blank" rel="noopener noreferrer">x</a>`,
		},
		{name: "blank target with rel", code: `<a href="https://x.io" target="_blank" rel="noopener">x</a>`, absent: []string{"HTML012"}},
		{name: "inline style", code: `<p style="color: red">x</p>`, want: []string{"HTML007"}},
		{name: "inline handler", code: `<button onclick="go()">Go</button>`, want: []string{"HTML008"}},
		{name: "deprecated tag", code: "<center>x</center>", want: []string{"HTML009"}},
		{name: "form without action", code: `<form method="post">`, want: []string{"HTML010"}},
		{name: "unlabeled input", code: `<input type="text" name="q">`, want: []string{"HTML011"}},
		{name: "labeled input", code: `<input type="text" id="q">`, absent: []string{"HTML011"}},
		{name: "plain http link", code: `<a href="http://example.com">x</a>`, want: []string{"HTML013"}},
		{name: "localhost link", code: `<a href="http://localhost:8080">x</a>`, absent: []string{"HTML013"}},
		{name: "empty href", code: `<a href="#">x</a>`, want: []string{"HTML014"}},
		{name: "table without headers", code: "<table>\n<tr><td>1</td></tr>\n</table>", want: []string{"HTML015"}},
		{name: "fragment skips page rules", code: "<p>Hello</p>", absent: []string{"HTML001", "HTML003", "HTML004", "HTML005"}},
		{
			name: "full page",
			code: "<html>\n<head>\n</head>\n<body>\n</body>\n</html>",
			want: []string{"HTML001", "HTML002", "HTML003", "HTML004", "HTML005"},
			fixed: "<!DOCTYPE html>\n" +
				"<html lang=\"en\">\n" +
				"<head>\n" +
				"    <meta charset=\"utf-8\">\n" +
				"    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n" +
				"    <title>Document</title>\n" +
				"</head>\n<body>\n</body>\n</html>",
		},
		{
			name: "complete page",
			code: "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n" +
				"<meta name=\"viewport\" content=\"width=device-width\">\n<title>Home page</title>\n</head>\n</html>",
			absent: []string{"HTML001", "HTML002", "HTML003", "HTML004", "HTML005"},
		},
	})
}

func TestCSS(t *testing.T) {
	t.Parallel()

	runCases(t, "css", []analyzerCase{
		{name: "important", code: "a { color: red !important; }", want: []string{"CSS001"}},
		{name: "id selector", code: "#main {\n}", want: []string{"CSS002"}},
		{name: "vendor prefix alone", code: "a {\n  -webkit-transition: all 1s;\n}", want: []string{"CSS003"}},
		{
			name:   "vendor prefix with standard",
			code:   "a {\n  -webkit-transition: all 1s;\n  transition: all 1s;\n}",
			absent: []string{"CSS003"},
		},
		{name: "hex color", code: "a {\n  color: #fff;\n}", want: []string{"CSS004"}},
		{name: "px font size", code: "p {\n  font-size: 14px;\n}", want: []string{"CSS005"}},
		{name: "zero with unit", code: "a {\n  margin: 0px;\n}", want: []string{"CSS006"}, fixed: "a {\n  margin: 0;\n}"},
		{name: "zero decimal kept", code: "a {\n  margin: 0.5em;\n}", absent: []string{"CSS006"}},
		{name: "universal selector", code: "* {\n  box-sizing: border-box;\n}", want: []string{"CSS007"}},
		{name: "empty rule", code: "a {}", want: []string{"CSS008"}},
		{name: "duplicate property", code: "a {\n  color: red;\n  color: blue;\n}", want: []string{"CSS009"}},
		{name: "same property in two rules", code: "a {\n  color: red;\n}\nb {\n  color: blue;\n}", absent: []string{"CSS009"}},
		{name: "float", code: "a {\n  float: left;\n}", want: []string{"CSS010"}},
		{name: "outline none", code: "a:focus {\n  outline: none;\n}", want: []string{"CSS011"}},
		{name: "high z-index", code: "a {\n  z-index: 9999;\n}", want: []string{"CSS012"}},
		{name: "deprecated property", code: "a {\n  zoom: 2;\n}", want: []string{"CSS014"}},
		{name: "comment skipped", code: "/*\n * color: red !important;\n */", absent: []string{"CSS001"}},
	})
}

func TestApache(t *testing.T) {
	t.Parallel()

	runCases(t, "apache", []analyzerCase{
		{name: "verbose tokens", code: "ServerTokens Full", want: []string{"APACHE001"}, fixed: "ServerTokens Prod"},
		{name: "missing tokens", code: "Listen 80", want: []string{"APACHE001"}},
		{
			name:   "signature on",
			code:   "ServerTokens Prod\nServerSignature On",
			want:   []string{"APACHE002"},
			absent: []string{"APACHE001"},
			fixed:  "ServerTokens Prod\nServerSignature Off",
		},
		{name: "trace on", code: "ServerTokens Prod\nTraceEnable On", want: []string{"APACHE003"}, fixed: "ServerTokens Prod\nTraceEnable Off"},
		{
			name:   "directory listing",
			code:   "ServerTokens Prod\n<Directory /var/www>\n    Options +Indexes\n    Require all granted\n</Directory>",
			want:   []string{"APACHE004"},
			absent: []string{"APACHE014"},
			fixed:  "ServerTokens Prod\n<Directory /var/www>\n    Options -Indexes\n    Require all granted\n</Directory>",
		},
		{
			name: "directory without require",
			code: "ServerTokens Prod\n<Directory /srv/app>\n    AllowOverride All\n</Directory>",
			want: []string{"APACHE005", "APACHE014"},
		},
		{
			name:  "weak protocol",
			code:  "ServerTokens Prod\nSSLProtocol all +SSLv3",
			want:  []string{"APACHE007"},
			fixed: "ServerTokens Prod\nSSLProtocol -all +TLSv1.2 +TLSv1.3",
		},
		{name: "modern protocol", code: "ServerTokens Prod\nSSLProtocol -all +TLSv1.2", absent: []string{"APACHE007"}},
		{name: "weak cipher", code: "ServerTokens Prod\nSSLCipherSuite RC4-SHA", want: []string{"APACHE008"}},
		{name: "excluded cipher", code: "ServerTokens Prod\nSSLCipherSuite HIGH:!RC4:!MD5", absent: []string{"APACHE008"}},
		{name: "ssl without headers", code: "ServerTokens Prod\nSSLEngine on", want: []string{"APACHE009"}},
		{name: "long timeout", code: "ServerTokens Prod\nTimeout 600", want: []string{"APACHE011"}},
		{name: "comments skipped", code: "ServerTokens Prod\n# TraceEnable On", absent: []string{"APACHE003"}},
	})
}

func TestCSS_CommentTokenAnnotation(t *testing.T) {
	t.Parallel()

	res := analyze(t, "css", "a {\n  margin: 0px;\n}")
	assert.Equal(t, "a {\n  /* pactfix: removed the unit from 0 (was: margin: 0px;) */\n  margin: 0;\n}", annotate.Annotate(res))
}
