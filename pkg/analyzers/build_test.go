package analyzers_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDockerfile(t *testing.T) {
	t.Parallel()

	runCases(t, "dockerfile", []analyzerCase{
		{
			name:  "untagged base and apt-get",
			code:  "FROM ubuntu\nRUN apt-get install -y curl",
			want:  []string{"DOCKER001", "DOCKER002", "DOCKER003", "DOCKER009", "DOCKER010"},
			fixed: "# TODO: specify version\nFROM ubuntu:latest\nRUN apt-get install -y curl",
		},
		{
			name:   "latest is reported but not rewritten",
			code:   "FROM ubuntu:latest\nUSER app\nHEALTHCHECK CMD true",
			want:   []string{"DOCKER001"},
			absent: []string{"DOCKER009", "DOCKER010"},
		},
		{
			name:   "add, workdir and shell form",
			code:   "FROM alpine:3.19\nUSER app\nHEALTHCHECK CMD true\nADD app.py /app/\nWORKDIR app\nCMD python app.py",
			want:   []string{"DOCKER004", "DOCKER006", "DOCKER008"},
			absent: []string{"DOCKER001"},
			fixed:  "FROM alpine:3.19\nUSER app\nHEALTHCHECK CMD true\nCOPY app.py /app/\nWORKDIR /app\nCMD python app.py",
		},
		{
			name:   "remote add is kept",
			code:   "FROM alpine:3.19\nADD https://example.com/a.tgz /tmp/",
			absent: []string{"DOCKER004"},
		},
		{
			name:   "apt-get done right across continuations",
			code:   "FROM debian:12\nRUN apt-get update && \\\n    apt-get install -y curl && \\\n    rm -rf /var/lib/apt/lists/*",
			absent: []string{"DOCKER002", "DOCKER003"},
		},
		{name: "secret", code: "FROM node:20\nENV API_KEY=abcdef123", want: []string{"DOCKER007"}},
		{name: "exec form", code: "FROM node:20\nCMD [\"node\", \"app.js\"]", absent: []string{"DOCKER006"}},
	})
}

func TestDockerfile_Context(t *testing.T) {
	t.Parallel()

	res := analyze(t, "dockerfile", "FROM golang:1.22 AS build\nENV B=1 A=2\nENV C 3")
	assert.Equal(t, "golang:1.22", res.Context["base_image"])
	assert.Equal(t, []string{"A", "B", "C"}, res.Context["env_vars"])

	res = analyze(t, "dockerfile", "RUN echo hi")
	assert.Nil(t, res.Context["base_image"])
}

func TestMakefile(t *testing.T) {
	t.Parallel()

	runCases(t, "makefile", []analyzerCase{
		{
			name:  "spaces instead of tab",
			code:  "build:\n    go build",
			want:  []string{"MAKE001", "MAKE003", "MAKE012"},
			fixed: ".PHONY: build\nbuild:\n\tgo build",
		},
		{
			name:   "recipe hygiene",
			code:   ".PHONY: all\nall:\n\tmake -C sub\n\tcd src; ls\nclean:\n\trm build",
			want:   []string{"MAKE003", "MAKE005", "MAKE007", "MAKE011"},
			absent: []string{"MAKE012"},
			fixed:  ".PHONY: all clean\nall:\n\t$(MAKE) -C sub\n\tcd src; ls\nclean:\n\trm build",
		},
		{name: "hardcoded path", code: ".PHONY: clean\nclean:\n\trm -f /home/bob/out", want: []string{"MAKE004"}, absent: []string{"MAKE011"}},
		{name: "double colon", code: ".PHONY: clean\nclean::\n\trm -f x", want: []string{"MAKE014"}},
		{name: "variables are not recipes", code: ".PHONY: clean\nCC = gcc\nclean:\n\trm -f x", absent: []string{"MAKE001"}},
	})
}

func TestMakefile_Targets(t *testing.T) {
	t.Parallel()

	res := analyze(t, "makefile", ".PHONY: test clean\ntest:\n\tgo test\nclean:\n\trm -f x")
	assert.Equal(t, []string{"clean", "test"}, res.Context["targets"])
}

func TestSystemd(t *testing.T) {
	t.Parallel()

	unit := strings.Join([]string{
		"[Unit]",
		"Description=Demo service",
		"[Service]",
		"Type=bogus",
		"ExecStart=myapp",
		"Restart=always",
		"Environment=API_TOKEN=abcdef",
		"[Install]",
		"WantedBy=multi-user.target",
	}, "\n")

	hardened := strings.Join([]string{
		"[Unit]",
		"Description=Demo service",
		"[Service]",
		"Type=simple",
		"User=demo",
		"ExecStart=/usr/bin/demo",
		"Restart=on-failure",
		"RestartSec=5",
	}, "\n")

	runCases(t, "systemd", []analyzerCase{
		{
			name:  "problems",
			code:  unit,
			want:  []string{"SYSTEMD004", "SYSTEMD006", "SYSTEMD007", "SYSTEMD008", "SYSTEMD009"},
			fixed: strings.Replace(unit, "Restart=always\n", "Restart=always\nRestartSec=5\n", 1),
		},
		{
			name:   "hardened",
			code:   hardened,
			absent: []string{"SYSTEMD001", "SYSTEMD003", "SYSTEMD004", "SYSTEMD006", "SYSTEMD007", "SYSTEMD009"},
		},
		{name: "short description", code: "[Unit]\nDescription=x", want: []string{"SYSTEMD001"}},
		{name: "root user", code: "[Service]\nUser=root", want: []string{"SYSTEMD004"}},
		{name: "restart no", code: "[Service]\nRestart=no", want: []string{"SYSTEMD003"}},
		{name: "infinite timeout", code: "[Service]\nTimeoutStopSec=infinity", want: []string{"SYSTEMD013"}},
	})
}

func TestTerraform(t *testing.T) {
	t.Parallel()

	runCases(t, "terraform", []analyzerCase{
		{
			name: "credential and encryption",
			code: "resource \"aws_db_instance\" \"db\" {\n  password = \"hunter2\"\n  storage_encrypted = false\n}",
			want: []string{"TF001", "TF003"},
			fixed: strings.Join([]string{
				`resource "aws_db_instance" "db" {`,
				`  password = var.aws_db_instance_db_password`,
				`  storage_encrypted = true`,
				`}`,
				``,
				`variable "aws_db_instance_db_password" {`,
				`  description = "password for aws_db_instance"`,
				`  type        = string`,
				`  sensitive   = true`,
				`}`,
			}, "\n"),
		},
		{
			name:  "public acl",
			code:  "resource \"aws_s3_bucket\" \"b\" {\n  acl = \"public-read\"\n}",
			want:  []string{"TF004"},
			fixed: "resource \"aws_s3_bucket\" \"b\" {\n  acl = \"private\"\n}",
		},
		{name: "open cidr", code: "resource \"aws_security_group\" \"sg\" {\n  cidr_blocks = [\"0.0.0.0/0\"]\n}", want: []string{"TF002"}},
		{name: "provider without version", code: "provider \"aws\" {\n  region = \"eu-west-1\"\n}", want: []string{"TF006"}},
		{name: "provider with version", code: "provider \"aws\" {\n  version = \"~> 5.0\"\n}", absent: []string{"TF006"}},
	})
}

func TestTerraform_UndefinedVariables(t *testing.T) {
	t.Parallel()

	res := analyze(t, "terraform", "variable \"region\" {}\nresource \"aws_instance\" \"x\" {\n  ami    = var.ami\n  region = var.region\n}")
	assert.Equal(t, []string{"ami"}, res.Context["undefined_variables"])

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "TF005", res.Warnings[0].Code)
	assert.Contains(t, res.FixedCode, "variable \"ami\" {\n  description = \"TODO: add description\"\n  type        = string\n}")
}

func TestNginx(t *testing.T) {
	t.Parallel()

	tls := strings.Join([]string{
		"server {",
		"    listen 443 ssl;",
		"    server_name example.com;",
		"    server_tokens on;",
		"}",
	}, "\n")

	runCases(t, "nginx", []analyzerCase{
		{
			name: "tls server hardening",
			code: tls,
			want: []string{"NGINX001", "NGINX005", "NGINX008", "NGINX009"},
			fixed: strings.Join([]string{
				"server {",
				"    listen 443 ssl;",
				"    server_name example.com;",
				`    add_header X-Frame-Options "SAMEORIGIN" always;`,
				`    add_header X-Content-Type-Options "nosniff" always;`,
				`    add_header Referrer-Policy "strict-origin-when-cross-origin" always;`,
				`    add_header Strict-Transport-Security "max-age=31536000; includeSubDomains" always;`,
				"    ssl_session_tickets off;",
				"    ssl_prefer_server_ciphers on;",
				"    server_tokens off;",
				"}",
			}, "\n"),
		},
		{
			name:  "weak protocols",
			code:  "http {\n  ssl_protocols TLSv1 TLSv1.2;\n}",
			want:  []string{"NGINX003"},
			fixed: "http {\n  ssl_protocols TLSv1.2 TLSv1.3;\n}",
		},
		{name: "modern protocols", code: "http {\n  ssl_protocols TLSv1.2 TLSv1.3;\n}", absent: []string{"NGINX003"}},
		{
			name:  "weak ciphers",
			code:  "http {\n  ssl_ciphers RC4:MD5;\n}",
			want:  []string{"NGINX004"},
			fixed: "http {\n  ssl_ciphers 'HIGH:!aNULL:!MD5:!3DES:!RC4';\n}",
		},
		{
			name:  "autoindex",
			code:  "server {\n    listen 8080;\n    autoindex on;\n}",
			want:  []string{"NGINX002"},
			fixed: "server {\n    listen 8080;\n    autoindex off;\n}",
		},
		{
			name:  "dotfiles",
			code:  "server {\n    listen 8080;\n    location ~ /\\. {\n        return 404;\n    }\n}",
			want:  []string{"NGINX006"},
			fixed: "server {\n    listen 8080;\n    location ~ /\\. {\n        deny all;\n        return 404;\n    }\n}",
		},
	})
}

func TestNginx_HTTPRedirect(t *testing.T) {
	t.Parallel()

	code := strings.Join([]string{
		"server {",
		"    listen 80;",
		"    server_name example.com;",
		"}",
		"server {",
		"    listen 443 ssl;",
		"    server_name example.com;",
		"    add_header X-Frame-Options \"DENY\";",
		"    ssl_session_tickets off;",
		"    ssl_prefer_server_ciphers on;",
		"}",
	}, "\n")

	res := analyze(t, "nginx", code)
	assert.Equal(t, []string{"NGINX007"}, issueCodes(res))
	assert.Contains(t, res.FixedCode, "    server_name example.com;\n    return 301 https://$host$request_uri;\n}")
	assert.Equal(t, 2, res.Context["server_blocks"])
}

func TestGitHubActions(t *testing.T) {
	t.Parallel()

	workflow := strings.Join([]string{
		"on:",
		"  pull_request_target:",
		"jobs:",
		"  build:",
		"    runs-on: ubuntu-latest",
		"    steps:",
		"      - uses: actions/checkout@master",
		"      - run: echo ${{ github.event.issue.title }}",
	}, "\n")

	runCases(t, "github-actions", []analyzerCase{
		{
			name:  "workflow",
			code:  workflow,
			want:  []string{"GHA001", "GHA002", "GHA004", "GHA005"},
			fixed: strings.Replace(workflow, "checkout@master", "checkout@v4", 1),
		},
		{
			name:   "pinned with permissions",
			code:   "on: push\npermissions:\n  contents: read\njobs:\n  build:\n    runs-on: ubuntu-latest\n    steps:\n      - uses: actions/checkout@v4",
			absent: []string{"GHA001", "GHA005", "YAML011"},
		},
		{
			name: "secret",
			code: "on: push\npermissions: {}\njobs:\n  a:\n    runs-on: x\n    env:\n      API_TOKEN: abc123\n      GH_TOKEN: ${{ secrets.GH_TOKEN }}\n    steps:\n      - run: make",
			want: []string{"GHA003"},
		},
		{
			name: "injection in run block",
			code: "on: push\npermissions: {}\njobs:\n  a:\n    runs-on: x\n    steps:\n      - run: |\n          echo \"${{ inputs.name }}\"",
			want: []string{"GHA004"},
		},
	})
}
