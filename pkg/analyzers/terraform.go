package analyzers

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/wronai/pactfix/pkg/fix"
	"github.com/wronai/pactfix/pkg/langdetect"
	"github.com/wronai/pactfix/pkg/lint"
)

//nolint:gochecknoglobals // compiled once
var (
	tfResource   = regexp.MustCompile(`^resource\s+"([^"]+)"\s+"([^"]+)"`)
	tfVariable   = regexp.MustCompile(`^variable\s+"([^"]+)"`)
	tfProvider   = regexp.MustCompile(`^provider\s+"([^"]+)"`)
	tfVarUse     = regexp.MustCompile(`\bvar\.(\w+)`)
	tfCredential = regexp.MustCompile(`(?i)^(\s*)(access_key|secret_key|password|token|api_key)(\s*=\s*)"([^"$]+)"`)
	tfDisabled   = regexp.MustCompile(`^(\s*)(encrypted|encryption_at_rest|storage_encrypted)(\s*=\s*)false\b`)
	tfEmptyKMS   = regexp.MustCompile(`^(\s*kms_key_id\s*=\s*)""`)
	tfPublicACL  = regexp.MustCompile(`\bacl(\s*=\s*)"public-read(?:-write)?"`)
)

// Terraform returns the Terraform analyzer.
func Terraform() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.Terraform, Fn: analyzeTerraform}
}

type tfBlock struct{ kind, name string }

func analyzeTerraform(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.Terraform, code)

	var (
		resources []map[string]any
		providers []string
		current   *tfBlock
		depth     int
	)
	defined := make(map[string]bool)
	used := make(map[string]bool)
	added := make(map[string]bool)

	for n := 1; n <= f.Len(); n++ {
		line := f.Line(n)
		body, _, _ := strings.Cut(line, "#")
		stripped := strings.TrimSpace(body)

		if depth == 0 {
			current = nil
			if m := tfResource.FindStringSubmatch(stripped); m != nil {
				current = &tfBlock{kind: m[1], name: m[2]}
				resources = append(resources, map[string]any{"type": m[1], "name": m[2], "line": n})
			}
			if m := tfVariable.FindStringSubmatch(stripped); m != nil {
				defined[m[1]] = true
			}
			if m := tfProvider.FindStringSubmatch(stripped); m != nil {
				providers = append(providers, m[1])
				tfProviderVersion(f, n, m[1])
			}
		}
		depth = max(0, depth+strings.Count(stripped, "{")-strings.Count(stripped, "}"))

		for _, m := range tfVarUse.FindAllStringSubmatch(stripped, -1) {
			used[m[1]] = true
		}

		if m := tfCredential.FindStringSubmatch(line); m != nil {
			cred := strings.ToLower(m[2])
			name := cred + "_var"
			owner := "general"
			if current != nil {
				name = current.kind + "_" + current.name + "_" + cred
				owner = current.kind
			}
			f.Error(n, len(m[1])+1, "TF001", "hardcoded "+cred)
			fixed := tfCredential.ReplaceAllString(line, "${1}${2}${3}var."+name)
			p := f.Fix(n, fmt.Sprintf("replaced %s with variable %s", cred, name), strings.TrimSpace(line), strings.TrimSpace(fixed)).
				Rewrite(n, fixed)
			if !added[name] {
				added[name] = true
				defined[name] = true
				p.InsertBefore(f.Len()+1, tfVariableBlock(name, fmt.Sprintf("%s for %s", cred, owner), true))
			}
		}

		if strings.Contains(stripped, "cidr_blocks") && strings.Contains(stripped, "0.0.0.0/0") {
			f.Warning(n, 1, "TF002", "0.0.0.0/0 opens access from the whole internet")
		}

		if m := tfDisabled.FindStringSubmatch(f.Line(n)); m != nil {
			f.Error(n, len(m[1])+1, "TF003", "encryption is disabled")
			cur := f.Line(n)
			fixed := tfDisabled.ReplaceAllString(cur, "${1}${2}${3}true")
			f.Rewrite(n, fixed, "enabled encryption", strings.TrimSpace(cur), strings.TrimSpace(fixed))
		}
		if tfEmptyKMS.MatchString(f.Line(n)) {
			f.Error(n, 1, "TF003", "encryption is disabled: empty kms_key_id")
			cur := f.Line(n)
			fixed := tfEmptyKMS.ReplaceAllString(cur, `${1}"alias/aws/ebs"`)
			f.Rewrite(n, fixed, "set the default KMS key", strings.TrimSpace(cur), strings.TrimSpace(fixed))
		}

		if tfPublicACL.MatchString(f.Line(n)) {
			f.Error(n, 1, "TF004", "public S3 bucket ACL")
			cur := f.Line(n)
			fixed := tfPublicACL.ReplaceAllString(cur, `acl${1}"private"`)
			f.Rewrite(n, fixed, "changed ACL to private", strings.TrimSpace(cur), strings.TrimSpace(fixed))
		}
	}

	var undefined []string
	for v := range used {
		if !defined[v] {
			undefined = append(undefined, v)
		}
	}
	slices.Sort(undefined)
	for _, v := range undefined {
		f.Warning(1, 1, "TF005", fmt.Sprintf("variable var.%s is not defined", v))
		f.Fix(1, "added variable "+v, "", `variable "`+v+`"`).
			InsertBefore(f.Len()+1, tfVariableBlock(v, "TODO: add description", false))
	}

	if resources == nil {
		resources = []map[string]any{}
	}
	f.SetContext("resources", resources)
	f.SetContext("providers", nonNil(providers))
	f.SetContext("undefined_variables", nonNil(undefined))
	f.SetContext("total_variables_defined", len(defined))
	f.SetContext("total_variables_used", len(used))
	return f.Result(), nil
}

// tfProviderVersion warns about a provider block without a version
// constraint.
func tfProviderVersion(f *fix.LineFixer, start int, name string) {
	depth := 0
	for k := start; k <= f.Len(); k++ {
		stripped := strings.TrimSpace(f.Line(k))
		if k > start && strings.HasPrefix(stripped, "version") {
			return
		}
		depth += strings.Count(stripped, "{") - strings.Count(stripped, "}")
		if depth <= 0 {
			break
		}
	}
	f.Warning(start, 1, "TF006", fmt.Sprintf("provider %s has no version constraint", name))
}

func tfVariableBlock(name, description string, sensitive bool) string {
	lines := []string{
		"",
		`variable "` + name + `" {`,
		`  description = "` + description + `"`,
		"  type        = string",
	}
	if sensitive {
		lines = append(lines, "  sensitive   = true")
	}
	return strings.Join(append(lines, "}"), "\n")
}
