package analyzers

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/wronai/pactfix/pkg/fix"
	"github.com/wronai/pactfix/pkg/langdetect"
	"github.com/wronai/pactfix/pkg/lint"
)

// Dockerfile returns the Dockerfile analyzer.
func Dockerfile() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.Dockerfile, Fn: analyzeDockerfile}
}

// instruction is one logical Dockerfile instruction, joined across
// backslash continuations.
type instruction struct {
	line    int
	keyword string
	args    string
}

func dockerInstructions(f *fix.LineFixer) []instruction {
	var out []instruction
	for n := 1; n <= f.Len(); n++ {
		stripped := strings.TrimSpace(f.Line(n))
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			continue
		}
		in := instruction{line: n}
		text := stripped
		for strings.HasSuffix(text, `\`) && n < f.Len() {
			n++
			text = strings.TrimSuffix(text, `\`) + " " + strings.TrimSpace(f.Line(n))
		}
		keyword, args, _ := strings.Cut(text, " ")
		in.keyword = strings.ToUpper(keyword)
		in.args = strings.TrimSpace(args)
		out = append(out, in)
	}
	return out
}

func analyzeDockerfile(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.Dockerfile, code)

	hasUser, hasHealthcheck := false, false
	baseImage := ""
	envVars := make(map[string]bool)

	for _, in := range dockerInstructions(f) {
		switch in.keyword {
		case "FROM":
			baseImage = dockerFrom(f, in)
		case "USER":
			hasUser = true
		case "HEALTHCHECK":
			hasHealthcheck = true
		case "ENV":
			for _, k := range dockerEnvKeys(in.args) {
				envVars[k] = true
			}
		case "RUN":
			dockerAptGet(f, in)
		case "ADD":
			dockerAdd(f, in)
		case "WORKDIR":
			dockerWorkdir(f, in)
		case "CMD", "ENTRYPOINT":
			if !strings.HasPrefix(in.args, "[") {
				f.Warning(in.line, 1, "DOCKER006", "use the exec form (JSON array) for "+in.keyword)
			}
		}

		if in.keyword != "ARG" && hasSecret(in.args) {
			f.Error(in.line, 1, "DOCKER007", "hardcoded secret: use build secrets or runtime configuration")
		}
	}

	if !hasUser {
		f.Warning(1, 1, "DOCKER009", "no USER instruction: the container will run as root")
	}
	if !hasHealthcheck && baseImage != "" {
		f.Warning(1, 1, "DOCKER010", "no HEALTHCHECK instruction")
	}

	var base any
	if baseImage != "" {
		base = baseImage
	}
	f.SetContext("base_image", base)
	f.SetContext("env_vars", nonNil(slices.Sorted(maps.Keys(envVars))))
	return f.Result(), nil
}

// dockerFrom checks the base image tag and returns the image reference.
func dockerFrom(f *fix.LineFixer, in instruction) string {
	var image string
	for _, field := range strings.Fields(in.args) {
		if !strings.HasPrefix(field, "--") {
			image = field
			break
		}
	}
	if image == "" || image == "scratch" || strings.HasPrefix(image, "$") {
		return image
	}

	tag, digest := imageTag(image)
	if digest || (tag != "" && tag != "latest") {
		return image
	}
	f.Warning(in.line, 1, "DOCKER001", fmt.Sprintf("use a specific tag instead of latest for %s", image))
	if tag != "" {
		return image
	}

	line := f.Line(in.line)
	i := strings.Index(line, image)
	if i < 0 {
		return image
	}
	fixed := line[:i] + image + ":latest" + line[i+len(image):]
	f.Fix(in.line, "added version placeholder", strings.TrimSpace(line), strings.TrimSpace(fixed)).
		InsertBefore(in.line, fix.LeadingSpace(line)+"# TODO: specify version").
		Rewrite(in.line, fixed)
	return image
}

func dockerEnvKeys(args string) []string {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return nil
	}
	if !strings.Contains(fields[0], "=") {
		return []string{fields[0]}
	}
	var keys []string
	for _, field := range fields {
		if k, _, ok := strings.Cut(field, "="); ok && k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func dockerAptGet(f *fix.LineFixer, in instruction) {
	if !strings.Contains(in.args, "apt-get install") {
		return
	}
	if !strings.Contains(in.args, "rm -rf /var/lib/apt/lists") {
		f.Warning(in.line, 1, "DOCKER002", "apt-get install without cleaning the package cache")
	}
	if !strings.Contains(in.args, "apt-get update") {
		f.Warning(in.line, 1, "DOCKER003", "apt-get install without apt-get update in the same layer")
	}
}

func dockerAdd(f *fix.LineFixer, in instruction) {
	if strings.Contains(in.args, "http://") || strings.Contains(in.args, "https://") || strings.Contains(in.args, ".tar") {
		return
	}
	f.Warning(in.line, 1, "DOCKER004", "use COPY instead of ADD for local files")
	line := f.Line(in.line)
	i := strings.Index(strings.ToUpper(line), "ADD")
	fixed := line[:i] + "COPY" + line[i+3:]
	f.Rewrite(in.line, fixed, "replaced ADD with COPY", strings.TrimSpace(line), strings.TrimSpace(fixed))
}

func dockerWorkdir(f *fix.LineFixer, in instruction) {
	dir := in.args
	if dir == "" || strings.HasPrefix(dir, "/") || strings.HasPrefix(dir, "$") {
		return
	}
	f.Warning(in.line, 1, "DOCKER008", "WORKDIR should use an absolute path")
	line := f.Line(in.line)
	i := strings.LastIndex(line, dir)
	if i < 0 {
		return
	}
	fixed := line[:i] + "/" + dir + line[i+len(dir):]
	f.Rewrite(in.line, fixed, "made WORKDIR absolute", strings.TrimSpace(line), strings.TrimSpace(fixed))
}
