package analyzers

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wronai/pactfix/pkg/fix"
	"github.com/wronai/pactfix/pkg/langdetect"
	"github.com/wronai/pactfix/pkg/lint"
)

// DockerCompose returns the Compose file analyzer.
func DockerCompose() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.DockerCompose, Fn: analyzeCompose}
}

func analyzeCompose(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.DockerCompose, code)
	ws := hygiene{tabs: "YAML002", trailing: "YAML003", tabsAreErrors: true}
	for n := 1; n <= f.Len(); n++ {
		ws.apply(f, n)
	}

	var services []string
	err := yamlDecodeAll(fixedText(f), func(doc *yaml.Node) {
		svcs := get(mapping(doc), "services")
		if svcs == nil || svcs.Kind != yaml.MappingNode {
			return
		}
		for i := 0; i+1 < len(svcs.Content); i += 2 {
			services = append(services, svcs.Content[i].Value)
			composeService(f, svcs.Content[i], svcs.Content[i+1])
		}
	})
	if err != nil {
		yamlParse(f, "YAML011")
	}

	slices.Sort(services)
	f.SetContext("services", nonNil(services))
	return f.Result(), nil
}

func composeService(f *fix.LineFixer, key, svc *yaml.Node) {
	if svc.Kind != yaml.MappingNode {
		return
	}
	name := key.Value

	if img := get(svc, "image"); img != nil {
		image := scalar(img)
		tag, digest := imageTag(image)
		switch {
		case digest:
		case tag == "":
			f.Warning(img.Line, img.Column, "COMPOSE001", fmt.Sprintf("service %s: image %s has no tag", name, image))
		case tag == "latest":
			f.Warning(img.Line, img.Column, "COMPOSE002", fmt.Sprintf("service %s: image uses the latest tag", name))
		}
	}

	if _, restart := lookup(svc, "restart"); restart == nil {
		f.Warning(key.Line, key.Column, "COMPOSE003", fmt.Sprintf("service %s has no restart policy", name))
		if svc.Style&yaml.FlowStyle == 0 && len(svc.Content) > 0 {
			first := svc.Content[0]
			indent := strings.Repeat(" ", first.Column-1)
			f.Fix(key.Line, "added restart policy to "+name, "", indent+"restart: unless-stopped").
				InsertBefore(first.Line, indent+"restart: unless-stopped")
		}
	}

	if ports := get(svc, "ports"); ports != nil && ports.Kind == yaml.SequenceNode {
		for _, p := range ports.Content {
			if composeAllInterfaces(scalar(p)) {
				f.Warning(p.Line, p.Column, "COMPOSE004",
					fmt.Sprintf("service %s: port %s is bound to all interfaces", name, p.Value))
			}
		}
	}

	if priv := get(svc, "privileged"); isTrue(priv) {
		f.Error(priv.Line, priv.Column, "COMPOSE005", fmt.Sprintf("service %s runs privileged", name))
	}

	env := get(svc, "environment")
	if env == nil {
		return
	}
	for _, kv := range composeEnv(env) {
		if secretKey.MatchString(kv.key) && yamlHardcoded(kv.value) {
			f.Error(kv.line, kv.col, "COMPOSE006",
				fmt.Sprintf("service %s: hardcoded secret in %s", name, kv.key))
		}
	}
}

// composeAllInterfaces reports a published port without a host address, or
// bound to 0.0.0.0.
func composeAllInterfaces(port string) bool {
	if port == "" || !strings.Contains(port, ":") {
		return false
	}
	if strings.HasPrefix(port, "0.0.0.0:") {
		return true
	}
	return strings.Count(port, ":") == 1 && !strings.HasPrefix(port, "127.0.0.1:")
}

type envVar struct {
	key, value string
	line, col  int
}

func composeEnv(env *yaml.Node) []envVar {
	var out []envVar
	switch env.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(env.Content); i += 2 {
			k, v := env.Content[i], env.Content[i+1]
			out = append(out, envVar{key: k.Value, value: scalar(v), line: k.Line, col: k.Column})
		}
	case yaml.SequenceNode:
		for _, item := range env.Content {
			k, v, ok := strings.Cut(scalar(item), "=")
			if ok {
				out = append(out, envVar{key: k, value: v, line: item.Line, col: item.Column})
			}
		}
	}
	return out
}
