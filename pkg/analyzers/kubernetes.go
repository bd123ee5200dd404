package analyzers

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/wronai/pactfix/pkg/fix"
	"github.com/wronai/pactfix/pkg/langdetect"
	"github.com/wronai/pactfix/pkg/lint"
)

// Kubernetes returns the manifest analyzer. Multi-document files are
// supported.
func Kubernetes() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.Kubernetes, Fn: analyzeKubernetes}
}

// podSpecPaths locates the pod spec of each workload kind.
//
//nolint:gochecknoglobals // read-only
var podSpecPaths = map[string][]string{
	"Pod":         {"spec"},
	"Deployment":  {"spec", "template", "spec"},
	"StatefulSet": {"spec", "template", "spec"},
	"DaemonSet":   {"spec", "template", "spec"},
	"ReplicaSet":  {"spec", "template", "spec"},
	"Job":         {"spec", "template", "spec"},
	"CronJob":     {"spec", "jobTemplate", "spec", "template", "spec"},
}

func analyzeKubernetes(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.Kubernetes, code)
	ws := hygiene{tabs: "YAML002", trailing: "YAML003", tabsAreErrors: true}
	for n := 1; n <= f.Len(); n++ {
		ws.apply(f, n)
	}

	kinds := make(map[string]bool)
	var names []string
	err := yamlDecodeAll(fixedText(f), func(doc *yaml.Node) {
		root := mapping(doc)
		if root == nil {
			return
		}
		kind := scalar(get(root, "kind"))
		if kind != "" {
			kinds[kind] = true
		}
		if name := scalar(get(root, "metadata", "name")); name != "" {
			names = append(names, name)
		}
		if path, ok := podSpecPaths[kind]; ok {
			k8sPodSpec(f, get(root, path...))
		}
	})
	if err != nil {
		yamlParse(f, "YAML011")
	}

	f.SetContext("kinds", nonNil(slices.Sorted(maps.Keys(kinds))))
	f.SetContext("names", nonNil(names))
	return f.Result(), nil
}

func k8sPodSpec(f *fix.LineFixer, spec *yaml.Node) {
	if spec == nil || spec.Kind != yaml.MappingNode {
		return
	}
	if host := get(spec, "hostNetwork"); isTrue(host) {
		f.Warning(host.Line, host.Column, "K8S005", "pod uses the host network")
	}
	podNonRoot := get(spec, "securityContext", "runAsNonRoot") != nil

	for _, field := range []string{"initContainers", "containers"} {
		list := get(spec, field)
		if list == nil || list.Kind != yaml.SequenceNode {
			continue
		}
		for _, c := range list.Content {
			k8sContainer(f, c, podNonRoot)
		}
	}
}

func k8sContainer(f *fix.LineFixer, c *yaml.Node, podNonRoot bool) {
	if c.Kind != yaml.MappingNode {
		return
	}
	name := scalar(get(c, "name"))

	if img := get(c, "image"); img != nil {
		tag, digest := imageTag(scalar(img))
		if !digest && (tag == "" || tag == "latest") {
			f.Warning(img.Line, img.Column, "K8S001",
				fmt.Sprintf("container %s: pin the image to a specific tag instead of latest", name))
		}
	}

	if get(c, "resources") == nil {
		f.Warning(c.Line, c.Column, "K8S002", fmt.Sprintf("container %s has no resource requests or limits", name))
	}

	if priv := get(c, "securityContext", "privileged"); isTrue(priv) {
		f.Error(priv.Line, priv.Column, "K8S003", fmt.Sprintf("container %s runs privileged", name))
	}

	if !podNonRoot && get(c, "securityContext", "runAsNonRoot") == nil {
		f.Warning(c.Line, c.Column, "K8S004", fmt.Sprintf("container %s does not set runAsNonRoot", name))
	}
}
