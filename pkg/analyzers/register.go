package analyzers

import (
	"fmt"

	"github.com/wronai/pactfix/pkg/langdetect"
	"github.com/wronai/pactfix/pkg/lint"
)

// All returns every bundled analyzer.
func All() []lint.Analyzer {
	return []lint.Analyzer{
		// Shell and scripting
		Bash(),       // BASH001, SC2164, SC2162, SC1073
		Python(),     // PY001-PY008
		JavaScript(), // JS001-JS004
		NodeJS(),     // JS001-JS004, NODE002
		TypeScript(), // TS001-TS014
		PHP(),        // PHP001-PHP006
		Ruby(),       // RUBY001-RUBY014

		// Compiled languages
		Go(),     // GO001-GO014
		Rust(),   // RUST001-RUST014
		Java(),   // JAVA001-JAVA015
		CSharp(), // CS001-CS017

		// Data and configuration
		SQL(),           // SQL001-SQL008
		JSON(),          // JSON001-JSON006
		YAML(),          // YAML001-YAML011
		DockerCompose(), // COMPOSE001-COMPOSE006
		Kubernetes(),    // K8S001-K8S005
		TOML(),          // TOML001-TOML004
		INI(),           // INI001-INI004

		// Build and deployment
		Dockerfile(),    // DOCKER001-DOCKER010
		Makefile(),      // MAKE001-MAKE014
		Systemd(),       // SYSTEMD001-SYSTEMD015
		Terraform(),     // TF001-TF006
		Nginx(),         // NGINX001-NGINX009
		Apache(),        // APACHE001-APACHE014
		GitHubActions(), // GHA001-GHA005
		GitLabCI(),      // GITLAB001-GITLAB005
		Jenkinsfile(),   // JENKINS001-JENKINS005
		Ansible(),       // ANS001-ANS004
		Helm(),          // HELM001-HELM005

		// Web
		HTML(), // HTML001-HTML015
		CSS(),  // CSS001-CSS015

		// Nesting formats
		Markdown(), // MD001, MD100
		Markpact(), // MP001-MP003
	}
}

// RegisterAll registers all bundled analyzers with the given registry.
func RegisterAll(registry *lint.Registry) error {
	for _, a := range All() {
		if err := registry.Register(a); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a frozen registry with the bundled analyzers. Every
// supported format is registered: formats outside enabled (when non-empty),
// formats in disabled, and formats without a rule set get a pass-through
// analyzer, so only unknown formats reach the bash fallback. The fallback
// itself can be neither disabled nor left out.
func NewRegistry(enabled, disabled []string) (*lint.Registry, error) {
	registry := lint.NewRegistry(langdetect.Fallback)
	if err := RegisterAll(registry); err != nil {
		return nil, err
	}

	off := make(map[string]bool, len(disabled))
	if len(enabled) > 0 {
		keep := make(map[string]bool, len(enabled)+1)
		for _, id := range enabled {
			keep[id] = true
		}
		keep[langdetect.Fallback] = true
		for _, id := range langdetect.SupportedFormats() {
			off[id] = !keep[id]
		}
	}
	for _, id := range disabled {
		if id == langdetect.Fallback {
			return nil, fmt.Errorf("format %q is the fallback and cannot be disabled", id)
		}
		off[id] = true
	}

	for _, id := range langdetect.SupportedFormats() {
		if _, ok := registry.Get(id); ok && !off[id] {
			continue
		}
		if err := registry.Register(PassThrough(id)); err != nil {
			return nil, err
		}
	}

	if err := registry.Freeze(); err != nil {
		return nil, err
	}
	return registry, nil
}
