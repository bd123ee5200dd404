// Package configloader provides configuration loading and resolution.
// It implements XDG-compliant configuration discovery, layered overlays,
// environment variable support, and validation.
package configloader

import (
	"context"
	"fmt"
	"os"

	"github.com/wronai/pactfix/pkg/config"
)

// LoadOptions controls configuration loading behavior.
type LoadOptions struct {
	// WorkingDir is the directory to search from for project config.
	// Defaults to current working directory if empty.
	WorkingDir string

	// ExplicitPath is an explicit config file path (from --config flag).
	// If set, project config discovery is skipped.
	ExplicitPath string

	// IgnoreUserConfig skips loading user-level configuration.
	IgnoreUserConfig bool

	// IgnoreProjectConfig skips loading project-level configuration.
	IgnoreProjectConfig bool

	// IgnoreEnv skips loading environment variables.
	IgnoreEnv bool

	// Getenv reads environment variables. Defaults to os.Getenv.
	Getenv func(string) string

	// Overrides contains configuration from CLI flags.
	// These take highest precedence.
	Overrides *Overrides
}

// LoadResult contains the resolved configuration and metadata.
type LoadResult struct {
	// Config is the final configuration.
	Config *config.Config

	// Paths contains the discovered configuration file paths.
	Paths *ConfigPaths

	// LoadedFrom lists the files that were actually loaded (in order).
	LoadedFrom []string

	// Warnings contains non-fatal issues encountered during loading.
	Warnings []string
}

// Load resolves the final configuration by layering all sources.
// Precedence (highest to lowest):
//  1. CLI flags (opts.Overrides)
//  2. Environment variables (PACTFIX_*)
//  3. Explicit config file (opts.ExplicitPath)
//  4. Project config (.pactfix.yml upward search)
//  5. User config ($XDG_CONFIG_HOME/pactfix/config.yml)
//  6. Defaults
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	workDir := opts.WorkingDir
	if workDir == "" {
		var err error
		workDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}

	paths, err := DiscoverPaths(ctx, workDir, opts.Getenv)
	if err != nil {
		return nil, fmt.Errorf("discover paths: %w", err)
	}
	result := &LoadResult{Paths: paths}

	cfg := config.NewConfig()

	layers := make([]string, 0, 3)
	if !opts.IgnoreUserConfig && paths.User != "" {
		layers = append(layers, paths.User)
	}
	if opts.ExplicitPath != "" {
		paths.Explicit = opts.ExplicitPath
	} else if !opts.IgnoreProjectConfig && paths.Project != "" {
		layers = append(layers, paths.Project)
	}
	if paths.Explicit != "" {
		layers = append(layers, paths.Explicit)
	}

	for _, path := range layers {
		if err := overlayFile(cfg, path); err != nil {
			return nil, err
		}
		if v := ValidateWithFile(cfg, path); !v.Valid() {
			return nil, &v.Errors[0]
		}
		result.LoadedFrom = append(result.LoadedFrom, path)
	}

	if !opts.IgnoreEnv {
		if err := LoadFromEnv(cfg, opts.Getenv); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
	}

	opts.Overrides.apply(cfg)

	validation := Validate(cfg)
	if !validation.Valid() {
		return nil, &validation.Errors[0]
	}
	for _, w := range validation.Warnings {
		result.Warnings = append(result.Warnings, w.Error())
	}

	result.Config = cfg
	return result, nil
}

// overlayFile decodes the YAML file at path on top of cfg.
func overlayFile(cfg *config.Config, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := cfg.Overlay(content); err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	return nil
}
