// Package config defines core configuration types for pactfix.
// These types are plain data with yaml tags; discovery and layering live in
// internal/configloader.
package config

import (
	"maps"
	"slices"

	"github.com/wronai/pactfix/pkg/annotate"
	"github.com/wronai/pactfix/pkg/langdetect"
)

// DefaultMaxDepth bounds nested document analysis.
const DefaultMaxDepth = 8

// OutputConfig controls reporting.
type OutputConfig struct {
	// Format is the report format.
	Format OutputFormat `yaml:"format"`

	// Color is auto, always or never.
	Color ColorMode `yaml:"color"`

	// FailOn is the lowest severity that makes the run fail.
	FailOn FailOn `yaml:"fail_on"`
}

// AnalyzeConfig controls the analysis run.
type AnalyzeConfig struct {
	// Fix writes fixed text back to the analyzed files.
	Fix bool `yaml:"fix"`

	// Annotate adds a comment above every fixed line.
	Annotate bool `yaml:"annotate"`

	// Backup keeps a sidecar copy of every file before fixing it.
	Backup bool `yaml:"backup"`

	// Jobs is the number of files analyzed in parallel. 0 means one per CPU.
	Jobs int `yaml:"jobs"`

	// MaxDepth bounds nested analysis.
	MaxDepth int `yaml:"max_depth"`
}

// AnnotateConfig controls fix comments.
type AnnotateConfig struct {
	Marker     string `yaml:"marker"`
	MaxBefore  int    `yaml:"max_before"`
	MaxMessage int    `yaml:"max_message"`
}

// FormatsConfig selects analyzers and classification overrides.
type FormatsConfig struct {
	// Enable lists the formats with an active analyzer. Empty means all.
	Enable []string `yaml:"enable,omitempty"`

	// Disable lists formats whose rules are turned off. Their documents are
	// passed through unchanged.
	Disable []string `yaml:"disable,omitempty"`

	// Overrides maps a glob to the format of matching files.
	Overrides map[string]string `yaml:"overrides,omitempty"`
}

// FilesConfig controls file discovery.
type FilesConfig struct {
	Include        []string `yaml:"include,omitempty"`
	Exclude        []string `yaml:"exclude,omitempty"`
	Extensions     []string `yaml:"extensions,omitempty"`
	FollowSymlinks bool     `yaml:"follow_symlinks"`
}

// Config is the root configuration structure for pactfix.
type Config struct {
	Output   OutputConfig   `yaml:"output"`
	Analyze  AnalyzeConfig  `yaml:"analyze"`
	Annotate AnnotateConfig `yaml:"annotate"`
	Formats  FormatsConfig  `yaml:"formats"`
	Files    FilesConfig    `yaml:"files"`
}

// NewConfig returns a Config with the defaults.
func NewConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format: FormatText,
			Color:  ColorAuto,
			FailOn: FailOnError,
		},
		Analyze: AnalyzeConfig{
			MaxDepth: DefaultMaxDepth,
		},
		Annotate: AnnotateConfig{
			Marker:     annotate.DefaultMarker,
			MaxBefore:  annotate.DefaultMaxBefore,
			MaxMessage: annotate.DefaultMaxMessage,
		},
		Formats: FormatsConfig{
			Overrides: make(map[string]string),
		},
		Files: FilesConfig{
			Exclude: []string{"**/node_modules/**", "**/vendor/**"},
		},
	}
}

// Annotator returns an annotator with the configured settings.
func (c *Config) Annotator() *annotate.Annotator {
	a := annotate.New()
	if c.Annotate.Marker != "" {
		a.Marker = c.Annotate.Marker
	}
	if c.Annotate.MaxBefore > 0 {
		a.MaxBefore = c.Annotate.MaxBefore
	}
	if c.Annotate.MaxMessage > 0 {
		a.MaxMessage = c.Annotate.MaxMessage
	}
	return a
}

// ClassifierOverrides returns the format overrides in a stable order.
func (c *Config) ClassifierOverrides() []langdetect.Override {
	patterns := slices.Sorted(maps.Keys(c.Formats.Overrides))
	out := make([]langdetect.Override, 0, len(patterns))
	for _, p := range patterns {
		format := c.Formats.Overrides[p]
		if id, ok := langdetect.ResolveAlias(format); ok {
			format = id
		}
		out = append(out, langdetect.Override{Pattern: p, Format: format})
	}
	return out
}
