package configloader

import "github.com/wronai/pactfix/pkg/config"

// Overrides carries values set on the command line. Nil fields leave the
// loaded configuration untouched, so an explicit --fix=false still wins over
// a config file that enables fixing.
type Overrides struct {
	Format   *config.OutputFormat
	Color    *config.ColorMode
	FailOn   *config.FailOn
	Fix      *bool
	Annotate *bool
	Backup   *bool
	Jobs     *int
	MaxDepth *int
	Marker   *string

	// Formats and Extensions replace the configured lists when non-nil.
	Enable     []string
	Disable    []string
	Extensions []string
	Include    []string
	Exclude    []string
}

// apply writes every set override onto cfg.
func (o *Overrides) apply(cfg *config.Config) {
	if o == nil || cfg == nil {
		return
	}

	if o.Format != nil {
		cfg.Output.Format = *o.Format
	}
	if o.Color != nil {
		cfg.Output.Color = *o.Color
	}
	if o.FailOn != nil {
		cfg.Output.FailOn = *o.FailOn
	}
	if o.Fix != nil {
		cfg.Analyze.Fix = *o.Fix
	}
	if o.Annotate != nil {
		cfg.Analyze.Annotate = *o.Annotate
	}
	if o.Backup != nil {
		cfg.Analyze.Backup = *o.Backup
	}
	if o.Jobs != nil {
		cfg.Analyze.Jobs = *o.Jobs
	}
	if o.MaxDepth != nil {
		cfg.Analyze.MaxDepth = *o.MaxDepth
	}
	if o.Marker != nil {
		cfg.Annotate.Marker = *o.Marker
	}

	if o.Enable != nil {
		cfg.Formats.Enable = o.Enable
	}
	if o.Disable != nil {
		cfg.Formats.Disable = o.Disable
	}
	if o.Extensions != nil {
		cfg.Files.Extensions = o.Extensions
	}
	if o.Include != nil {
		cfg.Files.Include = o.Include
	}
	if o.Exclude != nil {
		cfg.Files.Exclude = o.Exclude
	}
}

// Ptr returns a pointer to v, for building Overrides.
func Ptr[T any](v T) *T {
	return &v
}
