package configloader

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/wronai/pactfix/pkg/config"
	"github.com/wronai/pactfix/pkg/langdetect"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "formats.enable[2]").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string

	// Line is the line number in the config file (if known).
	Line int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.FilePath != "" {
		if e.Line > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", e.FilePath, e.Line))
		} else {
			parts = append(parts, e.FilePath)
		}
	}

	if e.Field != "" {
		parts = append(parts, e.Field)
	}

	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues (e.g., unknown format IDs in disable).
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warn(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if !cfg.Output.Format.IsValid() {
		result.fail("output.format", cfg.Output.Format,
			"invalid format %q; must be one of: text, table, json, sarif, diff, msgpack", cfg.Output.Format)
	}
	if !cfg.Output.Color.IsValid() {
		result.fail("output.color", cfg.Output.Color,
			"invalid color mode %q; must be one of: auto, always, never", cfg.Output.Color)
	}
	if !cfg.Output.FailOn.IsValid() {
		result.fail("output.fail_on", cfg.Output.FailOn,
			"invalid threshold %q; must be one of: error, warning, none", cfg.Output.FailOn)
	}

	if cfg.Analyze.Jobs < 0 {
		result.fail("analyze.jobs", cfg.Analyze.Jobs, "jobs must be >= 0 (0 means auto)")
	}
	if cfg.Analyze.MaxDepth < 0 {
		result.fail("analyze.max_depth", cfg.Analyze.MaxDepth, "max_depth must be >= 0 (0 means default)")
	}
	if cfg.Annotate.MaxBefore < 0 {
		result.fail("annotate.max_before", cfg.Annotate.MaxBefore, "max_before must be >= 0")
	}
	if cfg.Annotate.MaxMessage < 0 {
		result.fail("annotate.max_message", cfg.Annotate.MaxMessage, "max_message must be >= 0")
	}
	if strings.ContainsAny(cfg.Annotate.Marker, "\r\n") {
		result.fail("annotate.marker", cfg.Annotate.Marker, "marker must be a single line")
	}

	validateFormats(cfg, result)
	validateFiles(cfg, result)

	return result
}

// validateFormats checks format IDs and override patterns.
func validateFormats(cfg *config.Config, result *ValidationResult) {
	for i, id := range cfg.Formats.Enable {
		if _, ok := langdetect.ResolveAlias(id); !ok {
			result.fail(fmt.Sprintf("formats.enable[%d]", i), id, "unknown format %q", id)
		}
	}
	for i, id := range cfg.Formats.Disable {
		resolved, ok := langdetect.ResolveAlias(id)
		if !ok {
			result.warn(fmt.Sprintf("formats.disable[%d]", i), id, "unknown format %q; it will be ignored", id)
			continue
		}
		if resolved == langdetect.Fallback {
			result.warn(fmt.Sprintf("formats.disable[%d]", i), id,
				"the %s fallback cannot be disabled; it will be ignored", langdetect.Fallback)
		}
	}
	for pattern, id := range cfg.Formats.Overrides {
		field := "formats.overrides." + pattern
		if !doublestar.ValidatePattern(pattern) {
			result.fail(field, pattern, "invalid glob pattern %q", pattern)
		}
		if _, ok := langdetect.ResolveAlias(id); !ok {
			result.fail(field, id, "unknown format %q", id)
		}
	}
}

// validateFiles checks that discovery patterns are valid globs.
func validateFiles(cfg *config.Config, result *ValidationResult) {
	check := func(list string, patterns []string) {
		for i, pattern := range patterns {
			if !doublestar.ValidatePattern(pattern) {
				result.fail(fmt.Sprintf("files.%s[%d]", list, i), pattern, "invalid glob pattern %q", pattern)
			}
		}
	}
	check("include", cfg.Files.Include)
	check("exclude", cfg.Files.Exclude)

	for i, ext := range cfg.Files.Extensions {
		if !strings.HasPrefix(ext, ".") {
			result.warn(fmt.Sprintf("files.extensions[%d]", i), ext, "extension %q should start with a dot", ext)
		}
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}
