package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/wronai/pactfix/pkg/config"
)

// envVarPrefix is the prefix for all pactfix environment variables.
const envVarPrefix = "PACTFIX_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
)

// envMapping defines environment variable to config field mappings.
type envMapping struct {
	field string
	typ   envFieldType
	help  string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"FORMAT":    {field: "output.format", typ: envTypeString, help: "Report format: text, table, json, sarif, diff or msgpack"},
	"COLOR":     {field: "output.color", typ: envTypeString, help: "Styled output: auto, always or never"},
	"FAIL_ON":   {field: "output.fail_on", typ: envTypeString, help: "Failing severity: error, warning or none"},
	"FIX":       {field: "analyze.fix", typ: envTypeBool, help: "Write fixed files: true or false"},
	"ANNOTATE":  {field: "analyze.annotate", typ: envTypeBool, help: "Annotate fixed lines: true or false"},
	"BACKUP":    {field: "analyze.backup", typ: envTypeBool, help: "Keep a backup of fixed files: true or false"},
	"JOBS":      {field: "analyze.jobs", typ: envTypeInt, help: "Number of parallel workers (0 = auto)"},
	"MAX_DEPTH": {field: "analyze.max_depth", typ: envTypeInt, help: "Deepest nested document level analyzed"},
	"MARKER":    {field: "annotate.marker", typ: envTypeString, help: "Marker word in fix comments"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with PACTFIX_ (e.g., PACTFIX_FORMAT).
// A nil getenv reads the process environment.
func LoadFromEnv(cfg *config.Config, getenv func(string) string) error {
	if cfg == nil {
		return nil
	}
	if getenv == nil {
		getenv = os.Getenv
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value := getenv(envVar)
		if value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// setStringField sets a string field on the config by field path.
func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "output.format":
		cfg.Output.Format = config.OutputFormat(value)
	case "output.color":
		cfg.Output.Color = config.ColorMode(value)
	case "output.fail_on":
		cfg.Output.FailOn = config.FailOn(value)
	case "annotate.marker":
		cfg.Annotate.Marker = value
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

// setBoolField sets a boolean field on the config by field path.
func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "analyze.fix":
		cfg.Analyze.Fix = value
	case "analyze.annotate":
		cfg.Analyze.Annotate = value
	case "analyze.backup":
		cfg.Analyze.Backup = value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

// setIntField sets an integer field on the config by field path.
func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "analyze.jobs":
		cfg.Analyze.Jobs = value
	case "analyze.max_depth":
		cfg.Analyze.MaxDepth = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// EnvVar describes one supported environment variable.
type EnvVar struct {
	Name  string
	Field string
	Help  string
}

// ListEnvVars returns every supported environment variable, sorted by name.
func ListEnvVars() []EnvVar {
	vars := make([]EnvVar, 0, len(envMappings))
	for suffix, mapping := range envMappings {
		vars = append(vars, EnvVar{Name: envVarPrefix + suffix, Field: mapping.field, Help: mapping.help})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	return vars
}
