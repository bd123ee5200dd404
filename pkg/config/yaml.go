package config

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// YAMLIndent returns the default YAML indentation.
func YAMLIndent() int {
	return 2
}

// ToYAML serializes the configuration to YAML format.
func (c *Config) ToYAML() ([]byte, error) {
	if c == nil {
		return nil, nil
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(YAMLIndent())

	if err := encoder.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}

	return buf.Bytes(), nil
}

// ToYAMLWithHeader serializes the configuration with a header comment.
func (c *Config) ToYAMLWithHeader(header string) ([]byte, error) {
	yamlBytes, err := c.ToYAML()
	if err != nil {
		return nil, err
	}
	if header == "" {
		return yamlBytes, nil
	}

	var buf bytes.Buffer
	buf.WriteString(header)
	if header[len(header)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.Write(yamlBytes)
	return buf.Bytes(), nil
}

// FromYAML parses a configuration from YAML bytes. Fields the document does
// not set are zero.
func FromYAML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := cfg.Overlay(data); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Overlay decodes data on top of c. Fields absent from data keep their
// current values; lists present in data replace the current ones and
// overrides are merged key by key.
func (c *Config) Overlay(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if c.Formats.Overrides == nil {
		c.Formats.Overrides = make(map[string]string)
	}
	return nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := *c
	clone.Formats.Enable = slices.Clone(c.Formats.Enable)
	clone.Formats.Disable = slices.Clone(c.Formats.Disable)
	clone.Formats.Overrides = maps.Clone(c.Formats.Overrides)
	clone.Files.Include = slices.Clone(c.Files.Include)
	clone.Files.Exclude = slices.Clone(c.Files.Exclude)
	clone.Files.Extensions = slices.Clone(c.Files.Extensions)
	return &clone
}
