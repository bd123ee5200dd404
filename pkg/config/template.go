package config

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/wronai/pactfix/pkg/langdetect"
)

// commentWrapWidth is the maximum width for wrapped comments in templates.
const commentWrapWidth = 70

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full lists every supported format. A minimal template only shows the
	// common settings.
	Full bool
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# pactfix configuration
# Place this file at .pactfix.yml in the project root.`
}

// GenerateTemplate creates a commented configuration file.
func GenerateTemplate(opts TemplateOptions) []byte {
	var buf bytes.Buffer
	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString(`

output:
  # Report format: text, table, json, sarif, diff or msgpack
  format: text
  # Styled output: auto, always or never
  color: auto
  # Lowest severity that fails the run: error, warning or none
  fail_on: error

analyze:
  # Write fixed files back to disk
  fix: false
  # Add a "pactfix:" comment above every fixed line
  annotate: false
  # Keep a <file>.pactfix.bak copy of every fixed file
  backup: false
  # Files analyzed in parallel (0 = one per CPU)
  jobs: 0
  # Deepest level of nested documents analyzed
  max_depth: 8

annotate:
  marker: pactfix
  max_before: 80
  max_message: 220

files:
  # include:
  #   - "deploy/**"
  exclude:
    - "**/node_modules/**"
    - "**/vendor/**"
  # follow_symlinks: false
`)

	if !opts.Full {
		return buf.Bytes()
	}

	buf.WriteString(`
formats:
  # Formats with an active analyzer (empty = all). Documents in a disabled
  # format are passed through unchanged.
  # enable: []
  # disable: []
  # Force a format for matching files
  # overrides:
  #   "ci/*.yml": github-actions
  #
`)
	buf.WriteString("  # Supported formats:\n")
	buf.WriteString("  #   " + wrapComment(strings.Join(langdetect.SupportedFormats(), ", "), commentWrapWidth, "  #   ") + "\n")
	buf.WriteString("  #\n  # Fence and language aliases:\n")
	for _, line := range aliasLines() {
		fmt.Fprintf(&buf, "  #   %s\n", line)
	}
	return buf.Bytes()
}

func aliasLines() []string {
	byFormat := make(map[string][]string)
	for alias, id := range langdetect.Aliases() {
		byFormat[id] = append(byFormat[id], alias)
	}
	var lines []string
	for _, id := range langdetect.SupportedFormats() {
		aliases := byFormat[id]
		if len(aliases) == 0 {
			continue
		}
		slices.Sort(aliases)
		lines = append(lines, id+": "+strings.Join(aliases, ", "))
	}
	return lines
}

// wrapComment wraps text to maxWidth, continuing lines with prefix.
func wrapComment(text string, maxWidth int, prefix string) string {
	if len(text) <= maxWidth {
		return text
	}

	var lines []string
	currentLine := ""
	for _, word := range strings.Fields(text) {
		switch {
		case currentLine == "":
			currentLine = word
		case len(currentLine)+1+len(word) <= maxWidth:
			currentLine += " " + word
		default:
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}
	return strings.Join(lines, "\n"+prefix)
}
