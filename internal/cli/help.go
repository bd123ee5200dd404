package cli

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/wronai/pactfix/internal/ui/pretty"
	"github.com/wronai/pactfix/pkg/config"
)

// HelpStyles holds the Lipgloss styles used by command help.
type HelpStyles struct {
	Command     lipgloss.Style
	Heading     lipgloss.Style
	Subcommand  lipgloss.Style
	Flag        lipgloss.Style
	Description lipgloss.Style
	Example     lipgloss.Style
	Dim         lipgloss.Style
}

// NewHelpStyles returns colored styles, or plain ones when color is off.
func NewHelpStyles(colorEnabled bool) *HelpStyles {
	plain := lipgloss.NewStyle()
	if !colorEnabled {
		return &HelpStyles{
			Command:     plain,
			Heading:     plain,
			Subcommand:  plain,
			Flag:        plain,
			Description: plain,
			Example:     plain,
			Dim:         plain,
		}
	}
	return &HelpStyles{
		Command:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Heading:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Subcommand:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Flag:        lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Description: plain,
		Example:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Dim:         lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// HelpFormatter renders styled help for Cobra commands.
type HelpFormatter struct {
	styles *HelpStyles
}

// NewHelpFormatter creates a help formatter for writer.
func NewHelpFormatter(mode config.ColorMode, writer io.Writer) *HelpFormatter {
	return &HelpFormatter{styles: NewHelpStyles(pretty.IsColorEnabled(mode, writer))}
}

const usageTemplate = `{{ heading "Usage:" }}
  {{if .Runnable}}{{ command .UseLine }}{{end}}
  {{if .HasAvailableSubCommands}}{{ command .CommandPath }} [command]{{end}}

{{- if .HasExample}}

{{ heading "Examples:" }}
{{ example .Example }}
{{- end}}

{{- if .HasAvailableSubCommands}}

{{ heading "Commands:" }}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{ subcommand (rpad .Name .NamePadding) }} {{ description .Short }}{{end}}{{end}}
{{- end}}

{{- if .HasAvailableLocalFlags}}

{{ heading "Flags:" }}
{{ flags .LocalFlags }}
{{- end}}

{{- if .HasAvailableInheritedFlags}}

{{ heading "Global Flags:" }}
{{ flags .InheritedFlags }}
{{- end}}

{{- if .HasAvailableSubCommands}}

Use "{{ command (print .CommandPath " [command] --help") }}" for more information about a command.
{{- end}}
`

const helpTemplate = `{{with (or .Long .Short)}}{{ . | trimTrailingWhitespaces }}

{{end}}` + usageTemplate

func (h *HelpFormatter) funcs() template.FuncMap {
	return template.FuncMap{
		"command":                 h.styles.Command.Render,
		"heading":                 h.styles.Heading.Render,
		"subcommand":              h.styles.Subcommand.Render,
		"description":             h.styles.Description.Render,
		"example":                 h.styles.Example.Render,
		"flags":                   h.styleFlags,
		"rpad":                    rpad,
		"trimTrailingWhitespaces": trimTrailingWhitespaces,
	}
}

// styleFlags styles the pflag usage block of a flag set.
func (h *HelpFormatter) styleFlags(flags interface{ FlagUsages() string }) string {
	usages := strings.TrimSuffix(flags.FlagUsages(), "\n")
	if usages == "" {
		return ""
	}
	lines := strings.Split(usages, "\n")
	for i, line := range lines {
		lines[i] = h.styleFlagLine(line)
	}
	return strings.Join(lines, "\n")
}

// styleFlagLine styles one "  -f, --flag type   description" line.
func (h *HelpFormatter) styleFlagLine(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	if trimmed == "" {
		return line
	}
	indent := line[:len(line)-len(trimmed)]

	// The description starts after the first run of two or more spaces.
	idx := strings.Index(trimmed, "  ")
	if idx < 0 {
		return line
	}
	definition := trimmed[:idx]
	desc := strings.TrimLeft(trimmed[idx:], " ")

	tokens := strings.Fields(definition)
	for i, token := range tokens {
		if !strings.HasPrefix(token, "-") {
			tokens[i] = h.styles.Dim.Render(token)
			continue
		}
		name, comma := strings.CutSuffix(token, ",")
		tokens[i] = h.styles.Flag.Render(name)
		if comma {
			tokens[i] += ","
		}
	}

	return indent + strings.Join(tokens, " ") + "   " + h.styles.Description.Render(desc)
}

// ApplyToCommand installs the styled templates on cmd and its subcommands.
func (h *HelpFormatter) ApplyToCommand(cmd *cobra.Command) {
	funcs := h.funcs()

	render := func(name, text string, command *cobra.Command) error {
		tmpl, err := template.New(name).Funcs(funcs).Parse(text)
		if err != nil {
			return fmt.Errorf("parse %s template: %w", name, err)
		}
		return tmpl.Execute(command.OutOrStdout(), command)
	}

	cmd.SetUsageFunc(func(command *cobra.Command) error {
		return render("usage", usageTemplate, command)
	})
	cmd.SetHelpFunc(func(command *cobra.Command, _ []string) {
		if err := render("help", helpTemplate, command); err != nil {
			command.PrintErrln(err)
		}
	})
}

func rpad(str string, padding int) string {
	if len(str) >= padding {
		return str
	}
	return str + strings.Repeat(" ", padding-len(str))
}

func trimTrailingWhitespaces(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
