// Package pretty renders pactfix reports for terminals with Lipgloss.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/wronai/pactfix/pkg/config"
	"github.com/wronai/pactfix/pkg/lint"
)

// Styles holds the renderers shared by the text, diff and table reporters.
type Styles struct {
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// One issue line: "path [format]  line:col  severity message (CODE)".
	FilePath   lipgloss.Style
	Format     lipgloss.Style
	Location   lipgloss.Style
	Code       lipgloss.Style
	Message    lipgloss.Style
	FixNote    lipgloss.Style
	SourceLine lipgloss.Style
	Caret      lipgloss.Style

	// Unified diff of original against fixed text.
	DiffHeader  lipgloss.Style
	DiffHunk    lipgloss.Style
	DiffAdd     lipgloss.Style
	DiffRemove  lipgloss.Style
	DiffContext lipgloss.Style

	SummaryTitle lipgloss.Style
	SummaryValue lipgloss.Style
	Success      lipgloss.Style
	Failure      lipgloss.Style

	// Table rows take the color of their issue's severity.
	TableHeader    lipgloss.Style
	TableErrorRow  lipgloss.Style
	TableWarnRow   lipgloss.Style
	TableInfoRow   lipgloss.Style
	TableFixable   lipgloss.Style
	TableLegend    lipgloss.Style
	TableSeparator lipgloss.Style

	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// palette is the set of colors a Styles is built from. The zero palette
// renders plain text.
type palette struct {
	emphasis bool

	errColor, warnColor, infoColor lipgloss.TerminalColor
	okColor, mutedColor, textColor lipgloss.TerminalColor
	formatColor, hunkColor         lipgloss.TerminalColor
}

//nolint:gochecknoglobals // ANSI 256 palette
var ansiPalette = palette{
	emphasis:    true,
	errColor:    lipgloss.Color("9"),
	warnColor:   lipgloss.Color("11"),
	infoColor:   lipgloss.Color("12"),
	okColor:     lipgloss.Color("10"),
	mutedColor:  lipgloss.Color("8"),
	textColor:   lipgloss.Color("7"),
	formatColor: lipgloss.Color("13"),
	hunkColor:   lipgloss.Color("14"),
}

// NewStyles returns styles for colored or plain output.
func NewStyles(colorEnabled bool) *Styles {
	if colorEnabled {
		return ansiPalette.styles()
	}
	return palette{}.styles()
}

func (p palette) fg(c lipgloss.TerminalColor) lipgloss.Style {
	if c == nil {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(c)
}

func (p palette) bold(s lipgloss.Style) lipgloss.Style {
	if !p.emphasis {
		return s
	}
	return s.Bold(true)
}

func (p palette) italic(s lipgloss.Style) lipgloss.Style {
	if !p.emphasis {
		return s
	}
	return s.Italic(true)
}

func (p palette) styles() *Styles {
	muted := p.fg(p.mutedColor)
	return &Styles{
		Error:   p.bold(p.fg(p.errColor)),
		Warning: p.bold(p.fg(p.warnColor)),
		Info:    p.bold(p.fg(p.infoColor)),

		FilePath:   p.bold(lipgloss.NewStyle()),
		Format:     p.fg(p.formatColor),
		Location:   muted,
		Code:       muted,
		Message:    lipgloss.NewStyle(),
		FixNote:    p.italic(p.fg(p.okColor)),
		SourceLine: p.fg(p.textColor),
		Caret:      p.fg(p.errColor),

		DiffHeader:  p.bold(lipgloss.NewStyle()),
		DiffHunk:    p.fg(p.hunkColor),
		DiffAdd:     p.fg(p.okColor),
		DiffRemove:  p.fg(p.errColor),
		DiffContext: muted,

		SummaryTitle: p.bold(lipgloss.NewStyle()),
		SummaryValue: lipgloss.NewStyle(),
		Success:      p.bold(p.fg(p.okColor)),
		Failure:      p.bold(p.fg(p.errColor)),

		TableHeader:    p.bold(p.fg(p.textColor)),
		TableErrorRow:  p.fg(p.errColor),
		TableWarnRow:   p.fg(p.warnColor),
		TableInfoRow:   p.fg(p.infoColor),
		TableFixable:   p.fg(p.okColor),
		TableLegend:    p.italic(muted),
		TableSeparator: muted,

		Dim:  muted,
		Bold: p.bold(lipgloss.NewStyle()),
	}
}

// Row returns the table row style for an issue of severity sev.
func (s *Styles) Row(sev lint.Severity) lipgloss.Style {
	switch sev {
	case lint.SeverityError:
		return s.TableErrorRow
	case lint.SeverityWarning:
		return s.TableWarnRow
	case lint.SeverityInfo:
		return s.TableInfoRow
	default:
		return lipgloss.NewStyle()
	}
}

// IsColorEnabled reports whether output to writer should be styled.
// In auto mode, color is enabled only if the writer is a TTY and NO_COLOR is
// not set.
func IsColorEnabled(mode config.ColorMode, writer io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		// https://no-color.org/
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := writer.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}
