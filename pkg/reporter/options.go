package reporter

import (
	"io"
	"os"

	"github.com/wronai/pactfix/pkg/config"
)

// bufWriterSize is the buffer size for buffered output writers (64 KiB).
const bufWriterSize = 64 * 1024

// Options configures reporter behavior.
type Options struct {
	// Writer is the destination for output (typically os.Stdout).
	Writer io.Writer

	// Format specifies the output format.
	Format config.OutputFormat

	// Color controls styled output.
	Color config.ColorMode

	// ShowContext echoes the source line under each issue.
	ShowContext bool

	// ShowFixes lists proposed fixes under the issues of each file.
	ShowFixes bool

	// ShowSummary displays aggregate statistics after results.
	ShowSummary bool

	// DetailedSummary replaces the one-line summary with a block.
	DetailedSummary bool

	// Compact uses minified output where applicable.
	Compact bool

	// Version is the tool version written into JSON, MessagePack and SARIF.
	Version string
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Writer:      os.Stdout,
		Format:      config.FormatText,
		Color:       config.ColorAuto,
		ShowContext: true,
		ShowSummary: true,
		Version:     "dev",
	}
}
