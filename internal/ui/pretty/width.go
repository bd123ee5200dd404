package pretty

import (
	"io"
	"os"

	"golang.org/x/term"
)

// DefaultTermWidth is used when the writer is not a terminal.
const DefaultTermWidth = 100

// TerminalWidth returns the column count of the terminal behind w.
func TerminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return DefaultTermWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return DefaultTermWidth
	}
	return width
}
