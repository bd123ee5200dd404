package config

// OutputFormat specifies the report format.
type OutputFormat string

const (
	FormatText    OutputFormat = "text"
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatSARIF   OutputFormat = "sarif"
	FormatDiff    OutputFormat = "diff"
	FormatMsgpack OutputFormat = "msgpack"
)

// OutputFormats returns every report format.
func OutputFormats() []OutputFormat {
	return []OutputFormat{FormatText, FormatTable, FormatJSON, FormatSARIF, FormatDiff, FormatMsgpack}
}

// IsValid returns true if the format is known.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatTable, FormatJSON, FormatSARIF, FormatDiff, FormatMsgpack:
		return true
	default:
		return false
	}
}

// ColorMode controls styled output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// IsValid returns true if the mode is known.
func (m ColorMode) IsValid() bool {
	switch m {
	case ColorAuto, ColorAlways, ColorNever:
		return true
	default:
		return false
	}
}

// FailOn is the lowest issue severity that fails a run.
type FailOn string

const (
	FailOnError   FailOn = "error"
	FailOnWarning FailOn = "warning"
	FailOnNone    FailOn = "none"
)

// IsValid returns true if the threshold is known.
func (f FailOn) IsValid() bool {
	switch f {
	case FailOnError, FailOnWarning, FailOnNone:
		return true
	default:
		return false
	}
}
