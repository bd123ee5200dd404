package lint

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// LineRef is a 1-based line bound that may be missing or malformed.
// Edits decoded from untrusted JSON keep a LineRef with Valid=false instead of
// failing to decode, so the edit engine can skip them individually.
type LineRef struct {
	N     int
	Valid bool
}

// Line returns a valid LineRef for n.
func Line(n int) LineRef {
	return LineRef{N: n, Valid: true}
}

// InvalidLine is the zero LineRef, used for missing bounds.
var InvalidLine = LineRef{} //nolint:gochecknoglobals // immutable sentinel

// Shifted moves a valid line down by offset. Invalid lines stay invalid.
func (r LineRef) Shifted(offset int) LineRef {
	if !r.Valid {
		return r
	}
	return Line(r.N + offset)
}

// String returns the line number, or "?" when invalid.
func (r LineRef) String() string {
	if !r.Valid {
		return "?"
	}
	return strconv.Itoa(r.N)
}

// MarshalJSON encodes a valid line as a number and an invalid one as null.
func (r LineRef) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(r.N)), nil
}

// UnmarshalJSON accepts integers, integral floats and numeric strings.
// Anything else decodes to an invalid LineRef without error.
func (r *LineRef) UnmarshalJSON(data []byte) error {
	*r = InvalidLine

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil //nolint:nilerr // malformed bounds are tolerated
	}

	switch v := raw.(type) {
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			*r = Line(int(v))
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*r = Line(n)
		}
	}
	return nil
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (r LineRef) EncodeMsgpack(enc *msgpack.Encoder) error {
	if !r.Valid {
		return enc.EncodeNil()
	}
	return enc.EncodeInt(int64(r.N))
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (r *LineRef) DecodeMsgpack(dec *msgpack.Decoder) error {
	*r = InvalidLine

	raw, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return err
	}
	switch v := raw.(type) {
	case int64:
		*r = Line(int(v))
	case uint64:
		*r = Line(int(v))
	case float64:
		if v == math.Trunc(v) {
			*r = Line(int(v))
		}
	case string:
		if n, convErr := strconv.Atoi(strings.TrimSpace(v)); convErr == nil {
			*r = Line(n)
		}
	}
	return nil
}

// Edit is one line-range instruction for the edit engine.
//
// The inclusive range [StartLine, EndLine] is replaced by the lines of
// Replacement split on "\n". EndLine < StartLine inserts before StartLine.
// An empty Replacement removes the range. PreserveIndent keeps the original
// line's leading whitespace when exactly one line is replaced by one line.
type Edit struct {
	StartLine      LineRef `json:"startLine" msgpack:"startLine"`
	EndLine        LineRef `json:"endLine" msgpack:"endLine"`
	Replacement    string  `json:"replacement" msgpack:"replacement"`
	PreserveIndent bool    `json:"preserveIndent,omitempty" msgpack:"preserveIndent,omitempty"`
}

// ReplaceLine returns an edit replacing line n with text.
func ReplaceLine(n int, text string) Edit {
	return Edit{StartLine: Line(n), EndLine: Line(n), Replacement: text}
}

// ReplaceLineIndented is ReplaceLine with PreserveIndent set.
func ReplaceLineIndented(n int, text string) Edit {
	e := ReplaceLine(n, text)
	e.PreserveIndent = true
	return e
}

// ReplaceRange returns an edit replacing lines [start, end] with text.
func ReplaceRange(start, end int, text string) Edit {
	return Edit{StartLine: Line(start), EndLine: Line(end), Replacement: text}
}

// InsertBefore returns an edit inserting text before line n.
// Use n = lineCount+1 to append.
func InsertBefore(n int, text string) Edit {
	return Edit{StartLine: Line(n), EndLine: Line(n - 1), Replacement: text}
}

// DeleteLine returns an edit removing line n.
func DeleteLine(n int) Edit {
	return Edit{StartLine: Line(n), EndLine: Line(n)}
}

// IsInsertion reports whether the edit only inserts lines.
func (e Edit) IsInsertion() bool {
	return e.StartLine.Valid && e.EndLine.Valid && e.EndLine.N < e.StartLine.N
}

// Shifted returns a copy of the edit with both bounds moved by offset.
func (e Edit) Shifted(offset int) Edit {
	e.StartLine = e.StartLine.Shifted(offset)
	e.EndLine = e.EndLine.Shifted(offset)
	return e
}
