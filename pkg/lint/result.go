package lint

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Fix is one proposed textual change anchored at a line.
// Before and After are for display only; Edits are what the engine applies.
type Fix struct {
	Line        int
	Description string
	Before      string
	After       string
	// Edits holds the changes this fix owns. When several fixes touch the
	// same lines their changes merge into one edit, owned by the first of
	// them; the others carry no edits.
	Edits []Edit
	// Format is the format of the region the fix was made in, set when it
	// differs from the enclosing result's language, as for code blocks
	// inside markdown.
	Format string
}

// fixWire is the serialized shape of a Fix, carrying Message as an alias of
// Description for display consumers.
type fixWire struct {
	Line        int    `json:"line" msgpack:"line"`
	Description string `json:"description" msgpack:"description"`
	Message     string `json:"message" msgpack:"message"`
	Before      string `json:"before" msgpack:"before"`
	After       string `json:"after" msgpack:"after"`
	Edits       []Edit `json:"edits" msgpack:"edits"`
	Format      string `json:"format,omitempty" msgpack:"format,omitempty"`
}

func (f Fix) wire() fixWire {
	edits := f.Edits
	if edits == nil {
		edits = []Edit{}
	}
	return fixWire{
		Line:        f.Line,
		Description: f.Description,
		Message:     f.Description,
		Before:      f.Before,
		After:       f.After,
		Edits:       edits,
		Format:      f.Format,
	}
}

func (w fixWire) fix() Fix {
	desc := w.Description
	if desc == "" {
		desc = w.Message
	}
	return Fix{Line: w.Line, Description: desc, Before: w.Before, After: w.After, Edits: w.Edits, Format: w.Format}
}

// MarshalJSON implements json.Marshaler.
func (f Fix) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.wire())
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Fix) UnmarshalJSON(data []byte) error {
	var w fixWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*f = w.fix()
	return nil
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (f Fix) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(f.wire())
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (f *Fix) DecodeMsgpack(dec *msgpack.Decoder) error {
	var w fixWire
	if err := dec.Decode(&w); err != nil {
		return err
	}
	*f = w.fix()
	return nil
}

// Shifted returns a copy of the fix, and of each of its edits, moved down by
// offset lines. The receiver's edit slice is not shared with the copy.
func (f Fix) Shifted(offset int) Fix {
	out := f
	out.Line += offset
	out.Edits = make([]Edit, len(f.Edits))
	for i, e := range f.Edits {
		out.Edits[i] = e.Shifted(offset)
	}
	return out
}

// WithDescriptionPrefix returns a copy of the fix with prefix prepended.
func (f Fix) WithDescriptionPrefix(prefix string) Fix {
	if prefix != "" {
		f.Description = prefix + " " + f.Description
	}
	return f
}

// Result is the outcome of analyzing one document.
type Result struct {
	Language     string         `json:"language" msgpack:"language"`
	OriginalCode string         `json:"originalCode" msgpack:"originalCode"`
	FixedCode    string         `json:"fixedCode" msgpack:"fixedCode"`
	Errors       []Issue        `json:"errors" msgpack:"errors"`
	Warnings     []Issue        `json:"warnings" msgpack:"warnings"`
	Fixes        []Fix          `json:"fixes" msgpack:"fixes"`
	Context      map[string]any `json:"context" msgpack:"context"`
}

// NewResult returns an empty result for code whose fixed text equals the original.
func NewResult(language, code string) Result {
	return Result{
		Language:     language,
		OriginalCode: code,
		FixedCode:    code,
		Errors:       []Issue{},
		Warnings:     []Issue{},
		Fixes:        []Fix{},
		Context:      map[string]any{},
	}
}

// Normalize replaces nil collections with empty ones so serialized output is
// stable across formats.
func (r *Result) Normalize() {
	if r.Errors == nil {
		r.Errors = []Issue{}
	}
	if r.Warnings == nil {
		r.Warnings = []Issue{}
	}
	if r.Fixes == nil {
		r.Fixes = []Fix{}
	}
	if r.Context == nil {
		r.Context = map[string]any{}
	}
}

// AddIssue appends issue to Errors or Warnings based on its severity.
// Info issues are reported alongside warnings.
func (r *Result) AddIssue(issue Issue) {
	if issue.Severity == SeverityError {
		r.Errors = append(r.Errors, issue)
		return
	}
	r.Warnings = append(r.Warnings, issue)
}

// Issues returns errors followed by warnings, sorted by line then column.
func (r *Result) Issues() []Issue {
	all := make([]Issue, 0, len(r.Errors)+len(r.Warnings))
	all = append(all, r.Errors...)
	all = append(all, r.Warnings...)
	slices.SortStableFunc(all, func(a, b Issue) int {
		if a.Line != b.Line {
			return a.Line - b.Line
		}
		return a.Column - b.Column
	})
	return all
}

// Edits returns every edit of every fix, in fix order.
func (r *Result) Edits() []Edit {
	var edits []Edit
	for _, f := range r.Fixes {
		edits = append(edits, f.Edits...)
	}
	return edits
}

// HasChanges reports whether the fixed text differs from the original.
func (r *Result) HasChanges() bool {
	return r.FixedCode != r.OriginalCode
}

// MaxSeverity returns the highest severity among the result's issues, or ""
// when there are none.
func (r *Result) MaxSeverity() Severity {
	var top Severity
	for _, issue := range r.Errors {
		if issue.Severity.Rank() > top.Rank() {
			top = issue.Severity
		}
	}
	for _, issue := range r.Warnings {
		if issue.Severity.Rank() > top.Rank() {
			top = issue.Severity
		}
	}
	return top
}

// Lines splits text the way the edit engine does.
func Lines(text string) []string {
	return strings.Split(text, "\n")
}
