// Package langdetect classifies a document into one of the supported format
// IDs from its filename and content. Classification is deterministic and
// total: with nothing matching it returns Fallback.
//
// Filename rules always beat content rules. Content rules are evaluated in
// table order and the first match wins. go-enry resolves shebang interpreters
// and file extensions that the built-in tables do not cover.
package langdetect

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-enry/go-enry/v2"
)

// Override maps a filename glob to a format, ahead of the built-in rules.
type Override struct {
	Pattern string
	Format  string
}

// Decision sources.
const (
	SourceOverride  = "override"
	SourceFilename  = "filename"
	SourceContent   = "content"
	SourceExtension = "extension"
	SourceFallback  = "fallback"
)

// Decision records how a document was classified.
type Decision struct {
	Format string
	Source string
	// Rule names the matching rule or pattern.
	Rule string
}

// Classifier maps documents to format IDs.
type Classifier struct {
	overrides []Override
}

// NewClassifier returns a classifier that checks overrides first. Patterns
// use doublestar syntax and are matched against the slash-separated filename
// and against its base name.
func NewClassifier(overrides ...Override) (*Classifier, error) {
	for _, o := range overrides {
		if !doublestar.ValidatePattern(o.Pattern) {
			return nil, fmt.Errorf("invalid format override pattern %q", o.Pattern)
		}
		if !IsSupported(o.Format) {
			return nil, fmt.Errorf("format override %q: unsupported format %q", o.Pattern, o.Format)
		}
	}
	return &Classifier{overrides: append([]Override(nil), overrides...)}, nil
}

// Classify returns the format ID for text with an optional filename hint.
func (c *Classifier) Classify(text, filename string) string {
	return c.Explain(text, filename).Format
}

// Explain classifies text and reports which rule decided.
func (c *Classifier) Explain(text, filename string) Decision {
	if filename != "" {
		if d, ok := c.byFilename(text, filename); ok {
			return d
		}
	}

	sample := NewSample(text)
	for _, r := range contentRules {
		if format, ok := r.Apply(sample); ok {
			return Decision{Format: format, Source: SourceContent, Rule: r.Name}
		}
	}

	if filename != "" {
		if lang, _ := enry.GetLanguageByExtension(filename); lang != "" {
			if format, ok := normalizeEnry(lang); ok {
				return Decision{Format: format, Source: SourceExtension, Rule: lang}
			}
		}
	}

	return Decision{Format: Fallback, Source: SourceFallback}
}

func (c *Classifier) byFilename(text, filename string) (Decision, bool) {
	hint := newFileHint(filename, text)

	if c != nil {
		slashed := strings.ReplaceAll(filename, "\\", "/")
		base := path.Base(slashed)
		for _, o := range c.overrides {
			if matchGlob(o.Pattern, slashed) || matchGlob(o.Pattern, base) {
				return Decision{Format: o.Format, Source: SourceOverride, Rule: o.Pattern}, true
			}
		}
	}

	for _, r := range filenameRules {
		if format := r.match(hint); format != "" {
			return Decision{Format: format, Source: SourceFilename, Rule: r.name}, true
		}
	}
	return Decision{}, false
}

func matchGlob(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}

//nolint:gochecknoglobals // stateless default
var defaultClassifier = &Classifier{}

// Classify classifies text with the built-in rules only.
func Classify(text, filename string) string {
	return defaultClassifier.Classify(text, filename)
}

// Explain reports how the built-in rules classify text.
func Explain(text, filename string) Decision {
	return defaultClassifier.Explain(text, filename)
}
