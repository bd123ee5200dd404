package analyzers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"slices"
	"strings"

	"github.com/wronai/pactfix/pkg/fix"
	"github.com/wronai/pactfix/pkg/langdetect"
	"github.com/wronai/pactfix/pkg/lint"
)

//nolint:gochecknoglobals // compiled once
var jsonPythonLiteral = regexp.MustCompile(`\b(True|False|None)\b`)

//nolint:gochecknoglobals // read-only
var jsonLiterals = map[string]string{"True": "true", "False": "false", "None": "null"}

// JSON returns the JSON analyzer.
func JSON() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.JSON, Fn: analyzeJSON}
}

func analyzeJSON(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.JSON, code)
	ws := hygiene{tabs: "JSON002", trailing: "JSON003"}

	for n := 1; n <= f.Len(); n++ {
		ws.apply(f, n)
		jsonLiteralFix(f, n)
	}
	jsonTrailingCommas(f)

	text := fixedText(f)

	dups, offset, err := jsonScan(text)
	if err != nil {
		line, col := offsetPosition(text, offset)
		f.Error(line, col, "JSON001", "invalid JSON: "+err.Error())
	}
	if len(dups) > 0 {
		f.Warning(1, 1, "JSON006", "duplicate keys in JSON: "+strings.Join(dups, ", "))
	}

	return f.Result(), nil
}

// jsonLiteralFix rewrites Python literals outside strings.
func jsonLiteralFix(f *fix.LineFixer, n int) {
	line := f.Line(n)
	var b strings.Builder
	inString, escaped, changed := false, false, false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case escaped:
			escaped = false
		case inString && ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case !inString:
			if loc := jsonPythonLiteral.FindStringIndex(line[i:]); loc != nil && loc[0] == 0 &&
				(i == 0 || !isNameChar(line[i-1])) {
				b.WriteString(jsonLiterals[line[i:i+loc[1]]])
				i += loc[1] - 1
				changed = true
				continue
			}
		}
		b.WriteByte(ch)
	}
	if !changed {
		return
	}
	fixed := b.String()
	f.Error(n, 1, "JSON004", "True/False/None found: JSON requires true/false/null")
	f.Rewrite(n, fixed, "replaced True/False/None with true/false/null", strings.TrimSpace(line), strings.TrimSpace(fixed))
}

// jsonTrailingCommas removes commas whose next significant character closes
// an object or array. The fix lands on the comma's line.
func jsonTrailingCommas(f *fix.LineFixer) {
	type comma struct{ line, col int }
	var pending *comma
	var found []comma
	inString, escaped := false, false

	for n := 1; n <= f.Len(); n++ {
		line := f.Line(n)
		for i := 0; i < len(line); i++ {
			ch := line[i]
			switch {
			case escaped:
				escaped = false
				continue
			case inString && ch == '\\':
				escaped = true
				continue
			case ch == '"':
				inString = !inString
				pending = nil
				continue
			case inString, ch == ' ', ch == '\t', ch == '\r':
				continue
			}
			if (ch == '}' || ch == ']') && pending != nil {
				found = append(found, *pending)
			}
			pending = nil
			if ch == ',' {
				pending = &comma{line: n, col: i}
			}
		}
	}

	for i := len(found) - 1; i >= 0; i-- {
		c := found[i]
		line := f.Line(c.line)
		fixed := line[:c.col] + line[c.col+1:]
		if c.col == len(line)-1 {
			fixed = strings.TrimRight(fixed, " \t")
		}
		f.Warning(c.line, c.col+1, "JSON005", "trailing comma: remove the comma before } or ]")
		f.Rewrite(c.line, fixed, "removed trailing comma", strings.TrimSpace(line), strings.TrimSpace(fixed))
	}
}

var (
	errTrailingData  = errors.New("unexpected data after top-level value")
	errUnexpectedEnd = errors.New("unexpected end of input")
	errEmptyDocument = errors.New("empty document")
)

type jsonFrame struct {
	object    bool
	expectKey bool
	keys      map[string]bool
}

// jsonScan validates text and collects duplicate object keys. On failure it
// returns the byte offset of the error.
func jsonScan(text string) ([]string, int64, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var stack []*jsonFrame
	dupSet := make(map[string]bool)
	started := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			if !started {
				return nil, 0, errEmptyDocument
			}
			break
		}
		if err != nil {
			var syn *json.SyntaxError
			if errors.As(err, &syn) {
				return nil, max(syn.Offset-1, 0), err
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, int64(len(text)), errUnexpectedEnd
			}
			return nil, dec.InputOffset(), err
		}
		if started && len(stack) == 0 {
			return nil, dec.InputOffset() - 1, errTrailingData
		}
		started = true

		var top *jsonFrame
		if len(stack) > 0 {
			top = stack[len(stack)-1]
		}

		if top != nil && top.object && top.expectKey {
			if d, ok := tok.(json.Delim); ok && d == '}' {
				stack = stack[:len(stack)-1]
				markValueDone(stack)
				continue
			}
			key, _ := tok.(string)
			if top.keys[key] {
				dupSet[key] = true
			}
			top.keys[key] = true
			top.expectKey = false
			continue
		}

		switch d, _ := tok.(json.Delim); d {
		case '{':
			stack = append(stack, &jsonFrame{object: true, expectKey: true, keys: map[string]bool{}})
		case '[':
			stack = append(stack, &jsonFrame{})
		case '}', ']':
			stack = stack[:len(stack)-1]
			markValueDone(stack)
		default:
			markValueDone(stack)
		}
	}

	dups := make([]string, 0, len(dupSet))
	for k := range dupSet {
		dups = append(dups, k)
	}
	slices.Sort(dups)
	return dups, 0, nil
}

func markValueDone(stack []*jsonFrame) {
	if len(stack) > 0 && stack[len(stack)-1].object {
		stack[len(stack)-1].expectKey = true
	}
}

// offsetPosition converts a byte offset into a 1-based line and column.
func offsetPosition(text string, offset int64) (int, int) {
	offset = min(max(offset, 0), int64(len(text)))
	prefix := text[:offset]
	line := strings.Count(prefix, "\n") + 1
	col := len(prefix) - strings.LastIndex(prefix, "\n")
	return line, col
}
