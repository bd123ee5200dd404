// Package goldmark parses Markdown host documents with the goldmark library
// and exposes the block structure the markdown analyzer checks.
package goldmark

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Flavor identifies the Markdown flavor supported by the parser.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// Parser wraps a configured goldmark instance.
type Parser struct {
	flavor string
	md     goldmark.Markdown
}

// New creates a new goldmark-based parser for the given flavor.
// Supported flavors are "commonmark" and "gfm".
// Invalid flavors default to "commonmark".
func New(flavor string) *Parser {
	f := flavorOrDefault(flavor)
	return &Parser{
		flavor: f,
		md:     newGoldmarkInstance(f),
	}
}

// Flavor returns the configured Markdown flavor.
func (p *Parser) Flavor() string {
	return p.flavor
}

// Heading is an ATX or setext heading.
type Heading struct {
	Level int
	Line  int // 1-based
	Text  string
}

// CodeBlock is a fenced or indented code block as goldmark sees it.
type CodeBlock struct {
	Fenced   bool
	Language string
	Line     int // first content line, 1-based; 0 for an empty block
}

// Outline is the block structure of a document.
type Outline struct {
	Headings   []Heading
	CodeBlocks []CodeBlock
}

// Parse parses content and returns its outline.
// Returns an error only if ctx is cancelled.
func (p *Parser) Parse(ctx context.Context, content []byte) (*Outline, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	src := bytes.Clone(content)
	doc := p.md.Parser().Parse(text.NewReader(src), parser.WithContext(parser.NewContext()))
	lines := newLineIndex(src)

	out := &Outline{}
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			out.Headings = append(out.Headings, Heading{
				Level: node.Level,
				Line:  lines.of(firstOffset(node)),
				Text:  string(segmentText(node, src)),
			})
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			out.CodeBlocks = append(out.CodeBlocks, CodeBlock{
				Fenced:   true,
				Language: string(node.Language(src)),
				Line:     lines.of(firstOffset(node)),
			})
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			out.CodeBlocks = append(out.CodeBlocks, CodeBlock{Line: lines.of(firstOffset(node))})
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk document: %w", err)
	}
	return out, nil
}

// firstOffset returns the byte offset of the node's first line, or -1.
func firstOffset(n ast.Node) int {
	if lines := n.Lines(); lines != nil && lines.Len() > 0 {
		return lines.At(0).Start
	}
	return -1
}

func segmentText(n ast.Node, src []byte) []byte {
	var b bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(bytes.TrimRight(seg.Value(src), "\r\n"))
	}
	return b.Bytes()
}

// lineIndex maps byte offsets to 1-based line numbers.
type lineIndex []int

func newLineIndex(src []byte) lineIndex {
	idx := lineIndex{0}
	for i, c := range src {
		if c == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

// of returns the line containing offset, or 0 for a negative offset.
func (l lineIndex) of(offset int) int {
	if offset < 0 {
		return 0
	}
	lo, hi := 0, len(l)
	for lo+1 < hi {
		mid := (lo + hi) / 2
		if l[mid] <= offset {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo + 1
}

// flavorOrDefault returns the flavor if valid, otherwise defaults to CommonMark.
func flavorOrDefault(flavor string) string {
	switch flavor {
	case FlavorCommonMark, FlavorGFM:
		return flavor
	default:
		return FlavorCommonMark
	}
}

// newGoldmarkInstance creates a configured goldmark.Markdown instance.
//
//nolint:ireturn // goldmark.Markdown is an external interface type
func newGoldmarkInstance(flavor string) goldmark.Markdown {
	var opts []goldmark.Option

	switch flavor {
	case FlavorGFM:
		opts = append(opts, goldmark.WithExtensions(extension.GFM))
	case FlavorCommonMark:
		// No extensions for pure CommonMark.
	}

	return goldmark.New(opts...)
}
