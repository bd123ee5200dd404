package goldmark

import (
	"context"
	"testing"
)

func TestParser_New(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		flavor     string
		wantFlavor string
	}{
		{"commonmark", FlavorCommonMark, FlavorCommonMark},
		{"gfm", FlavorGFM, FlavorGFM},
		{"invalid defaults to commonmark", "invalid", FlavorCommonMark},
		{"empty defaults to commonmark", "", FlavorCommonMark},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := New(tt.flavor)

			if p.Flavor() != tt.wantFlavor {
				t.Errorf("Flavor() = %q, want %q", p.Flavor(), tt.wantFlavor)
			}
		})
	}
}

func TestParser_Parse_Headings(t *testing.T) {
	t.Parallel()

	content := []byte("# Title\n\nText\n\n### Deep\n\nSetext\n------\n")
	outline, err := New(FlavorGFM).Parse(context.Background(), content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []Heading{
		{Level: 1, Line: 1, Text: "Title"},
		{Level: 3, Line: 5, Text: "Deep"},
		{Level: 2, Line: 7, Text: "Setext"},
	}
	if len(outline.Headings) != len(want) {
		t.Fatalf("got %d headings, want %d: %+v", len(outline.Headings), len(want), outline.Headings)
	}
	for i, h := range want {
		if outline.Headings[i] != h {
			t.Errorf("Headings[%d] = %+v, want %+v", i, outline.Headings[i], h)
		}
	}
}

func TestParser_Parse_IgnoresHeadingsInFences(t *testing.T) {
	t.Parallel()

	content := []byte("# One\n\n```bash\n# not a heading\necho hi\n```\n")
	outline, err := New(FlavorCommonMark).Parse(context.Background(), content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(outline.Headings) != 1 {
		t.Errorf("got %d headings, want 1", len(outline.Headings))
	}
	if len(outline.CodeBlocks) != 1 {
		t.Fatalf("got %d code blocks, want 1", len(outline.CodeBlocks))
	}
	cb := outline.CodeBlocks[0]
	if !cb.Fenced || cb.Language != "bash" || cb.Line != 4 {
		t.Errorf("CodeBlocks[0] = %+v, want fenced bash block at line 4", cb)
	}
}

func TestParser_Parse_Empty(t *testing.T) {
	t.Parallel()

	outline, err := New(FlavorCommonMark).Parse(context.Background(), nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(outline.Headings) != 0 || len(outline.CodeBlocks) != 0 {
		t.Errorf("expected empty outline, got %+v", outline)
	}
}

func TestParser_Parse_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(FlavorCommonMark).Parse(ctx, []byte("# x")); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestLineIndex(t *testing.T) {
	t.Parallel()

	idx := newLineIndex([]byte("ab\ncd\n\nef"))
	tests := []struct {
		offset int
		want   int
	}{
		{-1, 0},
		{0, 1},
		{2, 1},
		{3, 2},
		{6, 3},
		{7, 4},
		{8, 4},
	}
	for _, tt := range tests {
		if got := idx.of(tt.offset); got != tt.want {
			t.Errorf("of(%d) = %d, want %d", tt.offset, got, tt.want)
		}
	}
}
