package fix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wronai/pactfix/pkg/fix"
	"github.com/wronai/pactfix/pkg/lint"
)

func TestValidateEdits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		edit    lint.Edit
		wantErr string
	}{
		{name: "valid replace", edit: lint.ReplaceLine(2, "x")},
		{name: "valid append", edit: lint.InsertBefore(4, "x")},
		{name: "valid delete", edit: lint.DeleteLine(3)},
		{name: "missing start", edit: lint.Edit{EndLine: lint.Line(1)}, wantErr: "start line is missing"},
		{name: "missing end", edit: lint.Edit{StartLine: lint.Line(1)}, wantErr: "end line is missing"},
		{name: "start zero", edit: lint.ReplaceLine(0, "x"), wantErr: "before the first line"},
		{name: "start past end", edit: lint.ReplaceLine(5, "x"), wantErr: "past the end of a 3-line document"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			errs := fix.ValidateEdits([]lint.Edit{tt.edit}, 3)
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0].Error(), tt.wantErr)

			var verr *fix.ValidationError
			require.ErrorAs(t, errs[0], &verr)
			assert.Equal(t, tt.edit, verr.Edit)
		})
	}
}

func TestValidateEdits_ReportsAll(t *testing.T) {
	t.Parallel()

	errs := fix.ValidateEdits([]lint.Edit{
		lint.ReplaceLine(0, "a"),
		lint.ReplaceLine(1, "ok"),
		{Replacement: "b"},
		lint.ReplaceLine(9, "c"),
	}, 2)
	assert.Len(t, errs, 3)
}

func TestDetectOverlaps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		edits []lint.Edit
		want  int
	}{
		{
			name:  "disjoint",
			edits: []lint.Edit{lint.ReplaceLine(1, "a"), lint.ReplaceLine(2, "b")},
			want:  0,
		},
		{
			name:  "range covers line",
			edits: []lint.Edit{lint.ReplaceRange(1, 3, "x"), lint.ReplaceLine(2, "b")},
			want:  1,
		},
		{
			name:  "identical edits",
			edits: []lint.Edit{lint.ReplaceLine(2, "b"), lint.ReplaceLine(2, "b")},
			want:  0,
		},
		{
			name:  "insertion never overlaps",
			edits: []lint.Edit{lint.InsertBefore(2, "x"), lint.ReplaceLine(2, "b")},
			want:  0,
		},
		{
			name:  "invalid bounds ignored",
			edits: []lint.Edit{{Replacement: "x"}, lint.ReplaceLine(2, "b")},
			want:  0,
		},
		{
			name:  "same line different text",
			edits: []lint.Edit{lint.ReplaceLine(2, "b"), lint.ReplaceLine(2, "c")},
			want:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := fix.DetectOverlaps(tt.edits)
			assert.Len(t, got, tt.want)
			for _, o := range got {
				assert.Contains(t, o.Error(), "overlapping edits")
			}
		})
	}
}
