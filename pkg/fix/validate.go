package fix

import (
	"fmt"
	"slices"

	"github.com/wronai/pactfix/pkg/lint"
)

// ValidationError describes an edit that ApplyEdits will skip.
type ValidationError struct {
	Edit    lint.Edit
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid edit [%s:%s]: %s", e.Edit.StartLine, e.Edit.EndLine, e.Message)
}

// OverlapError describes two replacement edits whose ranges intersect.
// Overlapping edits are still applied; the report exists for diagnostics.
type OverlapError struct {
	Edit1 lint.Edit
	Edit2 lint.Edit
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("overlapping edits: [%s:%s] and [%s:%s]",
		e.Edit1.StartLine, e.Edit1.EndLine,
		e.Edit2.StartLine, e.Edit2.EndLine)
}

// ValidateEdits reports every edit that ApplyEdits would skip for a document
// of lineCount lines. It never stops at the first problem.
func ValidateEdits(edits []lint.Edit, lineCount int) []error {
	var errs []error
	for _, edit := range edits {
		switch {
		case !edit.StartLine.Valid:
			errs = append(errs, &ValidationError{Edit: edit, Message: "start line is missing or not a number"})
		case !edit.EndLine.Valid:
			errs = append(errs, &ValidationError{Edit: edit, Message: "end line is missing or not a number"})
		case edit.StartLine.N < 1:
			errs = append(errs, &ValidationError{Edit: edit, Message: "start line is before the first line"})
		case edit.StartLine.N > lineCount+1:
			errs = append(errs, &ValidationError{
				Edit:    edit,
				Message: fmt.Sprintf("start line %d is past the end of a %d-line document", edit.StartLine.N, lineCount),
			})
		}
	}
	return errs
}

// DetectOverlaps returns a report for each pair of valid, non-insertion edits
// whose line ranges intersect. Identical edits are not reported.
func DetectOverlaps(edits []lint.Edit) []*OverlapError {
	ranged := make([]lint.Edit, 0, len(edits))
	for _, e := range edits {
		if e.StartLine.Valid && e.EndLine.Valid && !e.IsInsertion() {
			ranged = append(ranged, e)
		}
	}
	slices.SortFunc(ranged, func(a, b lint.Edit) int {
		if a.StartLine.N != b.StartLine.N {
			return a.StartLine.N - b.StartLine.N
		}
		return a.EndLine.N - b.EndLine.N
	})

	var overlaps []*OverlapError
	for i := 1; i < len(ranged); i++ {
		prev, curr := ranged[i-1], ranged[i]
		if prev == curr {
			continue
		}
		if curr.StartLine.N <= prev.EndLine.N {
			overlaps = append(overlaps, &OverlapError{Edit1: prev, Edit2: curr})
		}
	}
	return overlaps
}
