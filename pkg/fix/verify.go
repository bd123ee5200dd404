package fix

import (
	"errors"
	"fmt"

	"github.com/wronai/pactfix/pkg/lint"
)

// ErrNotReconstructible is returned when a result's fixed text cannot be
// rebuilt from its original text and its own edits.
var ErrNotReconstructible = errors.New("fixed code does not match applied edits")

// VerifyReconstruction checks that applying every edit of res to its
// original text yields exactly its fixed text.
func VerifyReconstruction(res lint.Result) error {
	rebuilt := ApplyToText(res.OriginalCode, res.Edits())
	if rebuilt == res.FixedCode {
		return nil
	}

	got, want := lint.Lines(rebuilt), lint.Lines(res.FixedCode)
	for i := range min(len(got), len(want)) {
		if got[i] != want[i] {
			return fmt.Errorf("%w: line %d is %q, want %q", ErrNotReconstructible, i+1, got[i], want[i])
		}
	}
	return fmt.Errorf("%w: %d lines rebuilt, fixed code has %d", ErrNotReconstructible, len(got), len(want))
}
