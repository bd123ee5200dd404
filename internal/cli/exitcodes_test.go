package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wronai/pactfix/internal/configloader"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitSuccess},
		{name: "issues", err: ErrIssuesFound, want: ExitIssues},
		{name: "wrapped issues", err: fmt.Errorf("run: %w", ErrIssuesFound), want: ExitIssues},
		{name: "usage", err: usageError(errors.New("bad flag")), want: ExitUsage},
		{name: "validation", err: &configloader.ValidationError{Field: "output.format", Message: "bad"}, want: ExitUsage},
		{name: "unknown command", err: errors.New(`unknown command "lint" for "pactfix"`), want: ExitUsage},
		{name: "internal", err: errors.New("disk on fire"), want: ExitInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestUsageError_Nil(t *testing.T) {
	t.Parallel()
	assert.NoError(t, usageError(nil))
}
