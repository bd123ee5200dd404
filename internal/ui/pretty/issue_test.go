package pretty_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wronai/pactfix/internal/ui/pretty"
	"github.com/wronai/pactfix/pkg/lint"
)

func TestFormatIssue(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	issue := lint.NewIssueAt("SC2164", 3, "unguarded cd").WithColumn(5).Build()

	assert.Equal(t, "  3:5  warning  unguarded cd  (SC2164)\n", styles.FormatIssue(issue, ""))
	assert.Equal(t,
		"  3:5  warning  unguarded cd  (SC2164)\n        cd /srv\n            ^\n",
		styles.FormatIssue(issue, "cd /srv"))
}

func TestFormatFix(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	f := lint.NewFixAt(2, "guard cd").WithSnippets("  cd /srv", "cd /srv || exit 1").Build()
	assert.Equal(t, "  2  fix: guard cd\n        - cd /srv\n        + cd /srv || exit 1\n", styles.FormatFix(f))

	bare := lint.NewFixAt(1, "normalize").Build()
	assert.Equal(t, "  1  fix: normalize\n", styles.FormatFix(bare))
}

func TestFormatSeverity(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	assert.Equal(t, "error", styles.FormatSeverity(lint.SeverityError))
	assert.Equal(t, "warning", styles.FormatSeverity(lint.SeverityWarning))
	assert.Equal(t, "info", styles.FormatSeverity(lint.SeverityInfo))
	assert.Equal(t, "odd", styles.FormatSeverity("odd"))
}

func TestFormatFileHeader(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	assert.Equal(t, "deploy.sh [bash] (1 issue)", styles.FormatFileHeader("deploy.sh", "bash", 1))
	assert.Equal(t, "app.py [python] (4 issues)", styles.FormatFileHeader("app.py", "python", 4))
	assert.Equal(t, "x", styles.FormatFileHeader("x", "", 0))
}
