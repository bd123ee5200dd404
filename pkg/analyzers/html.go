package analyzers

import (
	"context"
	"regexp"
	"strings"

	"github.com/wronai/pactfix/pkg/fix"
	"github.com/wronai/pactfix/pkg/langdetect"
	"github.com/wronai/pactfix/pkg/lint"
)

//nolint:gochecknoglobals // compiled once
var (
	htmlOpenTag     = regexp.MustCompile(`(?i)<html(\s[^>]*)?>`)
	htmlImgTag      = regexp.MustCompile(`(?i)<img\b[^>]*>?`)
	htmlImgOpen     = regexp.MustCompile(`(?i)<img\b`)
	htmlTitle       = regexp.MustCompile(`(?i)<title>([^<]*)</title>`)
	htmlInputTag    = regexp.MustCompile(`(?i)<input\b[^>]*>?`)
	htmlBlankTarget = regexp.MustCompile(`(?i)<a\b[^>]*target=["']_blank["'][^>]*>?`)
	htmlBlankDouble = regexp.MustCompile(`(?i)target="_blank"`)
	htmlBlankSingle = regexp.MustCompile(`(?i)target='_blank'`)
	htmlHTTPLink    = regexp.MustCompile(`(?i)href=["']http://([^"'/]*)`)
	htmlEmptyHref   = regexp.MustCompile(`(?i)href=("|')(#?)("|')`)
)

//nolint:gochecknoglobals // read-only
var (
	htmlEventHandlers = []string{"onclick", "onmouseover", "onsubmit", "onload", "onerror"}
	htmlDeprecated    = []string{"<font", "<center", "<marquee", "<blink", "<b>", "<i>"}
)

// HTML returns the HTML analyzer. Document-level checks for the doctype,
// charset, viewport and title only apply to full pages, meaning documents
// with an <html>, <head> or <body> tag. Fragments and templates skip them.
func HTML() lint.Analyzer {
	return lint.AnalyzerFunc{ID: langdetect.HTML, Fn: analyzeHTML}
}

// htmlPage records document-level facts gathered while scanning.
type htmlPage struct {
	full                       bool
	doctype, charset, viewport bool
	title                      bool
	headLine                   int
}

func analyzeHTML(_ context.Context, code string) (lint.Result, error) {
	f := fix.NewLineFixer(langdetect.HTML, code)
	var page htmlPage

	for n := 1; n <= f.Len(); n++ {
		line := f.Line(n)
		lower := strings.ToLower(line)
		if strings.TrimSpace(lower) == "" {
			continue
		}

		if strings.Contains(lower, "<html") || strings.Contains(lower, "<head") || strings.Contains(lower, "<body") {
			page.full = true
		}
		if strings.Contains(lower, "<head") && !strings.Contains(lower, "<header") && page.headLine == 0 {
			page.headLine = n
		}
		if strings.Contains(lower, "<!doctype") {
			page.doctype = true
			if !strings.Contains(lower, "<!doctype html") {
				f.Warning(n, 1, "HTML001", "use <!DOCTYPE html> for HTML5")
			}
		}
		if strings.Contains(lower, "charset=") || strings.Contains(lower, "content-type") {
			page.charset = true
		}
		if strings.Contains(lower, "viewport") {
			page.viewport = true
		}
		if strings.Contains(lower, "<title") {
			page.title = true
			if m := htmlTitle.FindStringSubmatch(line); m != nil && len(strings.TrimSpace(m[1])) < 3 {
				f.Warning(n, 1, "HTML005", "page title is too short")
			}
		}

		htmlTags(f, n)
		htmlAttributes(f, n, lower)
	}

	if page.full {
		htmlPageRules(f, page)
	}
	return f.Result(), nil
}

// htmlTags checks and fixes tags on line n that miss a required attribute.
func htmlTags(f *fix.LineFixer, n int) {
	before := f.Line(n)

	if loc := htmlOpenTag.FindStringIndex(before); loc != nil && !strings.Contains(strings.ToLower(before[loc[0]:loc[1]]), "lang=") {
		f.Warning(n, 1, "HTML002", "<html> without a lang attribute")
		fixed := before[:loc[1]-1] + ` lang="en"` + before[loc[1]-1:]
		f.Rewrite(n, fixed, `added lang="en" to <html>`, strings.TrimSpace(before), strings.TrimSpace(fixed))
	}

	line := f.Line(n)
	for _, tag := range htmlImgTag.FindAllString(line, -1) {
		if !strings.Contains(strings.ToLower(tag), "alt=") {
			f.Error(n, 1, "HTML006", "<img> without alt text")
			fixed := htmlImgOpen.ReplaceAllStringFunc(line, func(m string) string {
				return m + ` alt=""`
			})
			if strings.Count(strings.ToLower(line), "<img") == 1 {
				f.Rewrite(n, fixed, `added alt="" to <img>`, strings.TrimSpace(line), strings.TrimSpace(fixed))
			}
			break
		}
	}

	line = f.Line(n)
	for _, tag := range htmlBlankTarget.FindAllString(line, -1) {
		if strings.Contains(strings.ToLower(tag), "rel=") {
			continue
		}
		f.Warning(n, 1, "HTML012", `target="_blank" without rel="noopener noreferrer"`)
		if len(htmlBlankTarget.FindAllString(line, -1)) == 1 {
			fixed := htmlBlankDouble.ReplaceAllString(line, `$0 rel="noopener noreferrer"`)
			fixed = htmlBlankSingle.ReplaceAllString(fixed, `$0 rel='noopener noreferrer'`)
			f.Rewrite(n, fixed, `added rel="noopener noreferrer"`, strings.TrimSpace(line), strings.TrimSpace(fixed))
		}
		break
	}
}

// htmlAttributes checks attributes and tags that have no automatic fix.
func htmlAttributes(f *fix.LineFixer, n int, lower string) {
	if strings.Contains(lower, `style="`) {
		f.Info(n, 1, "HTML007", "inline style: move it to CSS")
	}
	for _, handler := range htmlEventHandlers {
		if strings.Contains(lower, handler+"=") {
			f.Warning(n, 1, "HTML008", "inline "+handler+" handler: use addEventListener")
		}
	}
	for _, tag := range htmlDeprecated {
		if strings.Contains(lower, tag) {
			f.Warning(n, 1, "HTML009", "deprecated tag "+tag+">: use CSS")
		}
	}
	if strings.Contains(lower, "<form") && !strings.Contains(lower, "action=") {
		f.Warning(n, 1, "HTML010", "<form> without an action attribute")
	}
	for _, tag := range htmlInputTag.FindAllString(lower, -1) {
		if strings.Contains(tag, `type="hidden"`) || strings.Contains(tag, `type="submit"`) {
			continue
		}
		if !strings.Contains(tag, "id=") && !strings.Contains(tag, "aria-label") {
			f.Warning(n, 1, "HTML011", "<input> without an id or aria-label for its label")
		}
	}
	for _, m := range htmlHTTPLink.FindAllStringSubmatch(lower, -1) {
		if host := m[1]; !strings.HasPrefix(host, "localhost") && !strings.HasPrefix(host, "127.0.0.1") {
			f.Warning(n, 1, "HTML013", "plain HTTP link: use HTTPS")
			break
		}
	}
	if m := htmlEmptyHref.FindStringSubmatch(lower); m != nil && m[1] == m[3] {
		f.Warning(n, 1, "HTML014", "empty href: use a button or a real link")
	}
	if strings.Contains(lower, "<table") && !strings.Contains(strings.ToLower(window(f, n, n+10)), "<th") {
		f.Warning(n, 1, "HTML015", "<table> without <th> headers")
	}
}

// htmlPageRules reports and inserts the missing page-level elements. Head
// elements go right after the <head> line, or at the top of the document.
func htmlPageRules(f *fix.LineFixer, page htmlPage) {
	if !page.doctype {
		f.Error(1, 1, "HTML001", "missing <!DOCTYPE html>")
		f.Fix(1, "added <!DOCTYPE html>", "", "<!DOCTYPE html>").InsertBefore(1, "<!DOCTYPE html>")
	}

	at, indent := 1, ""
	if page.headLine > 0 {
		at = page.headLine + 1
		indent = fix.LeadingSpace(f.Original(page.headLine)) + "    "
	}
	insert := func(code, message, element string) {
		f.Warning(1, 1, code, message)
		f.Fix(1, "added "+element, "", element).InsertBefore(at, indent+element)
	}
	if !page.charset {
		insert("HTML003", "missing charset declaration", `<meta charset="utf-8">`)
	}
	if !page.viewport {
		insert("HTML004", "missing viewport meta tag", `<meta name="viewport" content="width=device-width, initial-scale=1.0">`)
	}
	if !page.title {
		insert("HTML005", "missing <title>", "<title>Document</title>")
	}
}
