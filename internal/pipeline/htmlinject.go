package pipeline

import (
	"errors"
	"fmt"
	"html"
	"html/template"
	"regexp"
	"strconv"
	"strings"
)

// ErrPageRender indicates the page template failed to execute.
var ErrPageRender = errors.New("page template rendering failed")

// CSSInjector defines the contract for CSS injection into HTML.
type CSSInjector interface {
	InjectCSS(htmlContent, cssContent string) string
}

// CSSInjection injects CSS as a <style> block into HTML content.
type CSSInjection struct{}

// InjectCSS inserts a <style> block into HTML content.
// Tries </head> first, then <body>, then prepends to the HTML.
// CSS content is sanitized to prevent injection attacks.
func (s *CSSInjection) InjectCSS(htmlContent, cssContent string) string {
	if cssContent == "" {
		return htmlContent
	}

	styleBlock := "<style>" + sanitizeCSS(cssContent) + "</style>"
	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}

	if pos := afterOpeningTag(htmlContent, lowerHTML, "<body"); pos != -1 {
		return htmlContent[:pos] + styleBlock + htmlContent[pos:]
	}

	return styleBlock + htmlContent
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// InjectScripts inserts pre-rendered <script> tags before </body>, or
// appends them when the document has no body.
func InjectScripts(htmlContent, scriptTags string) string {
	if scriptTags == "" {
		return htmlContent
	}
	if idx := strings.LastIndex(strings.ToLower(htmlContent), "</body>"); idx != -1 {
		return htmlContent[:idx] + scriptTags + htmlContent[idx:]
	}
	return htmlContent + scriptTags
}

// afterOpeningTag returns the index just past the first tag starting with
// prefix (matched against lowerHTML), or -1.
func afterOpeningTag(htmlContent, lowerHTML, prefix string) int {
	idx := strings.Index(lowerHTML, prefix)
	if idx == -1 {
		return -1
	}
	closeIdx := strings.Index(htmlContent[idx:], ">")
	if closeIdx == -1 {
		return -1
	}
	return idx + closeIdx + 1
}

// PageData holds what the page shell needs around a rendered fragment.
type PageData struct {
	Title       string
	ReadingTime string   // human form, e.g. "3 min read"; empty hides it
	Tags        []string // shown under the title
	Updated     string   // human form, e.g. "2 days ago"; empty hides it
	Body        string   // trusted HTML produced by the renderer
}

// pageTemplate is the HTML5 shell for standalone and served pages.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
{{- if or .ReadingTime .Tags .Updated}}
<header class="doc-meta">
{{- if .ReadingTime}}<span class="reading-time">{{.ReadingTime}}</span>{{end}}
{{- if .Updated}}<span class="updated">{{.Updated}}</span>{{end}}
{{- range .Tags}}<span class="tag">{{.}}</span>{{end}}
</header>
{{- end}}
<main class="doc">
{{.HTML}}
</main>
</body>
</html>
`

// PageShell wraps rendered fragments into full HTML documents.
type PageShell struct {
	tmpl *template.Template
}

// NewPageShell parses the built-in page template.
func NewPageShell() *PageShell {
	return &PageShell{tmpl: template.Must(template.New("page").Parse(pageTemplate))}
}

// Wrap renders data into a complete document. Body is inserted verbatim;
// every other field is escaped.
func (p *PageShell) Wrap(data *PageData) (string, error) {
	if data == nil {
		data = &PageData{}
	}

	view := struct {
		*PageData
		HTML template.HTML
	}{PageData: data, HTML: template.HTML(data.Body)} //nolint:gosec // body comes from the renderer

	var buf strings.Builder
	if err := p.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageRender, err)
	}
	return buf.String(), nil
}

// TOCData holds TOC configuration for injection.
type TOCData struct {
	Title    string
	MinDepth int // Minimum heading level (default: 2, skips H1)
	MaxDepth int // Maximum heading level (default: 3)
}

// TOCInjector defines the contract for TOC injection into HTML.
type TOCInjector interface {
	InjectTOC(htmlContent string, data *TOCData) string
}

// numberingState tracks hierarchical numbering for TOC entries.
// Supports normalization (first heading becomes level 1) and gap skipping.
type numberingState struct {
	counters     [6]int // counters[0] = level 1 count, etc.
	minLevelSeen int    // for normalization (0 = not set)
	lastLevel    int    // for tracking parent relationships
}

// next returns the next number string and effective depth for the given
// heading level. The effective depth drives nesting in the TOC.
func (n *numberingState) next(level int) (numStr string, effectiveDepth int) {
	if n.minLevelSeen == 0 {
		n.minLevelSeen = level
	}

	effectiveDepth = level - n.minLevelSeen + 1
	if effectiveDepth < 1 {
		effectiveDepth = 1
	}

	// H1 -> H3 becomes depth 1 -> depth 2 (not depth 3)
	if n.lastLevel > 0 && effectiveDepth > n.lastLevel+1 {
		effectiveDepth = n.lastLevel + 1
	}

	for i := effectiveDepth; i < 6; i++ {
		n.counters[i] = 0
	}
	n.counters[effectiveDepth-1]++
	n.lastLevel = effectiveDepth

	parts := make([]string, 0, effectiveDepth)
	for i := 0; i < effectiveDepth; i++ {
		parts = append(parts, strconv.Itoa(n.counters[i]))
	}
	return strings.Join(parts, ".") + ".", effectiveDepth
}

// generateNumberedTOC creates HTML for a numbered table of contents.
// Uses <div> elements instead of <ul>/<li> to avoid CSS list-style conflicts.
func generateNumberedTOC(headings []Heading, title string) string {
	if len(headings) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString(`<nav class="toc">`)

	if title != "" {
		buf.WriteString(`<h2 class="toc-title">`)
		buf.WriteString(html.EscapeString(title))
		buf.WriteString(`</h2>`)
	}

	buf.WriteString(`<div class="toc-list">`)

	var numbering numberingState
	for _, h := range headings {
		num, effectiveDepth := numbering.next(h.Level)
		indent := float64(effectiveDepth-1) * 1.5

		buf.WriteString(`<div class="toc-item"`)
		if indent > 0 {
			fmt.Fprintf(&buf, ` style="padding-left:%.1fem"`, indent)
		}
		buf.WriteString(`><a href="#`)
		buf.WriteString(html.EscapeString(html.UnescapeString(h.ID)))
		buf.WriteString(`">`)
		buf.WriteString(num)
		buf.WriteString(` `)
		buf.WriteString(html.EscapeString(h.Text))
		buf.WriteString(`</a></div>`)
	}

	buf.WriteString(`</div></nav>`)
	return buf.String()
}

// mainOpen matches the opening tag of the page's main content element.
var mainOpen = regexp.MustCompile(`(?i)<main\b[^>]*>`)

// TOCInjection implements TOCInjector.
type TOCInjection struct{}

// NewTOCInjection creates a new TOC injector.
func NewTOCInjection() *TOCInjection {
	return &TOCInjection{}
}

// InjectTOC extracts headings and injects a numbered TOC at the top of the
// main content. If data is nil or no heading qualifies, returns htmlContent
// unchanged.
func (t *TOCInjection) InjectTOC(htmlContent string, data *TOCData) string {
	if data == nil {
		return htmlContent
	}

	headings := ExtractHeadings(htmlContent, data.MinDepth, data.MaxDepth)
	tocHTML := generateNumberedTOC(headings, data.Title)
	if tocHTML == "" {
		return htmlContent
	}

	if loc := mainOpen.FindStringIndex(htmlContent); loc != nil {
		return htmlContent[:loc[1]] + tocHTML + htmlContent[loc[1]:]
	}

	if pos := afterOpeningTag(htmlContent, strings.ToLower(htmlContent), "<body"); pos != -1 {
		return htmlContent[:pos] + tocHTML + htmlContent[pos:]
	}

	return tocHTML + htmlContent
}

// Compile-time interface checks.
var (
	_ CSSInjector = (*CSSInjection)(nil)
	_ TOCInjector = (*TOCInjection)(nil)
)
