package pipeline

import (
	"strings"
)

// HeaderAnchorClass marks the self-links added to headings.
const HeaderAnchorClass = "header-anchor"

// maxAnchorLevel is the deepest heading level that receives an anchor.
const maxAnchorLevel = 3

// HeaderAnchors appends a self-link to every h1-h3 that has an id.
// Headings without an id are left alone; no id is invented for them.
type HeaderAnchors struct{}

// NewHeaderAnchors creates a HeaderAnchors stage.
func NewHeaderAnchors() *HeaderAnchors { return &HeaderAnchors{} }

func (h *HeaderAnchors) Name() string { return StageHeaderAnchors }

// Apply inserts the anchor right before each qualifying closing tag, after
// the heading's own content.
func (h *HeaderAnchors) Apply(htmlContent string) string {
	matches := headingElement.FindAllStringSubmatchIndex(htmlContent, -1)
	if len(matches) == 0 {
		return htmlContent
	}

	var buf strings.Builder
	buf.Grow(len(htmlContent) + len(matches)*80)
	last := 0
	for _, m := range matches {
		openLevel := htmlContent[m[2]:m[3]]
		if openLevel != htmlContent[m[8]:m[9]] {
			continue
		}
		if int(openLevel[0]-'0') > maxAnchorLevel {
			continue
		}
		id := attributeID(htmlContent[m[4]:m[5]])
		if id == "" {
			continue
		}

		contentEnd := m[7]
		buf.WriteString(htmlContent[last:contentEnd])
		writeAnchor(&buf, id)
		last = contentEnd
	}
	buf.WriteString(htmlContent[last:])
	return buf.String()
}

// writeAnchor writes the decorative self-link. id is already attribute
// escaped, except for double quotes when it came from a single-quoted value.
func writeAnchor(buf *strings.Builder, id string) {
	buf.WriteString(`<a class="`)
	buf.WriteString(HeaderAnchorClass)
	buf.WriteString(`" href="#`)
	buf.WriteString(strings.ReplaceAll(id, `"`, "&#34;"))
	buf.WriteString(`" aria-hidden="true" tabindex="-1"></a>`)
}

// Compile-time interface check.
var _ Stage = (*HeaderAnchors)(nil)
