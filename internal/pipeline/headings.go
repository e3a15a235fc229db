package pipeline

import (
	"html"
	"regexp"
	"strings"
)

// headingElement matches one heading element.
// Captures: 1=opening level, 2=attributes, 3=inner HTML, 4=closing level.
// RE2 has no backreferences, so callers compare 1 and 4.
var headingElement = regexp.MustCompile(`(?is)<h([1-6])\b([^>]*)>(.*?)</h([1-6])\s*>`)

// idAttribute finds an id attribute anywhere in an attribute list.
var idAttribute = regexp.MustCompile(`(?i)(?:^|\s)id\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// htmlTagPattern matches HTML tags for stripping from heading text.
var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// Heading is a heading found in rendered HTML.
type Heading struct {
	Level int    // 1-6
	ID    string // anchor ID, as written in the attribute
	Text  string // text content, tags stripped and entities decoded
}

// attributeID returns the id value in attrs, or "" if there is none.
func attributeID(attrs string) string {
	m := idAttribute.FindStringSubmatch(attrs)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}

// stripHTMLTags removes HTML tags from a string, decodes HTML entities,
// and trims whitespace.
func stripHTMLTags(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}

// ExtractHeadings returns headings between minLevel and maxLevel that carry
// an id, in document order.
func ExtractHeadings(htmlContent string, minLevel, maxLevel int) []Heading {
	matches := headingElement.FindAllStringSubmatch(htmlContent, -1)
	if len(matches) == 0 {
		return nil
	}

	var headings []Heading
	for _, m := range matches {
		if m[1] != m[4] {
			continue
		}
		level := int(m[1][0] - '0')
		if level < minLevel || level > maxLevel {
			continue
		}
		id := attributeID(m[2])
		if id == "" {
			continue
		}
		headings = append(headings, Heading{
			Level: level,
			ID:    id,
			Text:  stripHTMLTags(m[3]),
		})
	}
	return headings
}
