package pipeline

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips unsafe markup from converter output when raw HTML is
// allowed through. It keeps what the extension stages rely on: heading ids
// and code language classes.
type Sanitizer struct {
	policy *bluemonday.Policy
}

var languageClass = regexp.MustCompile(`^language-[\w+#.-]+$`)

// NewSanitizer builds the user-generated-content policy.
func NewSanitizer() *Sanitizer {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("class").Matching(languageClass).OnElements("code")
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	return &Sanitizer{policy: p}
}

// Sanitize returns htmlContent with disallowed elements and attributes removed.
func (s *Sanitizer) Sanitize(htmlContent string) string {
	return s.policy.Sanitize(htmlContent)
}
