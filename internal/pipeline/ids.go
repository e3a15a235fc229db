package pipeline

import (
	"bytes"
	"strconv"
	"strings"
	"unicode"

	sanitized "github.com/shurcooL/sanitized_anchor_name"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// fallbackID is used when a heading has no letters or digits.
const fallbackID = "heading"

var attrID = []byte("id")

// headingIDs tracks the identifiers used by one document.
type headingIDs struct {
	compatible bool
	used       map[string]struct{}
}

func newHeadingIDs(compatible bool) *headingIDs {
	return &headingIDs{compatible: compatible, used: make(map[string]struct{})}
}

// reserve claims id, suffixing it with -N when already taken.
func (h *headingIDs) reserve(id string) string {
	unique := id
	for i := 1; h.isUsed(unique); i++ {
		unique = id + "-" + strconv.Itoa(i)
	}
	h.used[unique] = struct{}{}
	return unique
}

// generate derives an id from heading text and reserves it.
func (h *headingIDs) generate(heading string) string {
	var base string
	if h.compatible {
		base = sanitized.Create(heading)
	} else {
		base = compactID(heading)
	}
	if base == "" {
		base = fallbackID
	}
	return h.reserve(base)
}

func (h *headingIDs) isUsed(id string) bool {
	_, ok := h.used[id]
	return ok
}

// compactID keeps letters, digits and underscores, lowercased:
// "Hello, World!" becomes "helloworld".
func compactID(text string) string {
	var b strings.Builder
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// headingIDTransformer assigns heading ids once the whole document is
// parsed. Explicit {#id} attributes are reserved before any id is
// generated, whatever their position.
type headingIDTransformer struct {
	compatible bool
}

// Transform implements parser.ASTTransformer.
func (t *headingIDTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	var headings []*ast.Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if h, ok := n.(*ast.Heading); ok && entering {
			headings = append(headings, h)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	ids := newHeadingIDs(t.compatible)
	var generated []*ast.Heading
	for _, h := range headings {
		id, ok := explicitID(h)
		if !ok {
			generated = append(generated, h)
			continue
		}
		h.SetAttribute(attrID, []byte(ids.reserve(id)))
	}

	source := reader.Source()
	for _, h := range generated {
		h.SetAttribute(attrID, []byte(ids.generate(plainText(h, source))))
	}
}

func explicitID(h *ast.Heading) (string, bool) {
	v, ok := h.AttributeString("id")
	if !ok {
		return "", false
	}
	switch id := v.(type) {
	case []byte:
		return string(id), len(id) > 0
	case string:
		return id, id != ""
	}
	return "", false
}

// plainText returns the visible text of n: text, code spans and autolink
// labels. Raw HTML is dropped.
func plainText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			buf.Write(c.Value(source))
			if c.SoftLineBreak() || c.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(c.Value)
		case *ast.AutoLink:
			buf.Write(c.Label(source))
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}
