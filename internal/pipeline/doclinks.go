package pipeline

import (
	"log/slog"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-knawledge/internal/log"
)

// markdownExts are the source extensions dropped from document links.
var markdownExts = []string{".md", ".markdown"}

// RewriteDocLinks turns relative links to Markdown sources into links to
// the rendered pages: "guide/setup.md#install" becomes "guide/setup#install".
//
// Does NOT rewrite:
//   - URLs with a scheme, protocol-relative URLs, absolute paths
//   - fragment-only links
//   - img, script or any element other than a
func RewriteDocLinks(htmlContent string) (string, error) {
	if !strings.Contains(htmlContent, ".md") && !strings.Contains(htmlContent, ".markdown") {
		return htmlContent, nil
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	if !rewriteLinks(doc) {
		return htmlContent, nil
	}
	return renderHTML(doc, isFragment)
}

// parseHTML parses HTML content, handling both full documents and fragments.
// Returns the parsed node, whether it was a fragment, and any error.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	// Fragment: parse with body context to avoid wrapping
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

// renderHTML renders the document back to string.
// For fragments, only renders the children (avoids adding <html><body> wrapper).
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// rewriteLinks walks the tree and reports whether any href changed.
func rewriteLinks(n *html.Node) bool {
	changed := false
	if n.Type == html.ElementNode && n.DataAtom == atom.A {
		for i, attr := range n.Attr {
			if attr.Key != "href" {
				continue
			}
			if rewritten, ok := docLinkTarget(attr.Val); ok {
				n.Attr[i].Val = rewritten
				changed = true
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if rewriteLinks(c) {
			changed = true
		}
	}
	return changed
}

// docLinkTarget returns href without its Markdown extension, keeping any
// query and fragment, when href is a relative link to a Markdown file.
func docLinkTarget(href string) (string, bool) {
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "//") {
		return "", false
	}

	u, err := url.Parse(href)
	if err != nil || u.Scheme != "" || u.Host != "" || path.IsAbs(u.Path) {
		return "", false
	}

	rest := len(href)
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		rest = i
	}
	p := href[:rest]

	for _, ext := range markdownExts {
		if len(p) > len(ext) && strings.EqualFold(p[len(p)-len(ext):], ext) {
			return p[:len(p)-len(ext)] + href[rest:], true
		}
	}
	return "", false
}

// DocLinks is the stage form of RewriteDocLinks.
type DocLinks struct {
	logger *slog.Logger
}

// NewDocLinks creates a DocLinks stage. logger may be nil.
func NewDocLinks(logger *slog.Logger) *DocLinks {
	if logger == nil {
		logger = log.Discard()
	}
	return &DocLinks{logger: logger}
}

func (d *DocLinks) Name() string { return StageDocLinks }

// Apply rewrites document links. On a parse failure the input is kept.
func (d *DocLinks) Apply(htmlContent string) string {
	out, err := RewriteDocLinks(htmlContent)
	if err != nil {
		d.logger.Warn("doc-links: leaving links unchanged", "error", err)
		return htmlContent
	}
	return out
}

// Compile-time interface check.
var _ Stage = (*DocLinks)(nil)
