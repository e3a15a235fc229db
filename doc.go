// Package knawledge renders Markdown into HTML fragments for a self-hosted
// knowledge base.
//
// # Quick Start
//
// Create a renderer once and reuse it; it is safe for concurrent use:
//
//	r, err := knawledge.NewRenderer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	html := r.Convert("# Hello\n\n```\nx = 1\n```\n")
//
// Convert never fails: malformed Markdown degrades to best-effort HTML.
//
// # Rendering Pipeline
//
// Every document goes through the same steps:
//
//  1. Markdown preprocessing (line endings, ==highlight== syntax)
//  2. Markdown to HTML via Goldmark, with unique heading IDs per document
//  3. Extension stages, in the configured order:
//     highlight, doc-links, header-anchors, copy-code
//
// The header-anchors stage appends a self-link to every h1-h3 carrying an id.
// The copy-code stage puts a copy button before every code block.
//
// # Interactive Pages
//
// The copy buttons need one client-side click handler per page context.
// Hosts that display pages live pass a ScriptRegistrar; the handler is then
// registered exactly once per process, however many documents are rendered:
//
//	scripts := knawledge.NewScriptSet()
//	r, _ := knawledge.NewRenderer(knawledge.WithScriptRegistrar(scripts))
//	body := r.Convert(doc)
//	page := body + scripts.Tags()
//
// Hosts exporting static files pass no registrar and nothing is installed.
//
// # Documents
//
// Render splits YAML front matter from the body and returns the metadata
// together with the HTML:
//
//	res, err := r.Render("---\ntitle: Intro\ntags: [go]\n---\n# Intro\n")
//	fmt.Println(res.Meta.Title, res.Meta.ReadingTime, len(res.Headings))
package knawledge
