// Package pipeline implements the Markdown-to-HTML rendering pipeline.
//
// Rendering happens in three steps:
//   - Markdown preprocessing (line normalization, ==highlight== placeholders)
//   - Markdown to HTML conversion via Goldmark, with per-document heading IDs
//   - Named extension stages applied in order to the HTML (heading anchors,
//     copy-code controls, highlight marks, document links)
//
// Stages are plain string transformations. The copy-code stage additionally
// asks the interact package to install the client-side clipboard handler,
// which happens at most once per process.
//
// The page helpers in htmlinject.go (document wrapper, CSS, scripts, TOC)
// are used by hosts that turn a rendered fragment into a full page.
package pipeline
