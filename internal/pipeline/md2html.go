package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(content string) (string, error)
}

// ConverterOptions selects the Markdown features enabled in the converter.
type ConverterOptions struct {
	FencedCode    bool // ``` and ~~~ code fences
	CompatibleIDs bool // GitHub-compatible heading IDs
	Tables        bool // GFM pipe tables
	RawHTML       bool // pass raw HTML through, then sanitize it
}

// GoldmarkConverter converts Markdown to an HTML fragment using goldmark.
// It holds no per-call state and is safe for concurrent use.
type GoldmarkConverter struct {
	md        goldmark.Markdown
	sanitizer *Sanitizer
}

// NewGoldmarkConverter creates a GoldmarkConverter for the given options.
func NewGoldmarkConverter(opts ConverterOptions) *GoldmarkConverter {
	extensions := []goldmark.Extender{
		extension.Strikethrough,
		extension.Linkify,
		extension.TaskList,
		extension.Footnote,
	}
	if opts.Tables {
		extensions = append(extensions, extension.Table)
	}

	rendererOpts := []renderer.Option{html.WithXHTML()}
	if opts.RawHTML {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}

	md := goldmark.New(
		// Must precede WithParserOptions, which configures the parser in place.
		goldmark.WithParser(newParser(opts.FencedCode)),
		goldmark.WithExtensions(extensions...),
		goldmark.WithParserOptions(
			parser.WithAttribute(), // # Title {#custom-id}
			parser.WithASTTransformers(
				util.Prioritized(&headingIDTransformer{compatible: opts.CompatibleIDs}, 100),
			),
		),
		goldmark.WithRendererOptions(rendererOpts...),
	)

	c := &GoldmarkConverter{md: md}
	if opts.RawHTML {
		c.sanitizer = NewSanitizer()
	}
	return c
}

// ToHTML converts Markdown content to an HTML fragment.
// Goldmark accepts any input; an error only surfaces when writing fails.
func (c *GoldmarkConverter) ToHTML(content string) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}

	out := buf.String()
	if c.sanitizer != nil {
		out = c.sanitizer.Sanitize(out)
	}
	return out, nil
}

// newParser mirrors goldmark's default parser, minus the fenced code block
// parser when fences are disabled.
func newParser(fencedCode bool) parser.Parser {
	return parser.NewParser(
		parser.WithBlockParsers(blockParsers(fencedCode)...),
		parser.WithInlineParsers(parser.DefaultInlineParsers()...),
		parser.WithParagraphTransformers(parser.DefaultParagraphTransformers()...),
	)
}

func blockParsers(fencedCode bool) []util.PrioritizedValue {
	defaults := parser.DefaultBlockParsers()
	if fencedCode {
		return defaults
	}

	fenced := reflect.TypeOf(parser.NewFencedCodeBlockParser())
	kept := make([]util.PrioritizedValue, 0, len(defaults))
	for _, p := range defaults {
		if reflect.TypeOf(p.Value) == fenced {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
