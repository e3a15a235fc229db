package knawledge

import (
	"fmt"
	"html"
	"sync"

	"github.com/alnah/go-knawledge/internal/document"
	"github.com/alnah/go-knawledge/internal/log"
	"github.com/alnah/go-knawledge/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
)

// Renderer turns Markdown into HTML fragments. It holds no per-document
// state and is safe for concurrent use.
type Renderer struct {
	cfg          rendererConfig
	preprocessor pipeline.MarkdownPreprocessor
	converter    pipeline.HTMLConverter
	stages       *pipeline.Pipeline
}

// Meta is the metadata of a rendered document.
type Meta struct {
	ID          string   // front matter id, empty when not set
	Title       string   // front matter title, else the first h1
	ReadingTime int      // minutes
	Tags        []string // front matter tags
}

// Heading is a heading of the rendered HTML that carries an id.
type Heading struct {
	Level int
	ID    string
	Text  string
}

// Result is the output of Render.
type Result struct {
	HTML     string
	Meta     Meta
	Headings []Heading
}

// NewRenderer creates a Renderer. Without options it uses
// DefaultRenderOptions and DefaultExtensions.
// Returns ErrUnknownExtension or ErrDuplicateExtension for a bad extension list.
func NewRenderer(opts ...Option) (*Renderer, error) {
	cfg := rendererConfig{render: DefaultRenderOptions()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.extensionsSet {
		cfg.extensions = DefaultExtensions()
	}
	if cfg.logger == nil {
		cfg.logger = log.Discard()
	}

	stages := make([]pipeline.Stage, 0, len(cfg.extensions))
	highlights := false
	for _, name := range cfg.extensions {
		stage, err := newStage(name, &cfg)
		if err != nil {
			return nil, err
		}
		if name == ExtensionHighlight {
			highlights = true
		}
		stages = append(stages, stage)
	}

	p, err := pipeline.NewPipeline(cfg.logger, stages...)
	if err != nil {
		return nil, fmt.Errorf("building extension pipeline: %w", err)
	}

	return &Renderer{
		cfg:          cfg,
		preprocessor: &pipeline.CommonMarkPreprocessor{Highlights: highlights},
		converter:    pipeline.NewGoldmarkConverter(cfg.render.converterOptions()),
		stages:       p,
	}, nil
}

func newStage(name string, cfg *rendererConfig) (pipeline.Stage, error) {
	switch name {
	case ExtensionHighlight:
		return pipeline.NewHighlightStage(), nil
	case ExtensionDocLinks:
		return pipeline.NewDocLinks(cfg.logger), nil
	case ExtensionHeaderAnchors:
		return pipeline.NewHeaderAnchors(), nil
	case ExtensionCopyCode:
		return pipeline.NewCopyCode(pipeline.CopyCodeConfig{
			Registrar: cfg.registrar,
			Guard:     cfg.guard,
			Script:    cfg.copyScript,
			Logger:    cfg.logger,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExtension, name)
	}
}

// Extensions returns the enabled extensions in execution order.
func (r *Renderer) Extensions() []string {
	return r.stages.Names()
}

// Convert renders markdown to an HTML fragment. It never fails: if the
// conversion cannot complete, the escaped source is returned as a paragraph.
func (r *Renderer) Convert(markdown string) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.cfg.logger.Error("markdown conversion panicked", "panic", rec)
			out = fallbackHTML(markdown)
		}
	}()

	content := r.preprocessor.PreprocessMarkdown(markdown)
	htmlContent, err := r.converter.ToHTML(content)
	if err != nil {
		r.cfg.logger.Error("markdown conversion failed", "error", err)
		return fallbackHTML(markdown)
	}
	return r.stages.Run(htmlContent)
}

// fallbackHTML shows the source as text when conversion fails.
func fallbackHTML(markdown string) string {
	return "<p>" + html.EscapeString(markdown) + "</p>\n"
}

// Render splits front matter from doc, converts the body and collects its
// headings. The only error is ErrFrontMatter.
func (r *Renderer) Render(doc string) (*Result, error) {
	meta, body, err := document.Parse(doc)
	if err != nil {
		return nil, err
	}

	out := r.Convert(body)
	return &Result{
		HTML:     out,
		Meta:     toPublicMeta(meta),
		Headings: toPublicHeadings(pipeline.ExtractHeadings(out, 1, 6)),
	}, nil
}

func toPublicMeta(m document.Meta) Meta {
	return Meta{
		ID:          m.ID,
		Title:       m.Title,
		ReadingTime: m.ReadingTime,
		Tags:        m.Tags,
	}
}

func toPublicHeadings(hs []pipeline.Heading) []Heading {
	if len(hs) == 0 {
		return nil
	}
	out := make([]Heading, len(hs))
	for i, h := range hs {
		out[i] = Heading{Level: h.Level, ID: h.ID, Text: h.Text}
	}
	return out
}

// staticRenderers caches one static Renderer per option set for Convert.
var staticRenderers sync.Map // RenderOptions -> *Renderer

// Convert renders markdown with the default extensions for static output:
// no client-side handler is installed. Renderers are cached per option set.
func Convert(markdown string, opts RenderOptions) string {
	if cached, ok := staticRenderers.Load(opts); ok {
		return cached.(*Renderer).Convert(markdown)
	}
	r, err := NewRenderer(WithRenderOptions(opts))
	if err != nil {
		// Default extensions are always valid.
		panic("knawledge: " + err.Error())
	}
	actual, _ := staticRenderers.LoadOrStore(opts, r)
	return actual.(*Renderer).Convert(markdown)
}
