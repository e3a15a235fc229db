package knawledge

import (
	"log/slog"

	"github.com/alnah/go-knawledge/internal/pipeline"
)

// Extension names accepted by WithExtensions.
const (
	ExtensionHighlight     = pipeline.StageHighlight
	ExtensionDocLinks      = pipeline.StageDocLinks
	ExtensionHeaderAnchors = pipeline.StageHeaderAnchors
	ExtensionCopyCode      = pipeline.StageCopyCode
)

// DefaultExtensions returns the extensions enabled when WithExtensions is
// not used, in execution order.
func DefaultExtensions() []string {
	return []string{ExtensionHighlight, ExtensionHeaderAnchors, ExtensionCopyCode}
}

// KnownExtensions returns every extension name, in recommended order.
func KnownExtensions() []string {
	return []string{ExtensionHighlight, ExtensionDocLinks, ExtensionHeaderAnchors, ExtensionCopyCode}
}

// RenderOptions selects Markdown features of the base conversion.
type RenderOptions struct {
	GitHubStyleCodeBlocks bool // ``` and ~~~ fenced code blocks
	CompatibleHeaderIDs   bool // GitHub-style heading IDs ("hello-world")
	Tables                bool // pipe tables
	AllowRawHTML          bool // keep inline HTML, sanitized
}

// DefaultRenderOptions returns the options used when none are given.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		GitHubStyleCodeBlocks: true,
		CompatibleHeaderIDs:   true,
		Tables:                true,
	}
}

func (o RenderOptions) converterOptions() pipeline.ConverterOptions {
	return pipeline.ConverterOptions{
		FencedCode:    o.GitHubStyleCodeBlocks,
		CompatibleIDs: o.CompatibleHeaderIDs,
		Tables:        o.Tables,
		RawHTML:       o.AllowRawHTML,
	}
}

// Option configures a Renderer.
type Option func(*rendererConfig)

// rendererConfig holds internal configuration for Renderer.
type rendererConfig struct {
	render        RenderOptions
	extensions    []string
	extensionsSet bool
	registrar     ScriptRegistrar
	guard         *Guard
	copyScript    string
	logger        *slog.Logger
}

// WithRenderOptions sets the base conversion features.
func WithRenderOptions(o RenderOptions) Option {
	return func(c *rendererConfig) {
		c.render = o
	}
}

// WithExtensions sets the enabled extensions and their order.
// Calling it with no names disables every extension.
func WithExtensions(names ...string) Option {
	return func(c *rendererConfig) {
		c.extensions = append([]string(nil), names...)
		c.extensionsSet = true
	}
}

// WithScriptRegistrar marks the renderer as serving an interactive page
// context. The copy-code click handler is registered with r once.
func WithScriptRegistrar(r ScriptRegistrar) Option {
	return func(c *rendererConfig) {
		c.registrar = r
	}
}

// WithGuard scopes the one-time handler install to g instead of the
// process. Use one Guard per page context when a process serves several.
func WithGuard(g *Guard) Option {
	return func(c *rendererConfig) {
		c.guard = g
	}
}

// WithCopyScript replaces the embedded copy-code click handler with src.
// An empty src keeps the embedded one.
func WithCopyScript(src string) Option {
	return func(c *rendererConfig) {
		c.copyScript = src
	}
}

// WithLogger sets the logger for recovered failures. Defaults to discarding.
func WithLogger(l *slog.Logger) Option {
	return func(c *rendererConfig) {
		c.logger = l
	}
}
