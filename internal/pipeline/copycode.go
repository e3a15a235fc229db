package pipeline

import (
	"log/slog"
	"regexp"

	"github.com/alnah/go-knawledge/internal/assets"
	"github.com/alnah/go-knawledge/internal/interact"
	"github.com/alnah/go-knawledge/internal/log"
)

// CopyButtonClass marks the copy-to-clipboard control.
const CopyButtonClass = "copy-code"

// copyButton is inserted immediately before each code block. The click
// handler reads the text of the <pre> that follows it.
const copyButton = `<button type="button" class="` + CopyButtonClass + `" aria-label="Copy code to clipboard">Copy</button>`

// codeBlockOpen matches the start of a block-level code element: a <pre>
// whose first child is <code>. Inline code never sits inside <pre>.
var codeBlockOpen = regexp.MustCompile(`(?i)<pre\b[^>]*>\s*<code\b`)

// CopyCodeConfig configures the copy-code stage.
type CopyCodeConfig struct {
	// Registrar receives the click handler. Nil means a static context: the
	// controls are still emitted, but nothing is installed.
	Registrar interact.Registrar
	// Guard scopes the one-time install. Nil uses the process-wide guard.
	Guard *interact.Guard
	// Script overrides the embedded clipboard handler.
	Script string
	Logger *slog.Logger
}

// CopyCode adds a copy control before every code block and makes sure the
// page-level click handler is installed once.
type CopyCode struct {
	registrar interact.Registrar
	guard     *interact.Guard
	script    string
	logger    *slog.Logger
}

// NewCopyCode creates a CopyCode stage.
func NewCopyCode(cfg CopyCodeConfig) *CopyCode {
	c := &CopyCode{
		registrar: cfg.Registrar,
		guard:     cfg.Guard,
		script:    cfg.Script,
		logger:    cfg.Logger,
	}
	if c.script == "" {
		c.script = assets.CopyCodeScript()
	}
	if c.logger == nil {
		c.logger = log.Discard()
	}
	return c
}

func (c *CopyCode) Name() string { return StageCopyCode }

// Apply inserts the controls. Installing the handler is attempted on every
// call; the guard turns all but the first interactive one into no-ops.
func (c *CopyCode) Apply(htmlContent string) string {
	c.install()
	return codeBlockOpen.ReplaceAllStringFunc(htmlContent, func(pre string) string {
		return copyButton + pre
	})
}

// install registers the click handler. A failing registrar is logged and
// never reaches the caller; the guard stays installed so it is not retried.
func (c *CopyCode) install() {
	if c.registrar == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("copy-code handler registration failed", "panic", r)
		}
	}()

	var installed bool
	if c.guard != nil {
		installed = c.guard.EnsureInstalled(c.registrar, assets.CopyCodeScriptName, c.script)
	} else {
		installed = interact.EnsureInstalled(c.registrar, assets.CopyCodeScriptName, c.script)
	}
	if installed {
		c.logger.Debug("copy-code handler installed")
	}
}

// Compile-time interface check.
var _ Stage = (*CopyCode)(nil)
