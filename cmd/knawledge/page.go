package main

import (
	"fmt"
	"time"

	"github.com/alnah/go-knawledge"
	"github.com/alnah/go-knawledge/internal/assets"
	"github.com/alnah/go-knawledge/internal/config"
	"github.com/alnah/go-knawledge/internal/dateutil"
	"github.com/alnah/go-knawledge/internal/pipeline"
)

// pageBuilder turns rendered fragments into complete HTML pages.
// Safe for concurrent use once built.
type pageBuilder struct {
	resolver *assets.AssetResolver
	shell    *pipeline.PageShell
	css      pipeline.CSSInjector
	toc      pipeline.TOCInjector
	tocAt    *pipeline.TOCData // nil when the TOC is disabled
	style    string
	dates    *dateutil.Formatter
}

// newPageBuilder resolves the configured style and date format.
func newPageBuilder(cfg *config.Config) (*pageBuilder, error) {
	resolver, err := assets.NewAssetResolver(cfg.Assets.BasePath)
	if err != nil {
		return nil, fmt.Errorf("loading assets: %w", err)
	}

	name := cfg.Assets.Style
	if name == "" {
		name = assets.DefaultStyleName
	}
	style, err := resolver.LoadStyle(name)
	if err != nil {
		return nil, fmt.Errorf("loading style: %w", err)
	}

	dates, err := dateutil.NewFormatter(cfg.Output.DateFormat)
	if err != nil {
		return nil, fmt.Errorf("output.dateFormat: %w", err)
	}

	b := &pageBuilder{
		resolver: resolver,
		shell:    pipeline.NewPageShell(),
		css:      &pipeline.CSSInjection{},
		toc:      pipeline.NewTOCInjection(),
		style:    style,
		dates:    dates,
	}
	if cfg.TOC.Enabled {
		minDepth, maxDepth := cfg.TOCDepth()
		b.tocAt = &pipeline.TOCData{Title: cfg.TOC.Title, MinDepth: minDepth, MaxDepth: maxDepth}
	}
	return b, nil
}

// build wraps res into a page. scripts are inline <script> tags emitted
// before </body>; static pages pass "".
func (b *pageBuilder) build(res *knawledge.Result, updated time.Time, scripts string) (string, error) {
	page, err := b.shell.Wrap(&pipeline.PageData{
		Title:       res.Meta.Title,
		ReadingTime: readingTimeLabel(res.Meta.ReadingTime),
		Tags:        res.Meta.Tags,
		Updated:     b.updatedLabel(updated),
		Body:        res.HTML,
	})
	if err != nil {
		return "", err
	}
	return b.finish(page, scripts), nil
}

// copyScript returns the copy-code click handler, preferring
// scripts/copy-code.js under assets.basePath.
func (b *pageBuilder) copyScript() (string, error) {
	src, err := b.resolver.LoadScript(assets.CopyCodeScriptName)
	if err != nil {
		return "", fmt.Errorf("loading script: %w", err)
	}
	return src, nil
}

// wrap builds a page around trusted HTML that is not a document, such as
// the serve index. No TOC is inserted.
func (b *pageBuilder) wrap(title, body string) (string, error) {
	page, err := b.shell.Wrap(&pipeline.PageData{Title: title, Body: body})
	if err != nil {
		return "", err
	}
	return b.css.InjectCSS(page, b.style), nil
}

func (b *pageBuilder) finish(page, scripts string) string {
	if b.tocAt != nil {
		page = b.toc.InjectTOC(page, b.tocAt)
	}
	page = b.css.InjectCSS(page, b.style)
	if scripts != "" {
		page = pipeline.InjectScripts(page, scripts)
	}
	return page
}

func (b *pageBuilder) updatedLabel(t time.Time) string {
	s := b.dates.Format(t)
	if s == "" {
		return ""
	}
	return "Updated " + s
}

// readingTimeLabel formats minutes as "N min read"; zero hides the label.
func readingTimeLabel(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	return fmt.Sprintf("%d min read", minutes)
}
