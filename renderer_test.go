package knawledge_test

import (
	"errors"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alnah/go-knawledge"
)

const copyButton = `<button type="button" class="copy-code" aria-label="Copy code to clipboard">Copy</button>`

type countingRegistrar struct {
	calls atomic.Int32
}

func (c *countingRegistrar) RegisterScript(name, source string) {
	c.calls.Add(1)
}

func newRenderer(t *testing.T, opts ...knawledge.Option) *knawledge.Renderer {
	t.Helper()
	r, err := knawledge.NewRenderer(opts...)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	return r
}

// ---------------------------------------------------------------------------
// TestNewRenderer - Extension validation
// ---------------------------------------------------------------------------

func TestNewRenderer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []knawledge.Option
		want    []string
		wantErr error
	}{
		{
			name: "defaults",
			want: []string{"highlight", "header-anchors", "copy-code"},
		},
		{
			name: "explicit order",
			opts: []knawledge.Option{knawledge.WithExtensions("copy-code", "doc-links")},
			want: []string{"copy-code", "doc-links"},
		},
		{
			name: "no extensions",
			opts: []knawledge.Option{knawledge.WithExtensions()},
			want: []string{},
		},
		{
			name:    "unknown extension",
			opts:    []knawledge.Option{knawledge.WithExtensions("emoji")},
			wantErr: knawledge.ErrUnknownExtension,
		},
		{
			name:    "duplicate extension",
			opts:    []knawledge.Option{knawledge.WithExtensions("header-anchors", "header-anchors")},
			wantErr: knawledge.ErrDuplicateExtension,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := knawledge.NewRenderer(tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewRenderer() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			got := r.Extensions()
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Extensions() = %v, want %v", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestConvert_HeaderAnchors - h1-h3 get exactly one anchor each
// ---------------------------------------------------------------------------

func TestConvert_HeaderAnchors(t *testing.T) {
	t.Parallel()

	r := newRenderer(t)
	out := r.Convert("# A\n## B\n### C\n#### D\n")

	for _, id := range []string{"a", "b", "c"} {
		anchor := `<a class="header-anchor" href="#` + id + `"`
		if n := strings.Count(out, anchor); n != 1 {
			t.Errorf("anchors for %q = %d, want 1\n%s", id, n, out)
		}
	}
	if strings.Contains(out, `href="#d"`) {
		t.Errorf("level 4 heading must not get an anchor:\n%s", out)
	}
	if !strings.Contains(out, `<h1 id="a">A<a class="header-anchor"`) {
		t.Errorf("heading text must precede its anchor:\n%s", out)
	}
}

// ---------------------------------------------------------------------------
// TestConvert_CopyCode - One control per code block
// ---------------------------------------------------------------------------

func TestConvert_CopyCode(t *testing.T) {
	t.Parallel()

	r := newRenderer(t)
	out := r.Convert("```go\na := 1\n```\n\ntext `inline`\n\n~~~\nb\n~~~\n")

	if n := strings.Count(out, copyButton); n != 2 {
		t.Fatalf("copy controls = %d, want 2\n%s", n, out)
	}
	if n := strings.Count(out, copyButton+"<pre><code"); n != 2 {
		t.Errorf("controls must immediately precede each block:\n%s", out)
	}
	first := strings.Index(out, "a := 1")
	second := strings.Index(out, "\nb\n")
	if second == -1 {
		second = strings.Index(out, ">b\n")
	}
	if first == -1 || second == -1 || first > second {
		t.Errorf("blocks out of order:\n%s", out)
	}
}

// ---------------------------------------------------------------------------
// TestConvert_TitleExample - Heading anchor and code control together
// ---------------------------------------------------------------------------

func TestConvert_TitleExample(t *testing.T) {
	t.Parallel()

	r := newRenderer(t)
	out := r.Convert("# Title\n\n```\nx = 1\n```\n")

	headingWithAnchor := regexp.MustCompile(`<h1 id="title">Title<a class="header-anchor" href="#title"[^>]*></a></h1>`)
	if !headingWithAnchor.MatchString(out) {
		t.Errorf("missing anchored heading:\n%s", out)
	}
	if !strings.Contains(out, copyButton+"<pre><code>x = 1") {
		t.Errorf("missing control before code block:\n%s", out)
	}
}

// ---------------------------------------------------------------------------
// TestConvert_RenderOptions - Base conversion switches
// ---------------------------------------------------------------------------

func TestConvert_RenderOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		opts         knawledge.RenderOptions
		input        string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "compatible ids",
			opts:         knawledge.DefaultRenderOptions(),
			input:        "## Getting Started",
			wantContains: []string{`id="getting-started"`},
		},
		{
			name:         "legacy ids",
			opts:         knawledge.RenderOptions{GitHubStyleCodeBlocks: true},
			input:        "## Getting Started",
			wantContains: []string{`id="gettingstarted"`},
		},
		{
			name:         "fences disabled means no copy control",
			opts:         knawledge.RenderOptions{CompatibleHeaderIDs: true},
			input:        "```\nx\n```",
			wantExcludes: []string{copyButton},
		},
		{
			name:         "tables off",
			opts:         knawledge.RenderOptions{GitHubStyleCodeBlocks: true},
			input:        "| a |\n|---|\n| 1 |",
			wantExcludes: []string{"<table>"},
		},
		{
			name:         "raw html sanitized",
			opts:         knawledge.RenderOptions{AllowRawHTML: true, CompatibleHeaderIDs: true},
			input:        "<b onclick=\"x()\">bold</b>\n\n# T",
			wantContains: []string{"<b>bold</b>", `<h1 id="t">T<a class="header-anchor"`},
			wantExcludes: []string{"onclick"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := newRenderer(t, knawledge.WithRenderOptions(tt.opts)).Convert(tt.input)
			for _, want := range tt.wantContains {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(out, exclude) {
					t.Errorf("output should not contain %q:\n%s", exclude, out)
				}
			}
		})
	}
}

func TestConvert_Highlight(t *testing.T) {
	t.Parallel()

	out := newRenderer(t).Convert("a ==hot== b `==cold==`")
	if !strings.Contains(out, "<mark>hot</mark>") {
		t.Errorf("missing mark:\n%s", out)
	}
	if !strings.Contains(out, "<code>==cold==</code>") {
		t.Errorf("code span must keep its markers:\n%s", out)
	}

	plain := newRenderer(t, knawledge.WithExtensions()).Convert("a ==hot== b")
	if strings.Contains(plain, "<mark>") || !strings.Contains(plain, "==hot==") {
		t.Errorf("highlight disabled should leave markers:\n%s", plain)
	}
}

func TestConvert_DocLinks(t *testing.T) {
	t.Parallel()

	r := newRenderer(t, knawledge.WithExtensions(knawledge.ExtensionDocLinks))
	out := r.Convert("[setup](guide/setup.md#install) and [site](https://x.org/a.md)")
	if !strings.Contains(out, `href="guide/setup#install"`) {
		t.Errorf("relative doc link not rewritten:\n%s", out)
	}
	if !strings.Contains(out, `href="https://x.org/a.md"`) {
		t.Errorf("external link must be kept:\n%s", out)
	}
}

// ---------------------------------------------------------------------------
// TestConvert_Guard - Handler registration happens once
// ---------------------------------------------------------------------------

func TestConvert_GuardRegistersOnce(t *testing.T) {
	t.Parallel()

	reg := &countingRegistrar{}
	guard := &knawledge.Guard{}
	r := newRenderer(t, knawledge.WithScriptRegistrar(reg), knawledge.WithGuard(guard))

	for i := 0; i < 5; i++ {
		out := r.Convert("```\nx\n```")
		if !strings.Contains(out, copyButton) {
			t.Fatalf("render %d lost its control", i)
		}
	}
	if got := reg.calls.Load(); got != 1 {
		t.Errorf("registrations = %d, want 1", got)
	}

	// A second renderer sharing the guard does not register again.
	other := newRenderer(t, knawledge.WithScriptRegistrar(reg), knawledge.WithGuard(guard))
	other.Convert("```\ny\n```")
	if got := reg.calls.Load(); got != 1 {
		t.Errorf("registrations after second renderer = %d, want 1", got)
	}
}

func TestConvert_ConcurrentFirstCalls(t *testing.T) {
	t.Parallel()

	reg := &countingRegistrar{}
	guard := &knawledge.Guard{}
	r := newRenderer(t, knawledge.WithScriptRegistrar(reg), knawledge.WithGuard(guard))

	var start, done sync.WaitGroup
	start.Add(1)
	for i := 0; i < 32; i++ {
		done.Add(1)
		go func() {
			defer done.Done()
			start.Wait()
			out := r.Convert("# Doc\n\n```\ncode\n```\n")
			if strings.Count(out, copyButton) != 1 {
				t.Errorf("unexpected output:\n%s", out)
			}
		}()
	}
	start.Done()
	done.Wait()

	if got := reg.calls.Load(); got != 1 {
		t.Errorf("registrations = %d, want 1", got)
	}
	if !guard.Installed() {
		t.Error("guard should be installed")
	}
}

func TestConvert_StaticContextLeavesGuard(t *testing.T) {
	t.Parallel()

	guard := &knawledge.Guard{}
	r := newRenderer(t, knawledge.WithGuard(guard))
	r.Convert("```\nx\n```")

	if guard.Installed() {
		t.Error("rendering without a registrar must not install the handler")
	}
}

func TestConvert_ScriptSet(t *testing.T) {
	t.Parallel()

	scripts := knawledge.NewScriptSet()
	r := newRenderer(t, knawledge.WithScriptRegistrar(scripts), knawledge.WithGuard(&knawledge.Guard{}))
	r.Convert("```\nx\n```")
	r.Convert("```\ny\n```")

	if got := scripts.Names(); len(got) != 1 || got[0] != "copy-code" {
		t.Fatalf("Names() = %v, want [copy-code]", got)
	}
	if !strings.Contains(scripts.Tags(), "clipboard") {
		t.Error("registered script should drive the clipboard")
	}
}

func TestConvert_CopyScriptOverride(t *testing.T) {
	t.Parallel()

	scripts := knawledge.NewScriptSet()
	r := newRenderer(t,
		knawledge.WithScriptRegistrar(scripts),
		knawledge.WithGuard(&knawledge.Guard{}),
		knawledge.WithCopyScript("window.customCopy = true;"),
	)
	r.Convert("```\nx\n```")

	tags := scripts.Tags()
	if !strings.Contains(tags, "window.customCopy = true;") {
		t.Errorf("Tags() = %q, want the custom handler", tags)
	}
	if strings.Contains(tags, "clipboard") {
		t.Error("custom handler should replace the embedded one")
	}
}

// ---------------------------------------------------------------------------
// TestRender - Front matter and headings
// ---------------------------------------------------------------------------

func TestRender(t *testing.T) {
	t.Parallel()

	r := newRenderer(t)
	res, err := r.Render("---\nid: intro\ntags: [go, docs]\n---\n# Introduction\n\n## Install\n")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if res.Meta.ID != "intro" || res.Meta.Title != "Introduction" || res.Meta.ReadingTime != 1 {
		t.Errorf("Meta = %+v", res.Meta)
	}
	if strings.Join(res.Meta.Tags, ",") != "go,docs" {
		t.Errorf("Tags = %v", res.Meta.Tags)
	}
	if len(res.Headings) != 2 || res.Headings[1] != (knawledge.Heading{Level: 2, ID: "install", Text: "Install"}) {
		t.Errorf("Headings = %+v", res.Headings)
	}
	if strings.Contains(res.HTML, "tags:") {
		t.Errorf("front matter leaked into HTML:\n%s", res.HTML)
	}
}

func TestRender_InvalidFrontMatter(t *testing.T) {
	t.Parallel()

	_, err := newRenderer(t).Render("---\nreading_time: soon\n---\n# x")
	if !errors.Is(err, knawledge.ErrFrontMatter) {
		t.Errorf("Render() error = %v, want ErrFrontMatter", err)
	}
}

// ---------------------------------------------------------------------------
// TestConvertFunc - Package-level static conversion
// ---------------------------------------------------------------------------

func TestConvertFunc(t *testing.T) {
	t.Parallel()

	opts := knawledge.DefaultRenderOptions()
	a := knawledge.Convert("# Same", opts)
	b := knawledge.Convert("# Same", opts)
	if a != b {
		t.Errorf("Convert not deterministic: %q vs %q", a, b)
	}
	if !strings.Contains(a, `href="#same"`) {
		t.Errorf("Convert() = %q", a)
	}
}
