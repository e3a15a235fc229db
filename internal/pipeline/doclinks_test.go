package pipeline

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestDocLinkTarget - Href classification
// ---------------------------------------------------------------------------

func TestDocLinkTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		href   string
		want   string
		wantOK bool
	}{
		{href: "setup.md", want: "setup", wantOK: true},
		{href: "guide/setup.md#install", want: "guide/setup#install", wantOK: true},
		{href: "../notes.markdown?v=1", want: "../notes?v=1", wantOK: true},
		{href: "README.MD", want: "README", wantOK: true},
		{href: "https://example.com/a.md", wantOK: false},
		{href: "//example.com/a.md", wantOK: false},
		{href: "/abs/a.md", wantOK: false},
		{href: "#a.md", wantOK: false},
		{href: "image.png", wantOK: false},
		{href: ".md", wantOK: false},
		{href: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			t.Parallel()

			got, ok := docLinkTarget(tt.href)
			if ok != tt.wantOK {
				t.Fatalf("docLinkTarget(%q) ok = %v, want %v", tt.href, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("docLinkTarget(%q) = %q, want %q", tt.href, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRewriteDocLinks - Fragment rewriting
// ---------------------------------------------------------------------------

func TestRewriteDocLinks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		html         string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "no markdown links returns input",
			html:         `<p><a href="x.html">x</a></p>`,
			wantContains: []string{`href="x.html"`},
		},
		{
			name:         "relative markdown link rewritten",
			html:         `<p>See <a href="guide/setup.md#install">setup</a>.</p>`,
			wantContains: []string{`href="guide/setup#install"`, "See "},
			wantExcludes: []string{"setup.md"},
		},
		{
			name:         "images untouched",
			html:         `<p><img src="diagram.md"/></p>`,
			wantContains: []string{`src="diagram.md"`},
		},
		{
			name:         "external link untouched",
			html:         `<p><a href="https://x.org/a.md">a</a></p>`,
			wantContains: []string{`href="https://x.org/a.md"`},
		},
		{
			name:         "full document",
			html:         `<!DOCTYPE html><html><head></head><body><a href="a.md">a</a></body></html>`,
			wantContains: []string{`<body><a href="a">a</a></body>`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := RewriteDocLinks(tt.html)
			if err != nil {
				t.Fatalf("RewriteDocLinks() error = %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("result missing %q: %q", want, got)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("result should not contain %q: %q", exclude, got)
				}
			}
		})
	}
}

func TestDocLinks_Stage(t *testing.T) {
	t.Parallel()

	stage := NewDocLinks(nil)
	if stage.Name() != StageDocLinks {
		t.Errorf("Name() = %q", stage.Name())
	}
	got := stage.Apply(`<a href="b.md">b</a>`)
	if got != `<a href="b">b</a>` {
		t.Errorf("Apply() = %q", got)
	}
}
