package pipeline

import (
	"strings"
	"sync"
	"testing"
)

func defaultConverterOptions() ConverterOptions {
	return ConverterOptions{FencedCode: true, CompatibleIDs: true, Tables: true}
}

// ---------------------------------------------------------------------------
// TestGoldmarkConverter_ToHTML - Feature toggles
// ---------------------------------------------------------------------------

func TestGoldmarkConverter_ToHTML(t *testing.T) {
	t.Parallel()

	tableMD := "| a | b |\n|---|---|\n| 1 | 2 |\n"

	tests := []struct {
		name         string
		opts         ConverterOptions
		input        string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "empty input",
			opts:         defaultConverterOptions(),
			input:        "",
			wantExcludes: []string{"<p>"},
		},
		{
			name:         "compatible heading id",
			opts:         defaultConverterOptions(),
			input:        "# Hello World",
			wantContains: []string{`<h1 id="hello-world">Hello World</h1>`},
		},
		{
			name:         "legacy heading id",
			opts:         ConverterOptions{FencedCode: true},
			input:        "# Hello, World!",
			wantContains: []string{`<h1 id="helloworld">`},
		},
		{
			name:         "explicit id attribute",
			opts:         defaultConverterOptions(),
			input:        "## Setup {#install}",
			wantContains: []string{`<h2 id="install">Setup</h2>`},
		},
		{
			name:         "fenced code with language",
			opts:         defaultConverterOptions(),
			input:        "```go\nfmt.Println()\n```",
			wantContains: []string{`<pre><code class="language-go">fmt.Println()`},
		},
		{
			name:         "fences disabled",
			opts:         ConverterOptions{CompatibleIDs: true},
			input:        "```go\nx := 1\n```",
			wantExcludes: []string{"<pre>", "language-go"},
		},
		{
			name:         "indented code always available",
			opts:         ConverterOptions{},
			input:        "    x := 1",
			wantContains: []string{"<pre><code>x := 1"},
		},
		{
			name:         "tables enabled",
			opts:         defaultConverterOptions(),
			input:        tableMD,
			wantContains: []string{"<table>", "<td>1</td>"},
		},
		{
			name:         "tables disabled",
			opts:         ConverterOptions{FencedCode: true, CompatibleIDs: true},
			input:        tableMD,
			wantExcludes: []string{"<table>"},
		},
		{
			name:         "raw HTML omitted by default",
			opts:         defaultConverterOptions(),
			input:        "<script>alert(1)</script>",
			wantExcludes: []string{"<script>"},
		},
		{
			name:         "raw HTML sanitized when allowed",
			opts:         ConverterOptions{FencedCode: true, CompatibleIDs: true, RawHTML: true},
			input:        "<div>ok</div>\n\n<script>alert(1)</script>\n\n# Kept",
			wantContains: []string{"ok", `<h1 id="kept">`},
			wantExcludes: []string{"<script>", "alert(1)"},
		},
		{
			name:         "task list and strikethrough",
			opts:         defaultConverterOptions(),
			input:        "- [x] done\n- ~~gone~~",
			wantContains: []string{`type="checkbox"`, "<del>gone</del>"},
		},
		{
			name:         "linkify",
			opts:         defaultConverterOptions(),
			input:        "see https://example.com now",
			wantContains: []string{`<a href="https://example.com">`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewGoldmarkConverter(tt.opts).ToHTML(tt.input)
			if err != nil {
				t.Fatalf("ToHTML() error = %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("ToHTML() missing %q in:\n%s", want, got)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("ToHTML() should not contain %q in:\n%s", exclude, got)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestGoldmarkConverter_IDsPerDocument - IDs reset between calls
// ---------------------------------------------------------------------------

func TestGoldmarkConverter_IDsPerDocument(t *testing.T) {
	t.Parallel()

	c := NewGoldmarkConverter(defaultConverterOptions())

	first, err := c.ToHTML("# A\n\n# A")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(first, `id="a"`) || !strings.Contains(first, `id="a-1"`) {
		t.Errorf("duplicate headings should get suffixed ids: %s", first)
	}

	second, err := c.ToHTML("# A")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(second, `id="a"`) || strings.Contains(second, "a-1") {
		t.Errorf("ids leaked across documents: %s", second)
	}
}

func TestGoldmarkConverter_Concurrent(t *testing.T) {
	t.Parallel()

	c := NewGoldmarkConverter(defaultConverterOptions())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.ToHTML("# Same\n\n# Same")
			if err != nil {
				t.Error(err)
				return
			}
			if strings.Count(got, `id="same"`) != 1 || strings.Count(got, `id="same-1"`) != 1 {
				t.Errorf("unexpected ids under concurrency: %s", got)
			}
		}()
	}
	wg.Wait()
}
