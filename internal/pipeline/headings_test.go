package pipeline

import (
	"reflect"
	"testing"
)

// ---------------------------------------------------------------------------
// TestExtractHeadings - Heading discovery
// ---------------------------------------------------------------------------

func TestExtractHeadings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		html     string
		min, max int
		want     []Heading
	}{
		{
			name: "no headings",
			html: "<p>text</p>",
			min:  1, max: 6,
			want: nil,
		},
		{
			name: "levels in range",
			html: `<h1 id="t">T</h1><h2 id="a">A</h2><h4 id="d">D</h4>`,
			min:  2, max: 3,
			want: []Heading{{Level: 2, ID: "a", Text: "A"}},
		},
		{
			name: "skips headings without id",
			html: `<h2>No id</h2><h2 id="b">B</h2>`,
			min:  1, max: 6,
			want: []Heading{{Level: 2, ID: "b", Text: "B"}},
		},
		{
			name: "id after other attributes",
			html: `<h2 class="x" id="b">B</h2>`,
			min:  1, max: 6,
			want: []Heading{{Level: 2, ID: "b", Text: "B"}},
		},
		{
			name: "single-quoted id",
			html: `<h3 id='c'>C</h3>`,
			min:  1, max: 6,
			want: []Heading{{Level: 3, ID: "c", Text: "C"}},
		},
		{
			name: "data-id is not an id",
			html: `<h2 data-id="x">X</h2>`,
			min:  1, max: 6,
			want: nil,
		},
		{
			name: "strips inline tags and decodes entities",
			html: `<h2 id="q">Use <code>a &amp; b</code></h2>`,
			min:  1, max: 6,
			want: []Heading{{Level: 2, ID: "q", Text: "Use a & b"}},
		},
		{
			name: "mismatched closing tag ignored",
			html: `<h2 id="m">M</h3>`,
			min:  1, max: 6,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ExtractHeadings(tt.html, tt.min, tt.max)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractHeadings() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStripHTMLTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input, want string
	}{
		{"plain", "plain"},
		{"<em>x</em> y", "x y"},
		{"  &lt;tag&gt;  ", "<tag>"},
	}

	for _, tt := range tests {
		if got := stripHTMLTags(tt.input); got != tt.want {
			t.Errorf("stripHTMLTags(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
