package knawledge_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/alnah/go-knawledge"
)

func FuzzConvert(f *testing.F) {
	seeds := []string{
		"",
		"# Title\n\n```\nx = 1\n```\n",
		"<h1 id=\"x\">raw</h1>",
		"```\nunterminated",
		"| a |\n|---|",
		"==a== `==b==` ==",
		"[x](a.md#b) <pre><code>",
		"\r\n# A\r\n## A\r\n",
		"---\ntitle: [\n---\n",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	r, err := knawledge.NewRenderer(
		knawledge.WithExtensions(knawledge.KnownExtensions()...),
		knawledge.WithGuard(&knawledge.Guard{}),
	)
	if err != nil {
		f.Fatal(err)
	}

	f.Fuzz(func(t *testing.T, markdown string) {
		out := r.Convert(markdown)
		if utf8.ValidString(markdown) && !utf8.ValidString(out) {
			t.Errorf("valid input produced invalid UTF-8 output")
		}
		if strings.Count(out, `<a class="header-anchor"`) > strings.Count(out, "<h") {
			t.Errorf("more anchors than headings:\n%s", out)
		}
	})
}
