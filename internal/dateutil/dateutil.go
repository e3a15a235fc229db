// Package dateutil turns user-facing date formats such as "DD/MM/YYYY" or
// "long" into Go time layouts for the "updated" line on rendered pages.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length.
const MaxDateFormatLength = 50

// DefaultDateFormat is used when no format is configured.
const DefaultDateFormat = "iso"

// tokens maps format tokens to Go layout fragments, longest first.
var tokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// Presets are named shortcuts, matched case-insensitively.
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// Layout converts a preset name or token format into a Go time layout.
// Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D. Text in brackets is kept
// literally ("[Updated] D MMM" keeps "Updated"); any other character is
// copied as is. An empty format selects DefaultDateFormat.
func Layout(format string) (string, error) {
	if format == "" {
		format = DefaultDateFormat
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}
	if preset, ok := Presets[strings.ToLower(format)]; ok {
		format = preset
	}

	var b strings.Builder
	b.Grow(len(format) + 8)

	for rest := format; rest != ""; {
		if rest[0] == '[' {
			end := strings.IndexByte(rest[1:], ']')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, len(format)-len(rest))
			}
			b.WriteString(rest[1 : 1+end])
			rest = rest[end+2:]
			continue
		}
		rest = writeToken(&b, rest)
	}
	return b.String(), nil
}

// writeToken writes the layout for the token at the start of s, or its
// first byte when no token matches, and returns the remainder.
func writeToken(b *strings.Builder, s string) string {
	for _, t := range tokens {
		if strings.HasPrefix(s, t.token) {
			b.WriteString(t.layout)
			return s[len(t.token):]
		}
	}
	b.WriteByte(s[0])
	return s[1:]
}

// Formatter renders dates with a pre-parsed layout.
type Formatter struct {
	layout string
}

// NewFormatter parses format once. See Layout for the syntax.
func NewFormatter(format string) (*Formatter, error) {
	layout, err := Layout(format)
	if err != nil {
		return nil, err
	}
	return &Formatter{layout: layout}, nil
}

// Format renders t, or returns "" for the zero time.
func (f *Formatter) Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(f.layout)
}
