package pipeline

import (
	"regexp"
	"strings"
)

// Highlight placeholders use Unicode Private Use Area characters.
// They pass through Goldmark unchanged (no WithUnsafe needed) and are turned
// into <mark> tags by the highlight stage.
const (
	MarkStartPlaceholder = "\uE000" // U+E000: Private Use Area start
	MarkEndPlaceholder   = "\uE001" // U+E001: Private Use Area end
)

var (
	crlfOrCR         = regexp.MustCompile(`\r\n?`)
	highlightPattern = regexp.MustCompile(`==([^=\n]+?)==`)
	fenceOpening     = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(content string) string
}

// CommonMarkPreprocessor prepares Markdown before conversion.
type CommonMarkPreprocessor struct {
	// Highlights converts ==text== outside code into mark placeholders.
	// Only enable it together with the highlight stage.
	Highlights bool
}

// PreprocessMarkdown applies all transformations to prepare Markdown for conversion.
func (p *CommonMarkPreprocessor) PreprocessMarkdown(content string) string {
	content = strings.TrimPrefix(content, "\uFEFF")
	content = normalizeLineEndings(content)
	if p.Highlights {
		content = convertHighlights(content)
	}
	return content
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// convertHighlights transforms ==text== to placeholder markers, leaving
// fenced code blocks and inline code spans untouched.
func convertHighlights(content string) string {
	if !strings.Contains(content, "==") {
		return content
	}

	lines := strings.Split(content, "\n")
	var fence string
	for i, line := range lines {
		if fence != "" {
			if isFenceClose(line, fence) {
				fence = ""
			}
			continue
		}
		if m := fenceOpening.FindStringSubmatch(line); m != nil {
			fence = m[1]
			continue
		}
		lines[i] = highlightOutsideCodeSpans(line)
	}
	return strings.Join(lines, "\n")
}

func isFenceClose(line, fence string) bool {
	trimmed := strings.TrimSpace(line)
	return len(trimmed) >= len(fence) &&
		strings.Trim(trimmed, fence[:1]) == "" &&
		trimmed[0] == fence[0]
}

// highlightOutsideCodeSpans only rewrites the segments between backtick runs.
func highlightOutsideCodeSpans(line string) string {
	if !strings.Contains(line, "==") {
		return line
	}
	parts := strings.Split(line, "`")
	for i := 0; i < len(parts); i += 2 {
		parts[i] = highlightPattern.ReplaceAllString(parts[i], MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
	}
	return strings.Join(parts, "`")
}

// ConvertMarkPlaceholders converts placeholder markers to <mark> tags.
func ConvertMarkPlaceholders(content string) string {
	if !strings.Contains(content, MarkStartPlaceholder) {
		return content
	}
	return strings.ReplaceAll(
		strings.ReplaceAll(content, MarkStartPlaceholder, "<mark>"),
		MarkEndPlaceholder, "</mark>",
	)
}
