package document

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/alnah/go-knawledge/internal/yamlutil"
)

// wordsPerMinute is the reading speed used for reading time estimates.
const wordsPerMinute = 200

// ErrFrontMatter indicates the front matter block could not be decoded.
var ErrFrontMatter = errors.New("invalid front matter")

// Meta is the metadata of one document.
type Meta struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	ReadingTime int      `yaml:"reading_time"` // minutes
	Tags        []string `yaml:"tags"`
}

// yamlFormat only recognizes "---" fenced YAML. Other front matter styles are
// left in the body.
var yamlFormat = frontmatter.NewFormat("---", "---", yamlutil.UnmarshalOptional)

var (
	atxH1        = regexp.MustCompile(`^ {0,3}#[ \t]+(.+?)(?:[ \t]+#+)?[ \t]*$`)
	fenceLine    = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")
	headingAttrs = regexp.MustCompile(`[ \t]*\{[^}]*\}$`)
)

// Parse splits content into metadata and Markdown body. Missing title and
// reading time are derived from the body.
func Parse(content string) (Meta, string, error) {
	var meta Meta
	content = strings.TrimPrefix(content, "\uFEFF")
	body := content

	if hasFrontMatter(content) {
		rest, err := frontmatter.Parse(strings.NewReader(content), &meta, yamlFormat)
		if err != nil {
			return Meta{}, "", fmt.Errorf("%w: %v", ErrFrontMatter, err)
		}
		body = string(rest)
	}

	meta.ID = strings.TrimSpace(meta.ID)
	meta.Title = strings.TrimSpace(meta.Title)
	if meta.Title == "" {
		meta.Title = FirstHeading(body)
	}
	if meta.ReadingTime <= 0 {
		meta.ReadingTime = ReadingTime(body)
	}
	meta.Tags = cleanTags(meta.Tags)
	return meta, body, nil
}

// hasFrontMatter reports whether content opens with a "---" line.
func hasFrontMatter(content string) bool {
	line, _, _ := strings.Cut(content, "\n")
	return strings.TrimSpace(line) == "---"
}

// FirstHeading returns the text of the first ATX level-1 heading outside
// fenced code, or "" if there is none.
func FirstHeading(body string) string {
	var fence string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		if fence != "" {
			if t := strings.TrimSpace(line); strings.HasPrefix(t, fence) && strings.Trim(t, fence[:1]) == "" {
				fence = ""
			}
			continue
		}
		if m := fenceLine.FindStringSubmatch(line); m != nil {
			fence = m[1]
			continue
		}
		if m := atxH1.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(headingAttrs.ReplaceAllString(m[1], ""))
		}
	}
	return ""
}

// ReadingTime estimates minutes to read body, rounding up. Empty bodies take
// zero minutes.
func ReadingTime(body string) int {
	words := len(strings.Fields(body))
	if words == 0 {
		return 0
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}

// cleanTags trims tags and drops empty and repeated ones, keeping order.
func cleanTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
