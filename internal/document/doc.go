// Package document reads knowledge-base sources: front matter metadata for a
// single Markdown file, and a Library indexing every Markdown file under a
// directory.
package document
