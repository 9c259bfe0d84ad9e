package wikitext

import (
	"regexp"
)

// Pre-compiled patterns for markup stripping.
var (
	// External link constructs: [http://example.org] or
	// [http://example.org display label]. Removed entirely.
	reExternalLink = regexp.MustCompile(`\[https?://[^\]\s]*(?:\s+[^\]]+)?\]`)

	// Internal wiki links: [[target]] or [[target|label]]. Collapsed to the
	// display label, or the target when no label is present.
	reWikiLink = regexp.MustCompile(`\[\[(?:[^\]|]+\|)?([^\]]+)\]\]`)

	// Remaining angle-bracket tag constructs, non-greedy within a line.
	reTag = regexp.MustCompile(`<.*?>`)
)

// Clean strips hyperlink, wiki-link, and HTML-tag markup from a template
// span, producing plain text suitable for field pattern matching. It is a
// pure function with no failure modes.
//
// Link stripping must precede tag stripping: link syntax can itself be
// nested inside tag-like constructs in malformed input, and reversing the
// order would leave link fragments behind.
func Clean(text string) string {
	text = reExternalLink.ReplaceAllString(text, "")
	text = reWikiLink.ReplaceAllString(text, "$1")
	text = reTag.ReplaceAllString(text, "")
	return text
}
