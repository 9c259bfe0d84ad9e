// Package wikitext provides low-level wiki markup handling: locating
// balanced brace-delimited template invocations inside raw article text
// and stripping link/tag markup down to plain text.
package wikitext

import (
	"regexp"
)

// Template name aliases that identify a Supreme Court case infobox.
// Matching is case-insensitive and tolerant of interior whitespace.
var infoboxStart = regexp.MustCompile(
	`(?i)\{\{\s*(?:` +
		`Infobox\s+US\s+Supreme\s+Court\s+case` +
		`|Infobox\s+SCOTUS\s+case` +
		`|SCOTUSCase` +
		`)`,
)

// TemplateSpan is one balanced template occurrence within a source document.
// Start and End are byte offsets into the original text; End is exclusive.
// Brace nesting depth is 1 immediately after Start and returns to 0 exactly
// at End.
type TemplateSpan struct {
	Start int
	End   int
	Text  string
}

// FindTemplate locates the first case-infobox template in text and returns
// its full balanced-brace span. It returns false when no template opens, and
// also when a template opens but never closes before end of text: an
// unterminated template yields no partial span.
//
// Only the first matching template per document is considered; documents are
// assumed to carry at most one relevant infobox.
func FindTemplate(text string) (TemplateSpan, bool) {
	loc := infoboxStart.FindStringIndex(text)
	if loc == nil {
		return TemplateSpan{}, false
	}

	start := loc[0]
	depth := 0

	for i := start; i < len(text); {
		switch {
		case i+1 < len(text) && text[i] == '{' && text[i+1] == '{':
			depth++
			i += 2
		case i+1 < len(text) && text[i] == '}' && text[i+1] == '}':
			depth--
			i += 2
			if depth <= 0 {
				return TemplateSpan{
					Start: start,
					End:   i,
					Text:  text[start:i],
				}, true
			}
		default:
			i++
		}
	}

	return TemplateSpan{}, false
}
