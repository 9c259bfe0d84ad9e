// Package match joins extracted wiki case records against SCDB rows using
// citation-then-docket priority with deterministic, first-match tiebreaks.
package match

import (
	"regexp"
	"strings"

	"github.com/coolbeans/caselink/pkg/infobox"
)

// Placeholder U.S. citations mark decisions not yet assigned a page number:
//
//	592 U.S. ___
//	596 U.S. —
//	586 U.S.
//
// A volume with no trailing page digits, optionally padded with underscores
// or dashes, is a placeholder.
var placeholderCite = regexp.MustCompile(`(?i)^\s*\d+\s*U\.?S\.?(?:\s*[_‐‑‒–—―−-]*)?\s*$`)

// leadingDocketNo matches a leading "No." or "No" token on a docket string.
var leadingDocketNo = regexp.MustCompile(`^[Nn][Oo](?:\.\s*|\s+)`)

// reporterAbbrev matches spaced ("U. S.") and unspaced ("U.S", "US")
// abbreviation forms of the U.S. Reports reporter.
var reporterAbbrev = regexp.MustCompile(`\bU\.?\s*S\.?`)

// NormalizeCite canonicalizes a U.S. Reports citation for key comparison:
// spaced and unspaced abbreviation forms collapse to "U.S.", dash variants
// become hyphens, and interior whitespace runs collapse to single spaces.
// Pure and idempotent; empty input yields the empty string.
func NormalizeCite(s string) string {
	s = strings.TrimSpace(s)
	s = reporterAbbrev.ReplaceAllString(s, "U.S.")
	s = infobox.FoldDashes(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeDocket canonicalizes a docket string for key comparison: dash
// variants become hyphens and any leading "No." tokens are removed, while
// letters and interior hyphens are preserved. Pure and idempotent.
func NormalizeDocket(s string) string {
	s = strings.TrimSpace(s)
	s = infobox.FoldDashes(s)
	for {
		stripped := leadingDocketNo.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = stripped
	}
	return strings.TrimSpace(s)
}

// IsPlaceholderCite reports whether a normalized citation carries no usable
// page reference. Blank citations and volume-only placeholders both mean
// "no usable citation" to the matching engine.
func IsPlaceholderCite(s string) bool {
	if s == "" {
		return true
	}
	return placeholderCite.MatchString(s)
}
