package infobox

import (
	"fmt"
	"regexp"
	"strings"
)

// Extractor pulls the U.S. Reports citation and docket number out of a
// cleaned infobox template span. Extraction is total: malformed input never
// fails, it only yields empty fields.
//
// Field attempts run in a fixed priority order, first success per field wins:
//  1. The "citations" field, searched for a reporter citation and a docket
//     token.
//  2. Separate numeric "USVol"/"USPage" fields, synthesized into a citation.
//  3. The "docket" field, searched for a docket token.
type Extractor struct {
	citationsField *regexp.Regexp // | citations = <value up to next key or }}>
	usCitePattern  *regexp.Regexp // 524 U.S. 274, tolerant of spacing/periods
	docketToken    *regexp.Regexp // No. 14-10078, 22O141
	usVolField     *regexp.Regexp // | USVol = 524
	usPageField    *regexp.Regexp // | USPage = 274
	docketField    *regexp.Regexp // | docket = <rest of line>
}

// NewExtractor creates an Extractor with compiled field patterns.
func NewExtractor() *Extractor {
	return &Extractor{
		// The citations field value runs until the next field key, the
		// template's closing braces, or end of text.
		citationsField: regexp.MustCompile(`(?is)\|\s*citations\s*=\s*(.*?)(?:\n\|\s*\w+\s*=|\n\}\}|$)`),

		// U.S. Reports citation, tolerant of missing periods and spacing:
		// "524 U.S. 274", "524 US 274", "524 U. S. 274".
		usCitePattern: regexp.MustCompile(`(?i)\b\d+\s*U\.?\s*S\.?\s*\d+\b`),

		// Docket token: optional "No." prefix, then either a term-year/sequence
		// docket (1-3 digits, dash, 1-5 digits) or an original-jurisdiction
		// docket (1-3 digits, uppercase letter, 1-4 digits). Accepts unicode
		// dash variants.
		docketToken: regexp.MustCompile(`(?i)\b(?:No\.?\s*)?(\d{1,3}[-‐‑‒–—]\d{1,5}|\d{1,3}[A-Z]\d{1,4})\b`),

		usVolField:  regexp.MustCompile(`(?i)\|\s*USVol\s*=\s*([0-9]+)`),
		usPageField: regexp.MustCompile(`(?i)\|\s*USPage\s*=\s*([0-9]+)`),
		docketField: regexp.MustCompile(`(?i)\|\s*docket\s*=\s*([^\n]+)`),
	}
}

// Extract returns the citation and docket found in a cleaned template span.
// Either or both results may be empty; Extract never fails.
func (extractor *Extractor) Extract(plainText string) (usCite, docket string) {
	if fieldMatch := extractor.citationsField.FindStringSubmatch(plainText); fieldMatch != nil {
		fieldValue := fieldMatch[1]

		if citeMatch := extractor.usCitePattern.FindString(fieldValue); citeMatch != "" {
			usCite = citeMatch
		}

		if tokenMatch := extractor.docketToken.FindStringSubmatch(fieldValue); tokenMatch != nil && docket == "" {
			docket = tokenMatch[1]
		}
	}

	if usCite == "" {
		volMatch := extractor.usVolField.FindStringSubmatch(plainText)
		pageMatch := extractor.usPageField.FindStringSubmatch(plainText)
		if volMatch != nil && pageMatch != nil {
			usCite = fmt.Sprintf("%s U.S. %s", volMatch[1], pageMatch[1])
		}
	}

	if docket == "" {
		if lineMatch := extractor.docketField.FindStringSubmatch(plainText); lineMatch != nil {
			if tokenMatch := extractor.docketToken.FindStringSubmatch(lineMatch[1]); tokenMatch != nil {
				docket = tokenMatch[1]
			}
		}
	}

	docket = FoldDashes(docket)
	return strings.TrimSpace(usCite), strings.TrimSpace(docket)
}

// dashVariants maps unicode dash forms to a plain hyphen.
var dashVariants = strings.NewReplacer(
	"‐", "-", // hyphen
	"‑", "-", // non-breaking hyphen
	"‒", "-", // figure dash
	"–", "-", // en dash
	"—", "-", // em dash
	"―", "-", // horizontal bar
	"−", "-", // minus sign
)

// FoldDashes normalizes all dash variants in s to a plain hyphen.
func FoldDashes(s string) string {
	return dashVariants.Replace(s)
}
