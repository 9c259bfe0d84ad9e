// Package infobox extracts structured case identifiers from Supreme Court
// case infobox templates found in Wikipedia article markup.
package infobox

// PageviewCounts holds monthly pageview aggregates for one article.
// The counts are pass-through metrics attached to a case record; they play
// no role in identifier extraction or matching.
type PageviewCounts struct {
	AllTime int64 `json:"views_all_time"`
	Last12  int64 `json:"views_1yr"`
	Last6   int64 `json:"views_6mo"`
	Last1   int64 `json:"views_1mo"`
}

// CaseRecord is the extraction result for one article. USCite and Docket
// are independently optional: a record with both empty is valid and is
// still carried through matching (it simply has no identifying key).
// Records are immutable once created.
type CaseRecord struct {
	// Title is the article title, which may carry a trailing
	// parenthetical year, e.g. "Roe v. Wade (1973)".
	Title string `json:"title"`

	// USCite is the U.S. Reports citation as found in the infobox,
	// e.g. "524 U.S. 274". Empty when absent.
	USCite string `json:"usCite"`

	// Docket is the court docket number, e.g. "14-10078". Dash variants
	// are normalized to a plain hyphen. Empty when absent.
	Docket string `json:"docket"`

	// Views holds the article's pageview aggregates.
	Views PageviewCounts `json:"views"`
}
