package match

import (
	"regexp"

	"github.com/coolbeans/caselink/pkg/infobox"
	"github.com/coolbeans/caselink/pkg/scdb"
)

// Pair is one matched outcome: the wiki case record and the SCDB row it
// resolved to.
type Pair struct {
	Case infobox.CaseRecord
	Row  scdb.Row
}

// Result holds the outcome of a match run. Every input record appears in
// exactly one of Matched or Unmatched; the engine never drops or duplicates
// records.
type Result struct {
	Matched   []Pair
	Unmatched []infobox.CaseRecord
}

// candidate is one indexed SCDB row with its precomputed decision year and
// its position in the source table. Buckets keep ascending rowIndex order so
// first-candidate tiebreaks are stable regardless of how the index was built.
type candidate struct {
	row      scdb.Row
	rowIndex int
	year     int
	hasYear  bool
}

// Matcher is a read-only join index over an SCDB table. Build it once with
// NewMatcher; afterwards it may be queried concurrently.
type Matcher struct {
	byCite   map[string][]candidate
	byDocket map[string][]candidate
}

// NewMatcher indexes an SCDB table by normalized citation and normalized
// docket. Rows whose key is empty are skipped for that index. Decision years
// are precomputed per row for docket disambiguation.
func NewMatcher(table *scdb.Table) *Matcher {
	matcher := &Matcher{
		byCite:   make(map[string][]candidate),
		byDocket: make(map[string][]candidate),
	}
	if table == nil {
		return matcher
	}

	for rowIndex, row := range table.Rows {
		year, hasYear := row.DecisionYear()
		entry := candidate{row: row, rowIndex: rowIndex, year: year, hasYear: hasYear}

		if citeKey := NormalizeCite(row.USCite()); citeKey != "" {
			matcher.byCite[citeKey] = append(matcher.byCite[citeKey], entry)
		}
		if docketKey := NormalizeDocket(row.Docket()); docketKey != "" {
			matcher.byDocket[docketKey] = append(matcher.byDocket[docketKey], entry)
		}
	}

	return matcher
}

// Match joins the given case records against the indexed SCDB rows.
// Per record, in strict order, first success wins:
//  1. Citation lookup, unless the citation is blank or a placeholder.
//     Citations are near-unique; a tie resolves to the lowest row index.
//  2. Docket lookup. A multi-candidate bucket is disambiguated by the
//     record's year (title suffix first, then the raw citation string);
//     when the year filter leaves several or none, the first candidate of
//     the filtered or full bucket respectively is selected.
//  3. Otherwise the record is unmatched.
func (matcher *Matcher) Match(records []infobox.CaseRecord) *Result {
	result := &Result{}

	for _, record := range records {
		if row, ok := matcher.matchOne(record); ok {
			result.Matched = append(result.Matched, Pair{Case: record, Row: row})
		} else {
			result.Unmatched = append(result.Unmatched, record)
		}
	}

	return result
}

// matchOne resolves a single record to at most one SCDB row.
func (matcher *Matcher) matchOne(record infobox.CaseRecord) (scdb.Row, bool) {
	citeKey := NormalizeCite(record.USCite)
	if IsPlaceholderCite(citeKey) {
		// Placeholders and blanks both mean "no usable citation".
		citeKey = ""
	}

	if citeKey != "" {
		if bucket, found := matcher.byCite[citeKey]; found {
			return bucket[0].row, true
		}
	}

	docketKey := NormalizeDocket(record.Docket)
	if docketKey != "" {
		if bucket, found := matcher.byDocket[docketKey]; found {
			return pickByYear(bucket, record), true
		}
	}

	return nil, false
}

// pickByYear selects one candidate from a docket bucket. Single-candidate
// buckets resolve immediately. For ties, candidates are filtered to the
// record's disambiguation year; the first filtered candidate wins, and the
// first of the full bucket is the fallback when no year is known or no
// candidate carries it.
func pickByYear(bucket []candidate, record infobox.CaseRecord) scdb.Row {
	if len(bucket) == 1 {
		return bucket[0].row
	}

	recordYear, hasRecordYear := caseYear(record)
	if !hasRecordYear {
		return bucket[0].row
	}

	for _, entry := range bucket {
		if entry.hasYear && entry.year == recordYear {
			return entry.row
		}
	}

	return bucket[0].row
}

var (
	// Trailing parenthetical year on an article title: "Foo v. Bar (2016)".
	titleYear = regexp.MustCompile(`\((\d{4})\)\s*$`)

	// Any plausible decision year embedded in a raw citation string.
	embeddedYear = regexp.MustCompile(`(1[89]\d{2}|20\d{2})`)
)

// caseYear derives a record's disambiguation year: a four-digit year at the
// end of the title, else any plausible year in the raw, pre-normalization
// citation string.
func caseYear(record infobox.CaseRecord) (int, bool) {
	if m := titleYear.FindStringSubmatch(record.Title); m != nil {
		return atoiDigits(m[1]), true
	}
	if m := embeddedYear.FindStringSubmatch(record.USCite); m != nil {
		return atoiDigits(m[1]), true
	}
	return 0, false
}

// atoiDigits converts an all-digit string to int.
func atoiDigits(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
