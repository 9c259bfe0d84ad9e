package match

import (
	"testing"

	"github.com/coolbeans/caselink/pkg/infobox"
	"github.com/coolbeans/caselink/pkg/scdb"
)

func testTable(rows []scdb.Row) *scdb.Table {
	return &scdb.Table{
		Columns: []string{"caseId", "usCite", "docket", "dateDecision", "term"},
		Rows:    rows,
	}
}

func TestMatchByCitation(t *testing.T) {
	// A unique citation match wins regardless of docket presence.
	table := testTable([]scdb.Row{
		{"caseId": "1962-030", "usCite": "369 U.S. 186", "docket": "6", "dateDecision": "3/26/1962", "term": "1961"},
		{"caseId": "1998-001", "usCite": "524 U.S. 274", "docket": "97-282", "dateDecision": "6/22/1998", "term": "1997"},
	})
	matcher := NewMatcher(table)

	result := matcher.Match([]infobox.CaseRecord{
		{Title: "Baker v. Carr", USCite: "369 U.S. 186"},
	})

	if len(result.Matched) != 1 || len(result.Unmatched) != 0 {
		t.Fatalf("matched %d, unmatched %d; want 1, 0", len(result.Matched), len(result.Unmatched))
	}
	if got := result.Matched[0].Row["caseId"]; got != "1962-030" {
		t.Errorf("matched caseId = %q, want 1962-030", got)
	}
}

func TestMatchCitationFormVariance(t *testing.T) {
	// Source and SCDB disagree on abbreviation spacing and dashes; the
	// normalized keys still collide.
	table := testTable([]scdb.Row{
		{"caseId": "1954-010", "usCite": "347 U. S. 483", "docket": "1", "dateDecision": "5/17/1954", "term": "1953"},
	})
	matcher := NewMatcher(table)

	result := matcher.Match([]infobox.CaseRecord{
		{Title: "Brown v. Board of Education", USCite: "347 US 483"},
	})

	if len(result.Matched) != 1 {
		t.Fatalf("matched %d, want 1", len(result.Matched))
	}
}

func TestMatchDocketYearDisambiguation(t *testing.T) {
	// Two rows share a docket with decision years 2015 and 2016; the title
	// year picks the right one.
	rows := []scdb.Row{
		{"caseId": "2015-044", "usCite": "", "docket": "14-10078", "dateDecision": "6/18/2015", "term": "2014"},
		{"caseId": "2016-039", "usCite": "", "docket": "14-10078", "dateDecision": "6/9/2016", "term": "2015"},
	}
	matcher := NewMatcher(testTable(rows))

	cases := []struct {
		name           string
		record         infobox.CaseRecord
		expectedCaseID string
	}{
		{
			name:           "title_year_selects_2016",
			record:         infobox.CaseRecord{Title: "Foo v. Bar (2016)", Docket: "14-10078"},
			expectedCaseID: "2016-039",
		},
		{
			name:           "title_year_selects_2015",
			record:         infobox.CaseRecord{Title: "Foo v. Bar (2015)", Docket: "14-10078"},
			expectedCaseID: "2015-044",
		},
		{
			name:           "year_from_raw_citation",
			record:         infobox.CaseRecord{Title: "Foo v. Bar", USCite: "579 U.S. 1 (2016)", Docket: "14-10078"},
			expectedCaseID: "2016-039",
		},
		{
			name:           "no_year_falls_back_to_first",
			record:         infobox.CaseRecord{Title: "Foo v. Bar", Docket: "14-10078"},
			expectedCaseID: "2015-044",
		},
		{
			name:           "unknown_year_falls_back_to_first",
			record:         infobox.CaseRecord{Title: "Foo v. Bar (1999)", Docket: "14-10078"},
			expectedCaseID: "2015-044",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := matcher.Match([]infobox.CaseRecord{tc.record})
			if len(result.Matched) != 1 {
				t.Fatalf("matched %d, want 1", len(result.Matched))
			}
			if got := result.Matched[0].Row["caseId"]; got != tc.expectedCaseID {
				t.Errorf("matched caseId = %q, want %q", got, tc.expectedCaseID)
			}
		})
	}
}

func TestMatchYearFromRawCitationDisambiguates(t *testing.T) {
	// The raw citation keeps its parenthetical year even when the
	// normalized key would be a placeholder.
	rows := []scdb.Row{
		{"caseId": "A", "usCite": "", "docket": "20-1199", "dateDecision": "", "term": "2022"},
		{"caseId": "B", "usCite": "", "docket": "20-1199", "dateDecision": "6/29/2023", "term": "2022"},
	}
	matcher := NewMatcher(testTable(rows))

	result := matcher.Match([]infobox.CaseRecord{
		{Title: "SFFA v. Harvard", USCite: "600 U.S. 181 (2023)", Docket: "20-1199"},
	})

	if len(result.Matched) != 1 {
		t.Fatalf("matched %d, want 1", len(result.Matched))
	}
	if got := result.Matched[0].Row["caseId"]; got != "B" {
		t.Errorf("matched caseId = %q, want B", got)
	}
}

func TestMatchPlaceholderCitationSkipsCiteIndex(t *testing.T) {
	// A placeholder citation must not reach the citation index even if an
	// SCDB row happened to carry the same placeholder text.
	table := testTable([]scdb.Row{
		{"caseId": "X", "usCite": "592 U.S. ___", "docket": "19-123", "dateDecision": "1/1/2021", "term": "2020"},
		{"caseId": "Y", "usCite": "", "docket": "19-1392", "dateDecision": "6/24/2022", "term": "2021"},
	})
	matcher := NewMatcher(table)

	cases := []struct {
		name           string
		record         infobox.CaseRecord
		expectMatched  bool
		expectedCaseID string
	}{
		{
			name:          "placeholder_without_docket_is_unmatched",
			record:        infobox.CaseRecord{Title: "Pending Case", USCite: "592 U.S. ___"},
			expectMatched: false,
		},
		{
			name:           "placeholder_with_docket_matches_by_docket",
			record:         infobox.CaseRecord{Title: "Dobbs v. Jackson", USCite: "597 U.S. ___", Docket: "19-1392"},
			expectMatched:  true,
			expectedCaseID: "Y",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := matcher.Match([]infobox.CaseRecord{tc.record})
			if tc.expectMatched {
				if len(result.Matched) != 1 {
					t.Fatalf("matched %d, want 1", len(result.Matched))
				}
				if got := result.Matched[0].Row["caseId"]; got != tc.expectedCaseID {
					t.Errorf("matched caseId = %q, want %q", got, tc.expectedCaseID)
				}
			} else if len(result.Unmatched) != 1 {
				t.Fatalf("unmatched %d, want 1", len(result.Unmatched))
			}
		})
	}
}

func TestMatchCountConservation(t *testing.T) {
	table := testTable([]scdb.Row{
		{"caseId": "1", "usCite": "524 U.S. 274", "docket": "97-282", "dateDecision": "6/22/1998", "term": "1997"},
		{"caseId": "2", "usCite": "369 U.S. 186", "docket": "6", "dateDecision": "3/26/1962", "term": "1961"},
	})
	matcher := NewMatcher(table)

	records := []infobox.CaseRecord{
		{Title: "Gebser v. Lago Vista", USCite: "524 U.S. 274"},
		{Title: "Baker v. Carr", USCite: "369 U.S. 186"},
		{Title: "No Identifiers At All"},
		{Title: "Unknown Case", USCite: "1 U.S. 1"},
		{Title: "Duplicate Cite", USCite: "524 U.S. 274"},
	}

	result := matcher.Match(records)
	report := NewReport(result, len(records))

	if !report.SumCheck() {
		t.Errorf("sum check failed: %d matched + %d unmatched != %d total",
			report.Matched, report.Unmatched, report.Total)
	}
	if report.Matched != 3 || report.Unmatched != 2 {
		t.Errorf("matched %d, unmatched %d; want 3, 2", report.Matched, report.Unmatched)
	}
}

func TestMatchEmptyInputs(t *testing.T) {
	matcher := NewMatcher(testTable(nil))
	result := matcher.Match(nil)
	if len(result.Matched) != 0 || len(result.Unmatched) != 0 {
		t.Errorf("empty input produced %d matched, %d unmatched", len(result.Matched), len(result.Unmatched))
	}

	nilMatcher := NewMatcher(nil)
	result = nilMatcher.Match([]infobox.CaseRecord{{Title: "Solo"}})
	if len(result.Unmatched) != 1 {
		t.Errorf("nil table: unmatched %d, want 1", len(result.Unmatched))
	}
}

func TestMatchBucketOrderIsRowOrder(t *testing.T) {
	// Ambiguity after year filtering resolves to the lowest row index.
	rows := []scdb.Row{
		{"caseId": "first", "usCite": "", "docket": "5-5", "dateDecision": "1/1/2000", "term": "1999"},
		{"caseId": "second", "usCite": "", "docket": "5-5", "dateDecision": "2/2/2000", "term": "1999"},
	}
	matcher := NewMatcher(testTable(rows))

	result := matcher.Match([]infobox.CaseRecord{
		{Title: "Tie v. Tie (2000)", Docket: "5-5"},
	})
	if len(result.Matched) != 1 {
		t.Fatalf("matched %d, want 1", len(result.Matched))
	}
	if got := result.Matched[0].Row["caseId"]; got != "first" {
		t.Errorf("matched caseId = %q, want first (row order tiebreak)", got)
	}
}

func TestDecisionYearPrecedence(t *testing.T) {
	cases := []struct {
		name         string
		row          scdb.Row
		expectedYear int
		expectOK     bool
	}{
		{
			name:         "date_decision_year",
			row:          scdb.Row{"dateDecision": "6/22/1998", "term": "1997"},
			expectedYear: 1998,
			expectOK:     true,
		},
		{
			name:         "term_fallback",
			row:          scdb.Row{"dateDecision": "", "term": "1997"},
			expectedYear: 1997,
			expectOK:     true,
		},
		{
			name:         "malformed_date_falls_to_term",
			row:          scdb.Row{"dateDecision": "6/22/98", "term": "1997"},
			expectedYear: 1997,
			expectOK:     true,
		},
		{
			name:     "neither",
			row:      scdb.Row{"dateDecision": "", "term": "n/a"},
			expectOK: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			year, ok := tc.row.DecisionYear()
			if ok != tc.expectOK {
				t.Fatalf("ok = %v, want %v", ok, tc.expectOK)
			}
			if ok && year != tc.expectedYear {
				t.Errorf("year = %d, want %d", year, tc.expectedYear)
			}
		})
	}
}
