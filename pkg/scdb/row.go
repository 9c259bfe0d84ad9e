// Package scdb loads and merges Supreme Court Database (SCDB) case-centered
// citation datasets. Rows are treated as read-only reference data: every
// column from the source file is preserved, and only a handful of named
// fields are interpreted.
package scdb

import (
	"strings"
)

// Field names interpreted by caselink. All other columns pass through
// untouched.
const (
	FieldUSCite       = "usCite"
	FieldDocket       = "docket"
	FieldDateDecision = "dateDecision"
	FieldTerm         = "term"
)

// Row is one SCDB case record: an opaque mapping of column name to value.
type Row map[string]string

// USCite returns the row's U.S. Reports citation column.
func (row Row) USCite() string { return row[FieldUSCite] }

// Docket returns the row's docket number column.
func (row Row) Docket() string { return row[FieldDocket] }

// DecisionYear derives the year a case was decided. It prefers the year
// component of dateDecision (the last slash-delimited segment, when exactly
// four digits) and falls back to the term column when purely numeric.
// Rows with neither return ok == false and take no part in year-based
// disambiguation.
func (row Row) DecisionYear() (year int, ok bool) {
	dateDecision := strings.TrimSpace(row[FieldDateDecision])
	if dateDecision != "" {
		segments := strings.Split(dateDecision, "/")
		last := segments[len(segments)-1]
		if y, valid := parseFourDigitYear(last); valid {
			return y, true
		}
	}

	term := strings.TrimSpace(row[FieldTerm])
	if term != "" && allDigits(term) {
		return atoiDigits(term), true
	}

	return 0, false
}

// Table is an ordered SCDB dataset: the column order of the source file plus
// its rows in file order. Row order is significant downstream; the matching
// engine's tiebreak policy selects the first candidate in dataset order.
type Table struct {
	Columns []string
	Rows    []Row
}

// parseFourDigitYear parses s as a year when it is exactly four digits.
func parseFourDigitYear(s string) (int, bool) {
	if len(s) != 4 || !allDigits(s) {
		return 0, false
	}
	return atoiDigits(s), true
}

// allDigits reports whether s is non-empty and contains only ASCII digits.
func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// atoiDigits converts an all-digit string to int. Callers must have
// validated s with allDigits.
func atoiDigits(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
