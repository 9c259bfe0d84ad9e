package collect

import (
	"fmt"
	"strings"

	"github.com/coolbeans/caselink/pkg/infobox"
)

// Report summarizes a collection run.
type Report struct {
	Pages       int `json:"pages"`
	WithCite    int `json:"with_cite"`
	WithDocket  int `json:"with_docket"`
	WithNeither int `json:"with_neither"`
}

// NewReport tallies identifier coverage over collected records.
func NewReport(records []infobox.CaseRecord) *Report {
	report := &Report{Pages: len(records)}
	for _, record := range records {
		if record.USCite != "" {
			report.WithCite++
		}
		if record.Docket != "" {
			report.WithDocket++
		}
		if record.USCite == "" && record.Docket == "" {
			report.WithNeither++
		}
	}
	return report
}

// String formats the report for CLI display.
func (report *Report) String() string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Pages collected:      %d\n", report.Pages))
	builder.WriteString(fmt.Sprintf("With U.S. citation:   %d\n", report.WithCite))
	builder.WriteString(fmt.Sprintf("With docket number:   %d\n", report.WithDocket))
	builder.WriteString(fmt.Sprintf("With no identifier:   %d\n", report.WithNeither))
	return builder.String()
}
