package match

import (
	"fmt"
	"strings"
)

// Report summarizes a match run for display and for the post-hoc
// count-conservation check.
type Report struct {
	Total     int `json:"total"`
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
}

// NewReport builds a Report from a match result and the input record count.
func NewReport(result *Result, inputCount int) *Report {
	return &Report{
		Total:     inputCount,
		Matched:   len(result.Matched),
		Unmatched: len(result.Unmatched),
	}
}

// SumCheck reports whether matched plus unmatched equals the input count.
// The per-record contract makes a failure unreachable in a correct engine;
// a false return indicates a defect, not a data problem.
func (report *Report) SumCheck() bool {
	return report.Matched+report.Unmatched == report.Total
}

// String formats the summary in the style of the CLI output.
func (report *Report) String() string {
	var builder strings.Builder

	builder.WriteString("=== SUMMARY ===\n")
	builder.WriteString(fmt.Sprintf("Total wiki records:      %d\n", report.Total))
	builder.WriteString(fmt.Sprintf("Matched SCDB cases:      %d\n", report.Matched))
	builder.WriteString(fmt.Sprintf("Unmatched wiki cases:    %d\n", report.Unmatched))
	builder.WriteString(fmt.Sprintf("Matched + unmatched sum: %d\n", report.Matched+report.Unmatched))

	if report.SumCheck() {
		builder.WriteString("Sum check passed: matched + unmatched == total records.\n")
	} else {
		builder.WriteString("WARNING: counts do NOT add up! Check for logic errors.\n")
	}

	return builder.String()
}
