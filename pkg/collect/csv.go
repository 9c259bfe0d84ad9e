package collect

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/coolbeans/caselink/pkg/infobox"
)

// caseColumns is the collected-cases CSV layout.
var caseColumns = []string{
	"title",
	"usCite",
	"docket",
	"views_all_time",
	"views_1yr",
	"views_6mo",
	"views_1mo",
}

// WriteCases persists collected case records as CSV.
func WriteCases(path string, records []infobox.CaseRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(caseColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, record := range records {
		if err := writer.Write([]string{
			record.Title,
			record.USCite,
			record.Docket,
			strconv.FormatInt(record.Views.AllTime, 10),
			strconv.FormatInt(record.Views.Last12, 10),
			strconv.FormatInt(record.Views.Last6, 10),
			strconv.FormatInt(record.Views.Last1, 10),
		}); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

// ReadCases loads case records from a collected-cases CSV. View columns
// that fail to parse are treated as zero rather than failing the load.
func ReadCases(path string) ([]infobox.CaseRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty CSV %s: no header row", path)
	}

	columnIndex := make(map[string]int, len(rows[0]))
	for fieldIndex, columnName := range rows[0] {
		columnIndex[columnName] = fieldIndex
	}
	for _, required := range []string{"title", "usCite", "docket"} {
		if _, found := columnIndex[required]; !found {
			return nil, fmt.Errorf("%s: missing required column %q", path, required)
		}
	}

	field := func(row []string, columnName string) string {
		fieldIndex, found := columnIndex[columnName]
		if !found || fieldIndex >= len(row) {
			return ""
		}
		return row[fieldIndex]
	}

	records := make([]infobox.CaseRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, infobox.CaseRecord{
			Title:  field(row, "title"),
			USCite: field(row, "usCite"),
			Docket: field(row, "docket"),
			Views: infobox.PageviewCounts{
				AllTime: parseCount(field(row, "views_all_time")),
				Last12:  parseCount(field(row, "views_1yr")),
				Last6:   parseCount(field(row, "views_6mo")),
				Last1:   parseCount(field(row, "views_1mo")),
			},
		})
	}
	return records, nil
}

// parseCount parses a view count, degrading to zero on malformed input.
func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
