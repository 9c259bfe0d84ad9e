package match

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/coolbeans/caselink/pkg/infobox"
	"github.com/coolbeans/caselink/pkg/scdb"
)

// Columns appended to SCDB rows in the matched output.
var wikiColumns = []string{
	"wiki_title",
	"wiki_usCite",
	"wiki_docket",
	"views_all_time",
	"views_1yr",
	"views_6mo",
	"views_1mo",
}

// WriteMatched writes matched pairs as CSV: every SCDB column of the source
// table, followed by the wiki record's title, raw identifiers, and pageview
// counts.
func WriteMatched(path string, table *scdb.Table, pairs []Pair) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := append(append([]string{}, table.Columns...), wikiColumns...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, pair := range pairs {
		record := make([]string, 0, len(header))
		for _, columnName := range table.Columns {
			record = append(record, pair.Row[columnName])
		}
		record = append(record,
			pair.Case.Title,
			pair.Case.USCite,
			pair.Case.Docket,
			strconv.FormatInt(pair.Case.Views.AllTime, 10),
			strconv.FormatInt(pair.Case.Views.Last12, 10),
			strconv.FormatInt(pair.Case.Views.Last6, 10),
			strconv.FormatInt(pair.Case.Views.Last1, 10),
		)
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write matched row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

// WriteUnmatched writes unmatched wiki records as CSV with their original
// identifier fields and pageview counts.
func WriteUnmatched(path string, records []infobox.CaseRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{"title", "usCite", "docket", "views_all_time", "views_1yr", "views_6mo", "views_1mo"}
	if err := writer.Write(header); err != nil {
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
			return fmt.Errorf("failed to write unmatched row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}
