package scdb

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ReadFile loads an SCDB case-centered citation CSV. The SCDB distribution
// mixes encodings across releases: files are tried as UTF-8 first, with a
// Windows-1252 fallback when the bytes are not valid UTF-8.
func ReadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read SCDB file %s: %w", path, err)
	}

	if !utf8.Valid(data) {
		decoded, decodeErr := charmap.Windows1252.NewDecoder().Bytes(data)
		if decodeErr != nil {
			return nil, fmt.Errorf("failed to decode %s as Windows-1252: %w", path, decodeErr)
		}
		data = decoded
	}

	return parseCSV(data, path)
}

// parseCSV parses CSV bytes into a Table. The first record is the header;
// short rows are padded and long rows truncated to the header width.
func parseCSV(data []byte, path string) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty CSV %s: no header row", path)
	}

	header := records[0]
	// Strip a UTF-8 BOM left on the first column name.
	if len(header) > 0 {
		header[0] = string(bytes.TrimPrefix([]byte(header[0]), []byte{0xEF, 0xBB, 0xBF}))
	}

	table := &Table{Columns: header}
	for _, record := range records[1:] {
		row := make(Row, len(header))
		for columnIndex, columnName := range header {
			if columnIndex < len(record) {
				row[columnName] = record[columnIndex]
			} else {
				row[columnName] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// WriteFile writes a Table as CSV in column order.
func WriteFile(path string, table *Table) error {
	if table == nil {
		return fmt.Errorf("table is nil")
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(table.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for columnIndex, columnName := range table.Columns {
			record[columnIndex] = row[columnName]
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}
