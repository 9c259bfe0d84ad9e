package scdb

import (
	"fmt"
)

// Merge concatenates the Legacy (1791-1945) and Modern (1946-present) SCDB
// datasets into a single table. The merged column set is the union of both
// headers, legacy columns first; rows keep their file order with all legacy
// rows preceding modern ones. Columns absent from a row's source file are
// filled with the empty string.
func Merge(legacy, modern *Table) (*Table, error) {
	if legacy == nil || modern == nil {
		return nil, fmt.Errorf("both legacy and modern tables are required")
	}

	merged := &Table{Columns: unionColumns(legacy.Columns, modern.Columns)}

	for _, source := range []*Table{legacy, modern} {
		for _, row := range source.Rows {
			mergedRow := make(Row, len(merged.Columns))
			for _, columnName := range merged.Columns {
				mergedRow[columnName] = row[columnName]
			}
			merged.Rows = append(merged.Rows, mergedRow)
		}
	}

	return merged, nil
}

// unionColumns returns first's columns followed by any columns unique to
// second, preserving relative order.
func unionColumns(first, second []string) []string {
	seen := make(map[string]bool, len(first))
	union := make([]string, 0, len(first)+len(second))

	for _, columnName := range first {
		if !seen[columnName] {
			seen[columnName] = true
			union = append(union, columnName)
		}
	}
	for _, columnName := range second {
		if !seen[columnName] {
			seen[columnName] = true
			union = append(union, columnName)
		}
	}

	return union
}
